package story

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"anonboard/internal/common"
)

type Reactions struct {
	ThumbsUp   int64 `bson:"thumbsUp" json:"thumbsUp"`
	ThumbsDown int64 `bson:"thumbsDown" json:"thumbsDown"`
	Love       int64 `bson:"love" json:"love"`
}

type Story struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text      string             `bson:"text" json:"text"`
	ImageURL  string             `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Reactions Reactions          `bson:"reactions" json:"reactions"`
}

type Reaction string

const (
	ReactionThumbsUp   Reaction = "thumbsUp"
	ReactionThumbsDown Reaction = "thumbsDown"
	ReactionLove       Reaction = "love"
)

// ParseReaction accepts the three reaction kinds plus the older "true" and
// "false" keys, which mean thumbs up and thumbs down.
func ParseReaction(s string) (Reaction, error) {
	switch s {
	case string(ReactionThumbsUp), "true":
		return ReactionThumbsUp, nil
	case string(ReactionThumbsDown), "false":
		return ReactionThumbsDown, nil
	case string(ReactionLove):
		return ReactionLove, nil
	}
	return "", common.NewError(common.ErrInvalidInput, "Invalid reaction type")
}

// Field is the stored counter path.
func (r Reaction) Field() string {
	return "reactions." + string(r)
}
