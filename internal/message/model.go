package message

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"anonboard/internal/common"
)

const DefaultUser = "Anonymous"

// Categories is the closed set a message may be posted under.
var Categories = []string{"All", "Student", "Kids", "Womens", "University", "Job"}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

type Message struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Text      string             `bson:"text" json:"text"`
	User      string             `bson:"user" json:"user"`
	Category  string             `bson:"category" json:"category"`
	Upvotes   int64              `bson:"upvotes" json:"upvotes"`
	Downvotes int64              `bson:"downvotes" json:"downvotes"`
	Loves     int64              `bson:"loves" json:"loves"`
	Replies   []Reply            `bson:"replies" json:"replies"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Reply is stored embedded in its parent Message.
type Reply struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	Text      string             `bson:"text" json:"text"`
	User      string             `bson:"user" json:"user"`
	Upvotes   int64              `bson:"upvotes" json:"upvotes"`
	Downvotes int64              `bson:"downvotes" json:"downvotes"`
	Loves     int64              `bson:"loves" json:"loves"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Vote is one of the three counters a message or reply carries.
type Vote string

const (
	VoteUp   Vote = "upvote"
	VoteDown Vote = "downvote"
	VoteLove Vote = "love"
)

// ParseVote returns the vote kind, or ErrInvalidInput for anything else.
func ParseVote(s string) (Vote, error) {
	switch v := Vote(s); v {
	case VoteUp, VoteDown, VoteLove:
		return v, nil
	}
	return "", common.NewError(common.ErrInvalidInput, "Invalid vote type. Use 'upvote', 'downvote' or 'love'.")
}

// Field is the stored counter the vote increments.
func (v Vote) Field() string {
	switch v {
	case VoteUp:
		return "upvotes"
	case VoteDown:
		return "downvotes"
	default:
		return "loves"
	}
}
