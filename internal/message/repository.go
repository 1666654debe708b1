package message

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"anonboard/internal/common"
	"anonboard/internal/dbmongo"
)

const CollectionName = dbmongo.MessagesCollection

// Repository is the message persistence layer. Counters change only through
// IncVote and IncReplyVote, which apply an atomic storage-side delta.
type Repository interface {
	Insert(ctx context.Context, m *Message) error
	List(ctx context.Context, category string) ([]Message, error)
	DistinctCategories(ctx context.Context) ([]string, error)
	Exists(ctx context.Context, id string) (bool, error)
	PushReply(ctx context.Context, messageID string, reply *Reply) error
	IncVote(ctx context.Context, id string, vote Vote) (*Message, error)
	IncReplyVote(ctx context.Context, id, replyID string, vote Vote) (*Reply, error)
	Delete(ctx context.Context, id string) error
}

type mongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(CollectionName), now: time.Now}
}

func errMessageNotFound() error {
	return common.NewError(common.ErrNotFound, "Message not found.")
}

func errReplyNotFound() error {
	return common.NewError(common.ErrNotFound, "Reply not found.")
}

// objectID treats a malformed id like an unknown one.
func objectID(id string, notFound func() error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound()
	}
	return oid, nil
}

func (r *mongoRepository) Insert(ctx context.Context, m *Message) error {
	now := r.now()
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	if m.Replies == nil {
		m.Replies = []Reply{}
	}
	m.CreatedAt = now
	m.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, m); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (r *mongoRepository) List(ctx context.Context, category string) ([]Message, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cur.Close(ctx)

	messages := []Message{}
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}

func (r *mongoRepository) DistinctCategories(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("distinct categories: %w", err)
	}
	categories := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			categories = append(categories, s)
		}
	}
	return categories, nil
}

func (r *mongoRepository) Exists(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count message: %w", err)
	}
	return n > 0, nil
}

func (r *mongoRepository) PushReply(ctx context.Context, messageID string, reply *Reply) error {
	oid, err := objectID(messageID, errMessageNotFound)
	if err != nil {
		return err
	}
	if reply.ID.IsZero() {
		reply.ID = primitive.NewObjectID()
	}
	now := r.now()
	reply.CreatedAt = now

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{
			"$push": bson.M{"replies": reply},
			"$set":  bson.M{"updatedAt": now},
		})
	if err != nil {
		return fmt.Errorf("push reply: %w", err)
	}
	if res.MatchedCount == 0 {
		return errMessageNotFound()
	}
	return nil
}

func (r *mongoRepository) IncVote(ctx context.Context, id string, vote Vote) (*Message, error) {
	oid, err := objectID(id, errMessageNotFound)
	if err != nil {
		return nil, err
	}

	var m Message
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{vote.Field(): 1}, "$set": bson.M{"updatedAt": r.now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errMessageNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("increment %s: %w", vote.Field(), err)
	}
	return &m, nil
}

// IncReplyVote matches the reply inside the given message only, so a reply
// id that belongs to another message is reported as not found.
func (r *mongoRepository) IncReplyVote(ctx context.Context, id, replyID string, vote Vote) (*Reply, error) {
	oid, err := objectID(id, errMessageNotFound)
	if err != nil {
		return nil, err
	}
	rid, err := objectID(replyID, errReplyNotFound)
	if err != nil {
		return nil, err
	}

	var m Message
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "replies._id": rid},
		bson.M{"$inc": bson.M{"replies.$." + vote.Field(): 1}, "$set": bson.M{"updatedAt": r.now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&m)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errReplyNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("increment reply %s: %w", vote.Field(), err)
	}

	reply, ok := findReply(m.Replies, rid)
	if !ok {
		return nil, errReplyNotFound()
	}
	return reply, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, errMessageNotFound)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	if res.DeletedCount == 0 {
		return errMessageNotFound()
	}
	return nil
}

func findReply(replies []Reply, id primitive.ObjectID) (*Reply, bool) {
	for i := range replies {
		if replies[i].ID == id {
			return &replies[i], true
		}
	}
	return nil, false
}
