package story

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

const CollectionName = dbmongo.StoriesCollection

type Repository interface {
	Insert(ctx context.Context, s *Story) error
	List(ctx context.Context) ([]Story, error)
	IncReaction(ctx context.Context, id string, reaction Reaction) (*Story, error)
	ListExpired(ctx context.Context, before time.Time) ([]Story, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type mongoRepository struct {
	coll *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(CollectionName)}
}

func errStoryNotFound() error {
	return common.NewError(common.ErrNotFound, "Story not found")
}

func (r *mongoRepository) Insert(ctx context.Context, s *Story) error {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("insert story: %w", err)
	}
	return nil
}

func (r *mongoRepository) List(ctx context.Context) ([]Story, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoRepository) ListExpired(ctx context.Context, before time.Time) ([]Story, error) {
	return r.find(ctx, bson.M{"timestamp": bson.M{"$lt": before}})
}

func (r *mongoRepository) find(ctx context.Context, filter bson.M) ([]Story, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find stories: %w", err)
	}
	defer cur.Close(ctx)

	stories := []Story{}
	if err := cur.All(ctx, &stories); err != nil {
		return nil, fmt.Errorf("decode stories: %w", err)
	}
	return stories, nil
}

func (r *mongoRepository) IncReaction(ctx context.Context, id string, reaction Reaction) (*Story, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errStoryNotFound()
	}

	var s Story
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$inc": bson.M{reaction.Field(): 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errStoryNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("increment %s: %w", reaction.Field(), err)
	}
	return &s, nil
}

func (r *mongoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	if res.DeletedCount == 0 {
		return errStoryNotFound()
	}
	return nil
}
