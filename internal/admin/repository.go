package admin

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

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=admin

const CollectionName = dbmongo.AdminsCollection

// Repository stores admin accounts. Username uniqueness is enforced by a
// unique index, so Create and Update report a taken name as ErrConflict.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	FindByID(ctx context.Context, id string) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	ListAdmins(ctx context.Context) ([]Account, error)
	Update(ctx context.Context, a *Account) error
	DeleteAdmin(ctx context.Context, id string) error
}

type mongoRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{coll: db.Collection(CollectionName), now: time.Now}
}

func errAdminNotFound() error {
	return common.NewError(common.ErrNotFound, "Admin user not found")
}

func errUsernameTaken() error {
	return common.NewError(common.ErrConflict, "Username already exists")
}

func (r *mongoRepository) Create(ctx context.Context, a *Account) error {
	now := r.now()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, a)
	if mongo.IsDuplicateKeyError(err) {
		return errUsernameTaken()
	}
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *mongoRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errAdminNotFound()
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *mongoRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *mongoRepository) findOne(ctx context.Context, filter bson.M) (*Account, error) {
	var a Account
	err := r.coll.FindOne(ctx, filter).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, errAdminNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &a, nil
}

func (r *mongoRepository) ListAdmins(ctx context.Context) ([]Account, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetProjection(bson.M{"password": 0})

	cur, err := r.coll.Find(ctx, bson.M{"isAdmin": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("find admins: %w", err)
	}
	defer cur.Close(ctx)

	admins := []Account{}
	if err := cur.All(ctx, &admins); err != nil {
		return nil, fmt.Errorf("decode admins: %w", err)
	}
	return admins, nil
}

func (r *mongoRepository) Update(ctx context.Context, a *Account) error {
	a.UpdatedAt = r.now()
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": a.ID},
		bson.M{"$set": bson.M{
			"username":  a.Username,
			"password":  a.PasswordHash,
			"updatedAt": a.UpdatedAt,
		}})
	if mongo.IsDuplicateKeyError(err) {
		return errUsernameTaken()
	}
	if err != nil {
		return fmt.Errorf("update admin: %w", err)
	}
	if res.MatchedCount == 0 {
		return errAdminNotFound()
	}
	return nil
}

func (r *mongoRepository) DeleteAdmin(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errAdminNotFound()
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "isAdmin": true})
	if err != nil {
		return fmt.Errorf("delete admin: %w", err)
	}
	if res.DeletedCount == 0 {
		return errAdminNotFound()
	}
	return nil
}
