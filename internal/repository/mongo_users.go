package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
)

type MongoUserRepo struct {
	col *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{col: db.Collection(userCollection)}
}

func (r *MongoUserRepo) Create(ctx context.Context, u *domain.User) error {
	now := time.Now().UTC()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, u); err != nil {
		return err
	}
	return nil
}

func (r *MongoUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var u domain.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepo) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	query := bson.M{"$or": bson.A{
		bson.M{"username": login},
		bson.M{"email": login},
	}}
	var u domain.User
	if err := r.col.FindOne(ctx, query).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *MongoUserRepo) FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.UserRef, error) {
	refs := make(map[primitive.ObjectID]*domain.UserRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u domain.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		refs[u.ID] = u.Ref()
	}
	return refs, cur.Err()
}
