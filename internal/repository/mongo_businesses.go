package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
)

type MongoBusinessRepo struct {
	col *mongo.Collection
}

func NewMongoBusinessRepo(db *mongo.Database) *MongoBusinessRepo {
	return &MongoBusinessRepo{col: db.Collection(businessCollection)}
}

func (r *MongoBusinessRepo) Create(ctx context.Context, b *domain.Business) error {
	now := time.Now().UTC()
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		return err
	}
	return nil
}

func (r *MongoBusinessRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Business, error) {
	var b domain.Business
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *MongoBusinessRepo) List(ctx context.Context) ([]domain.Business, error) {
	opts := options.Find().SetSort(bson.D{{Key: "businessName", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []domain.Business{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *MongoBusinessRepo) UpdateTags(ctx context.Context, id primitive.ObjectID, tags string) error {
	update := bson.M{"$set": bson.M{"tags": tags, "updatedAt": time.Now().UTC()}}
	res, err := r.col.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoBusinessRepo) FindRefs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*domain.BusinessRef, error) {
	refs := make(map[primitive.ObjectID]*domain.BusinessRef, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var b domain.Business
		if err := cur.Decode(&b); err != nil {
			return nil, err
		}
		refs[b.ID] = b.Ref()
	}
	return refs, cur.Err()
}
