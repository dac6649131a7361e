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

// contentUpdateFields is the whitelist of document fields a partial update
// may touch. Anything else in the payload is dropped here.
var contentUpdateFields = []string{
	"business", "assignedCD", "assignedCW", "assignedVE",
	"contentType", "date", "tags", "status",
}

type MongoContentRepo struct {
	col *mongo.Collection
}

func NewMongoContentRepo(db *mongo.Database) *MongoContentRepo {
	return &MongoContentRepo{col: db.Collection(contentCollection)}
}

func (r *MongoContentRepo) Create(ctx context.Context, c *domain.RegularContent) error {
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		return err
	}
	return nil
}

func (r *MongoContentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RegularContent, error) {
	var c domain.RegularContent
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *MongoContentRepo) List(ctx context.Context, filter ContentFilter, opts ListOptions) ([]domain.RegularContent, int64, error) {
	opts = opts.Normalized()
	query := contentQuery(filter)

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	order := -1
	if opts.SortOrder == "asc" {
		order = 1
	}
	sort := bson.D{{Key: opts.SortBy, Value: order}}
	if opts.SortBy != "createdAt" {
		// Secondary sort keeps ordering deterministic among ties.
		sort = append(sort, bson.E{Key: "createdAt", Value: -1})
	}

	findOpts := options.Find().
		SetSort(sort).
		SetSkip(int64((opts.Page - 1) * opts.Limit)).
		SetLimit(int64(opts.Limit))

	cur, err := r.col.Find(ctx, query, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := []domain.RegularContent{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *MongoContentRepo) Update(ctx context.Context, id primitive.ObjectID, set map[string]any) (*domain.RegularContent, error) {
	fields := bson.M{}
	for _, k := range contentUpdateFields {
		if v, ok := set[k]; ok {
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}
	fields["updatedAt"] = time.Now().UTC()

	findOpts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated domain.RegularContent
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, findOpts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &updated, nil
}

func (r *MongoContentRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func contentQuery(f ContentFilter) bson.M {
	q := bson.M{}
	if f.Date != "" {
		q["date"] = f.Date
	}
	if f.Business != nil {
		q["business"] = *f.Business
	}
	if f.AssignedCD != nil {
		q["assignedCD"] = *f.AssignedCD
	}
	if f.AssignedCW != nil {
		q["assignedCW"] = *f.AssignedCW
	}
	if f.AssignedVE != nil {
		q["assignedVE"] = *f.AssignedVE
	}
	if f.AddedBy != nil {
		q["addedBy"] = *f.AddedBy
	}
	if f.Status != nil {
		q["status"] = *f.Status
	}
	switch len(f.ContentTypes) {
	case 0:
	case 1:
		q["contentType"] = f.ContentTypes[0]
	default:
		q["contentType"] = bson.M{"$in": f.ContentTypes}
	}
	return q
}
