package store

import (
	"context"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/filters"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoPropertyStore struct {
	collection *mongo.Collection
}

func NewPropertyStore(db *mongo.Database) *MongoPropertyStore {
	return &MongoPropertyStore{collection: db.Collection(PropertiesCollection)}
}

func (s *MongoPropertyStore) List(ctx context.Context, q filters.PropertyQuery) ([]*models.Property, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := q.Filter()
	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count properties")
	}
	items, err := s.find(ctx, filter, q.FindOptions())
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *MongoPropertyStore) Featured(ctx context.Context, limit int) ([]*models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	return s.find(ctx, bson.M{"status": models.StatusActive, "featured": true}, opts)
}

func (s *MongoPropertyStore) ListByOwner(ctx context.Context, owner primitive.ObjectID, page, limit int) ([]*models.Property, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"owner": owner}
	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count owner properties")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(utils.Offset(page, limit))).
		SetLimit(int64(limit))
	items, err := s.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *MongoPropertyStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var p models.Property
	if err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err, "find property")
	}
	return &p, nil
}

func (s *MongoPropertyStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Property, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return s.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (s *MongoPropertyStore) Create(ctx context.Context, p *models.Property) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	_, err := s.collection.InsertOne(ctx, p)
	return translate(err, "insert property")
}

func (s *MongoPropertyStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := bson.M{}
	for k, v := range set {
		doc[k] = v
	}
	doc["updatedAt"] = time.Now().UTC()

	return s.findOneAndUpdate(ctx, id, bson.M{"$set": doc}, "update property")
}

func (s *MongoPropertyStore) AddImages(ctx context.Context, id primitive.ObjectID, urls []string) (*models.Property, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{
		"$push": bson.M{"images": bson.M{"$each": urls}},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return s.findOneAndUpdate(ctx, id, update, "add property images")
}

func (s *MongoPropertyStore) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"views": 1}})
	if err != nil {
		return errors.Wrap(err, "increment views")
	}
	if res.MatchedCount == 0 {
		return errors.Wrap(ErrNotFound, "increment views")
	}
	return nil
}

func (s *MongoPropertyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete property")
	}
	if res.DeletedCount == 0 {
		return errors.Wrap(ErrNotFound, "delete property")
	}
	return nil
}

func (s *MongoPropertyStore) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.M, what string) (*models.Property, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Property
	if err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&p); err != nil {
		return nil, translate(err, what)
	}
	return &p, nil
}

func (s *MongoPropertyStore) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*models.Property, error) {
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "find properties")
	}
	defer cursor.Close(ctx)

	items := make([]*models.Property, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, errors.Wrap(err, "decode properties")
	}
	return items, nil
}
