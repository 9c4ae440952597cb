package store

import (
	"context"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoContactStore struct {
	collection *mongo.Collection
}

func NewContactStore(db *mongo.Database) *MongoContactStore {
	return &MongoContactStore{collection: db.Collection(ContactsCollection)}
}

func (s *MongoContactStore) Create(ctx context.Context, c *models.Contact) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = time.Now().UTC()
	_, err := s.collection.InsertOne(ctx, c)
	return translate(err, "insert contact")
}

func (s *MongoContactStore) List(ctx context.Context, page, limit int) ([]*models.Contact, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	total, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, errors.Wrap(err, "count contacts")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(utils.Offset(page, limit))).
		SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find contacts")
	}
	defer cursor.Close(ctx)

	contacts := make([]*models.Contact, 0)
	if err := cursor.All(ctx, &contacts); err != nil {
		return nil, 0, errors.Wrap(err, "decode contacts")
	}
	return contacts, total, nil
}
