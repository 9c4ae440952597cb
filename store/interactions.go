package store

import (
	"context"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoInteractionStore struct {
	collection *mongo.Collection
}

func NewInteractionStore(db *mongo.Database) *MongoInteractionStore {
	return &MongoInteractionStore{collection: db.Collection(InteractionsCollection)}
}

func (s *MongoInteractionStore) Insert(ctx context.Context, i *models.Interaction) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if i.ID.IsZero() {
		i.ID = primitive.NewObjectID()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
	_, err := s.collection.InsertOne(ctx, i)
	return translate(err, "insert interaction")
}

func (s *MongoInteractionStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.collection.DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, errors.Wrap(err, "purge interactions")
	}
	return res.DeletedCount, nil
}
