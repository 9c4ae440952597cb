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

type MongoFavoriteStore struct {
	collection *mongo.Collection
}

func NewFavoriteStore(db *mongo.Database) *MongoFavoriteStore {
	return &MongoFavoriteStore{collection: db.Collection(FavoritesCollection)}
}

// Add relies on the unique (user, property) index to reject duplicates.
func (s *MongoFavoriteStore) Add(ctx context.Context, f *models.Favorite) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	f.AddedAt = time.Now().UTC()
	_, err := s.collection.InsertOne(ctx, f)
	return translate(err, "insert favorite")
}

func (s *MongoFavoriteStore) Remove(ctx context.Context, user, property primitive.ObjectID) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.collection.DeleteOne(ctx, bson.M{"user": user, "property": property})
	if err != nil {
		return errors.Wrap(err, "delete favorite")
	}
	if res.DeletedCount == 0 {
		return errors.Wrap(ErrNotFound, "delete favorite")
	}
	return nil
}

func (s *MongoFavoriteStore) Exists(ctx context.Context, user, property primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	n, err := s.collection.CountDocuments(ctx, bson.M{"user": user, "property": property}, options.Count().SetLimit(1))
	if err != nil {
		return false, errors.Wrap(err, "count favorite")
	}
	return n > 0, nil
}

func (s *MongoFavoriteStore) ListByUser(ctx context.Context, user primitive.ObjectID, page, limit int) ([]*models.Favorite, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	filter := bson.M{"user": user}
	total, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, errors.Wrap(err, "count favorites")
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "addedAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(utils.Offset(page, limit))).
		SetLimit(int64(limit))
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, errors.Wrap(err, "find favorites")
	}
	defer cursor.Close(ctx)

	favorites := make([]*models.Favorite, 0)
	if err := cursor.All(ctx, &favorites); err != nil {
		return nil, 0, errors.Wrap(err, "decode favorites")
	}
	return favorites, total, nil
}

func (s *MongoFavoriteStore) ClearUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	return s.deleteMany(ctx, bson.M{"user": user}, "clear favorites")
}

func (s *MongoFavoriteStore) DeleteByProperties(ctx context.Context, properties []primitive.ObjectID) (int64, error) {
	if len(properties) == 0 {
		return 0, nil
	}
	return s.deleteMany(ctx, bson.M{"property": bson.M{"$in": properties}}, "delete favorites by property")
}

// PropertyIDs lists every property referenced by at least one favorite.
func (s *MongoFavoriteStore) PropertyIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	values, err := s.collection.Distinct(ctx, "property", bson.M{})
	if err != nil {
		return nil, errors.Wrap(err, "distinct favorite properties")
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *MongoFavoriteStore) deleteMany(ctx context.Context, filter bson.M, what string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	res, err := s.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, errors.Wrap(err, what)
	}
	return res.DeletedCount, nil
}
