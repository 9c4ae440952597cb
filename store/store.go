package store

import (
	"context"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/filters"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

const (
	PropertiesCollection   = "properties"
	UsersCollection        = "users"
	FavoritesCollection    = "favorites"
	ContactsCollection     = "contacts"
	InteractionsCollection = "interactions"
	SessionsCollection     = "sessions"
)

// Every store call runs under this bound on top of the caller's context.
const opTimeout = 10 * time.Second

type PropertyStore interface {
	List(ctx context.Context, q filters.PropertyQuery) ([]*models.Property, int64, error)
	Featured(ctx context.Context, limit int) ([]*models.Property, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID, page, limit int) ([]*models.Property, int64, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Property, error)
	Create(ctx context.Context, p *models.Property) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Property, error)
	AddImages(ctx context.Context, id primitive.ObjectID, urls []string) (*models.Property, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error)
	List(ctx context.Context, page, limit int) ([]*models.User, int64, error)
}

type FavoriteStore interface {
	Add(ctx context.Context, f *models.Favorite) error
	Remove(ctx context.Context, user, property primitive.ObjectID) error
	Exists(ctx context.Context, user, property primitive.ObjectID) (bool, error)
	ListByUser(ctx context.Context, user primitive.ObjectID, page, limit int) ([]*models.Favorite, int64, error)
	ClearUser(ctx context.Context, user primitive.ObjectID) (int64, error)
	DeleteByProperties(ctx context.Context, properties []primitive.ObjectID) (int64, error)
	PropertyIDs(ctx context.Context) ([]primitive.ObjectID, error)
}

type ContactStore interface {
	Create(ctx context.Context, c *models.Contact) error
	List(ctx context.Context, page, limit int) ([]*models.Contact, int64, error)
}

type InteractionStore interface {
	Insert(ctx context.Context, i *models.Interaction) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Stores bundles the repositories the handlers depend on.
type Stores struct {
	Properties   PropertyStore
	Users        UserStore
	Favorites    FavoriteStore
	Contacts     ContactStore
	Interactions InteractionStore
}

func NewMongoStores(db *mongo.Database) *Stores {
	return &Stores{
		Properties:   NewPropertyStore(db),
		Users:        NewUserStore(db),
		Favorites:    NewFavoriteStore(db),
		Contacts:     NewContactStore(db),
		Interactions: NewInteractionStore(db),
	}
}

// AttachOwners resolves each property's owner to its public summary.
// Owners that no longer exist are left unset.
func AttachOwners(ctx context.Context, users UserStore, props ...*models.Property) error {
	ids := make([]primitive.ObjectID, 0, len(props))
	seen := map[primitive.ObjectID]bool{}
	for _, p := range props {
		if p == nil || p.Owner.IsZero() || seen[p.Owner] {
			continue
		}
		seen[p.Owner] = true
		ids = append(ids, p.Owner)
	}
	if len(ids) == 0 {
		return nil
	}

	owners, err := users.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[primitive.ObjectID]models.OwnerSummary, len(owners))
	for _, u := range owners {
		byID[u.ID] = u.Summary()
	}
	for _, p := range props {
		if p == nil {
			continue
		}
		if summary, ok := byID[p.Owner]; ok {
			s := summary
			p.OwnerDetails = &s
		}
	}
	return nil
}

// MissingProperties returns the ids among candidates that no longer resolve
// to a property.
func MissingProperties(ctx context.Context, properties PropertyStore, candidates []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(candidates) == 0 {
		return nil, nil
	}
	found, err := properties.FindByIDs(ctx, candidates)
	if err != nil {
		return nil, err
	}
	present := make(map[primitive.ObjectID]bool, len(found))
	for _, p := range found {
		present[p.ID] = true
	}
	var missing []primitive.ObjectID
	for _, id := range candidates {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func translate(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return errors.Wrap(ErrNotFound, what)
	case mongo.IsDuplicateKeyError(err):
		return errors.Wrap(ErrDuplicate, what)
	}
	return errors.Wrap(err, what)
}
