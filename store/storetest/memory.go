// Package storetest provides in-memory implementations of the store
// interfaces for handler and service tests.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/filters"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Fakes holds one of each in-memory store. Setting Err on a fake makes every
// call on it fail.
type Fakes struct {
	Properties   *PropertyStore
	Users        *UserStore
	Favorites    *FavoriteStore
	Contacts     *ContactStore
	Interactions *InteractionStore
}

func New() *Fakes {
	return &Fakes{
		Properties:   &PropertyStore{items: map[primitive.ObjectID]*models.Property{}},
		Users:        &UserStore{items: map[primitive.ObjectID]*models.User{}},
		Favorites:    &FavoriteStore{},
		Contacts:     &ContactStore{},
		Interactions: &InteractionStore{},
	}
}

func (f *Fakes) Stores() *store.Stores {
	return &store.Stores{
		Properties:   f.Properties,
		Users:        f.Users,
		Favorites:    f.Favorites,
		Contacts:     f.Contacts,
		Interactions: f.Interactions,
	}
}

func window(n, page, limit int) (int, int) {
	start := utils.Offset(page, limit)
	if start > n {
		start = n
	}
	end := start + limit
	if end > n {
		end = n
	}
	return start, end
}

var (
	_ store.PropertyStore    = (*PropertyStore)(nil)
	_ store.UserStore        = (*UserStore)(nil)
	_ store.FavoriteStore    = (*FavoriteStore)(nil)
	_ store.ContactStore     = (*ContactStore)(nil)
	_ store.InteractionStore = (*InteractionStore)(nil)
)

type PropertyStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.Property
	Err   error
}

func (s *PropertyStore) all() []*models.Property {
	out := make([]*models.Property, 0, len(s.items))
	for _, p := range s.items {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

func newestFirst(items []*models.Property) {
	q := filters.PropertyQuery{SortField: filters.DefaultSort, SortDesc: true}
	sort.SliceStable(items, func(i, j int) bool { return q.Less(items[i], items[j]) })
}

func (s *PropertyStore) List(ctx context.Context, q filters.PropertyQuery) ([]*models.Property, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	matched := make([]*models.Property, 0)
	for _, p := range s.all() {
		if q.Matches(p) {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return q.Less(matched[i], matched[j]) })
	start, end := window(len(matched), q.Page, q.Limit)
	return matched[start:end], int64(len(matched)), nil
}

func (s *PropertyStore) Featured(ctx context.Context, limit int) ([]*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*models.Property, 0)
	for _, p := range s.all() {
		if p.Status == models.StatusActive && p.Featured {
			out = append(out, p)
		}
	}
	newestFirst(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *PropertyStore) ListByOwner(ctx context.Context, owner primitive.ObjectID, page, limit int) ([]*models.Property, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	out := make([]*models.Property, 0)
	for _, p := range s.all() {
		if p.Owner == owner {
			out = append(out, p)
		}
	}
	newestFirst(out)
	start, end := window(len(out), page, limit)
	return out[start:end], int64(len(out)), nil
}

func (s *PropertyStore) Get(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.items[id]
	if !ok {
		return nil, errors.Wrap(store.ErrNotFound, "find property")
	}
	cp := *p
	return &cp, nil
}

func (s *PropertyStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*models.Property, 0, len(ids))
	for _, id := range ids {
		if p, ok := s.items[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *PropertyStore) Create(ctx context.Context, p *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.items {
		if p.Slug != "" && existing.Slug == p.Slug {
			return errors.Wrap(store.ErrDuplicate, "insert property")
		}
	}
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = models.StatusActive
	}
	if p.Amenities == nil {
		p.Amenities = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	cp := *p
	s.items[p.ID] = &cp
	return nil
}

func (s *PropertyStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.items[id]
	if !ok {
		return nil, errors.Wrap(store.ErrNotFound, "update property")
	}
	var updated models.Property
	if err := applySet(p, set, &updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	s.items[id] = &updated
	cp := updated
	return &cp, nil
}

func (s *PropertyStore) AddImages(ctx context.Context, id primitive.ObjectID, urls []string) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.items[id]
	if !ok {
		return nil, errors.Wrap(store.ErrNotFound, "add property images")
	}
	p.Images = append(append([]string{}, p.Images...), urls...)
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (s *PropertyStore) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	p, ok := s.items[id]
	if !ok {
		return errors.Wrap(store.ErrNotFound, "increment views")
	}
	p.Views++
	return nil
}

func (s *PropertyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.items[id]; !ok {
		return errors.Wrap(store.ErrNotFound, "delete property")
	}
	delete(s.items, id)
	return nil
}

// Views reads the stored counter directly.
func (s *PropertyStore) Views(id primitive.ObjectID) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.items[id]; ok {
		return p.Views
	}
	return 0
}

type UserStore struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*models.User
	Err   error
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u.Email = store.NormalizeEmail(u.Email)
	for _, existing := range s.items {
		if existing.Email == u.Email || (u.GoogleID != "" && existing.GoogleID == u.GoogleID) {
			return errors.Wrap(store.ErrDuplicate, "insert user")
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	cp := *u
	s.items[u.ID] = &cp
	return nil
}

func (s *UserStore) find(what string, match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.items {
		if match(u) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, errors.Wrap(store.ErrNotFound, what)
}

func (s *UserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.find("find user by id", func(u *models.User) bool { return u.ID == id })
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	email = store.NormalizeEmail(email)
	return s.find("find user by email", func(u *models.User) bool { return u.Email == email })
}

func (s *UserStore) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	return s.find("find user by google id", func(u *models.User) bool {
		return googleID != "" && u.GoogleID == googleID
	})
}

func (s *UserStore) FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := s.items[id]; ok {
			out = append(out, &models.User{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar})
		}
	}
	return out, nil
}

func (s *UserStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.items[id]
	if !ok {
		return nil, errors.Wrap(store.ErrNotFound, "update user")
	}
	var updated models.User
	if err := applySet(u, set, &updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = time.Now().UTC()
	s.items[id] = &updated
	cp := updated
	return &cp, nil
}

func (s *UserStore) List(ctx context.Context, page, limit int) ([]*models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	out := make([]*models.User, 0, len(s.items))
	for _, u := range s.items {
		cp := *u
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.Hex() > out[j].ID.Hex()
	})
	start, end := window(len(out), page, limit)
	return out[start:end], int64(len(out)), nil
}

type FavoriteStore struct {
	mu    sync.Mutex
	items []*models.Favorite
	Err   error
}

func (s *FavoriteStore) Add(ctx context.Context, f *models.Favorite) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for _, existing := range s.items {
		if existing.User == f.User && existing.Property == f.Property {
			return errors.Wrap(store.ErrDuplicate, "insert favorite")
		}
	}
	if f.ID.IsZero() {
		f.ID = primitive.NewObjectID()
	}
	if f.AddedAt.IsZero() {
		f.AddedAt = time.Now().UTC()
	}
	cp := *f
	s.items = append(s.items, &cp)
	return nil
}

func (s *FavoriteStore) Remove(ctx context.Context, user, property primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	for i, f := range s.items {
		if f.User == user && f.Property == property {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return errors.Wrap(store.ErrNotFound, "delete favorite")
}

func (s *FavoriteStore) Exists(ctx context.Context, user, property primitive.ObjectID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	for _, f := range s.items {
		if f.User == user && f.Property == property {
			return true, nil
		}
	}
	return false, nil
}

func (s *FavoriteStore) ListByUser(ctx context.Context, user primitive.ObjectID, page, limit int) ([]*models.Favorite, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	out := make([]*models.Favorite, 0)
	for i := len(s.items) - 1; i >= 0; i-- {
		if f := s.items[i]; f.User == user {
			cp := *f
			out = append(out, &cp)
		}
	}
	start, end := window(len(out), page, limit)
	return out[start:end], int64(len(out)), nil
}

func (s *FavoriteStore) deleteWhere(match func(*models.Favorite) bool) int64 {
	kept := s.items[:0]
	var n int64
	for _, f := range s.items {
		if match(f) {
			n++
			continue
		}
		kept = append(kept, f)
	}
	s.items = kept
	return n
}

func (s *FavoriteStore) ClearUser(ctx context.Context, user primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return s.deleteWhere(func(f *models.Favorite) bool { return f.User == user }), nil
}

func (s *FavoriteStore) DeleteByProperties(ctx context.Context, properties []primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	set := make(map[primitive.ObjectID]bool, len(properties))
	for _, id := range properties {
		set[id] = true
	}
	return s.deleteWhere(func(f *models.Favorite) bool { return set[f.Property] }), nil
}

func (s *FavoriteStore) PropertyIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, f := range s.items {
		if !seen[f.Property] {
			seen[f.Property] = true
			ids = append(ids, f.Property)
		}
	}
	return ids, nil
}

// Len counts stored favorites.
func (s *FavoriteStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

type ContactStore struct {
	mu    sync.Mutex
	items []*models.Contact
	Err   error
}

func (s *ContactStore) Create(ctx context.Context, c *models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	c.CreatedAt = time.Now().UTC()
	cp := *c
	s.items = append(s.items, &cp)
	return nil
}

func (s *ContactStore) List(ctx context.Context, page, limit int) ([]*models.Contact, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, 0, s.Err
	}
	out := make([]*models.Contact, 0, len(s.items))
	for i := len(s.items) - 1; i >= 0; i-- {
		cp := *s.items[i]
		out = append(out, &cp)
	}
	start, end := window(len(out), page, limit)
	return out[start:end], int64(len(out)), nil
}

// All returns a snapshot of stored contacts, oldest first.
func (s *ContactStore) All() []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Contact, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, *c)
	}
	return out
}

type InteractionStore struct {
	mu    sync.Mutex
	items []*models.Interaction
	Err   error
}

func (s *InteractionStore) Insert(ctx context.Context, i *models.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if i.ID.IsZero() {
		i.ID = primitive.NewObjectID()
	}
	if i.CreatedAt.IsZero() {
		i.CreatedAt = time.Now().UTC()
	}
	cp := *i
	s.items = append(s.items, &cp)
	return nil
}

func (s *InteractionStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	kept := s.items[:0]
	var n int64
	for _, i := range s.items {
		if i.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, i)
	}
	s.items = kept
	return n, nil
}

// All returns a snapshot of recorded interactions.
func (s *InteractionStore) All() []models.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Interaction, 0, len(s.items))
	for _, i := range s.items {
		out = append(out, *i)
	}
	return out
}
