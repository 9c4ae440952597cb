package storetest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
)

// applySet emulates a Mongo $set by round-tripping src through BSON. Dotted
// keys write into nested documents.
func applySet(src interface{}, set bson.M, out interface{}) error {
	raw, err := bson.Marshal(src)
	if err != nil {
		return err
	}
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return err
	}
	for key, value := range set {
		setPath(doc, strings.Split(key, "."), value)
	}
	raw, err = bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

func setPath(doc bson.M, path []string, value interface{}) {
	if len(path) == 1 {
		doc[path[0]] = value
		return
	}
	var child bson.M
	switch v := doc[path[0]].(type) {
	case bson.M:
		child = v
	case bson.D:
		child = v.Map()
	default:
		child = bson.M{}
	}
	setPath(child, path[1:], value)
	doc[path[0]] = child
}

// SessionBackend keeps session payloads in memory.
type SessionBackend struct {
	mu    sync.Mutex
	items map[string]sessionRecord
}

type sessionRecord struct {
	data      string
	expiresAt time.Time
}

var _ store.SessionBackend = (*SessionBackend)(nil)

func NewSessionBackend() *SessionBackend {
	return &SessionBackend{items: map[string]sessionRecord{}}
}

func (b *SessionBackend) Load(ctx context.Context, id string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.items[id]
	if !ok || !rec.expiresAt.After(time.Now()) {
		return "", errors.Wrap(store.ErrNotFound, "load session")
	}
	return rec.data, nil
}

func (b *SessionBackend) Save(ctx context.Context, id, data string, expiresAt time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items[id] = sessionRecord{data: data, expiresAt: expiresAt}
	return nil
}

func (b *SessionBackend) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.items, id)
	return nil
}

// Len counts live and expired records alike.
func (b *SessionBackend) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}
