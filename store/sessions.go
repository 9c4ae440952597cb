package store

import (
	"context"
	"encoding/base32"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SessionBackend persists encoded session payloads by id.
type SessionBackend interface {
	Load(ctx context.Context, id string) (string, error)
	Save(ctx context.Context, id, data string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// SessionStore is a gorilla sessions.Store that keeps only the session id in
// the cookie and the values server side.
type SessionStore struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options
	backend SessionBackend
}

var _ sessions.Store = (*SessionStore)(nil)

func NewSessionStore(backend SessionBackend, opts sessions.Options, keyPairs ...[]byte) *SessionStore {
	codecs := securecookie.CodecsFromPairs(keyPairs...)
	for _, codec := range codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(opts.MaxAge)
		}
	}
	return &SessionStore{Codecs: codecs, Options: &opts, backend: backend}
}

func NewMongoSessionStore(db *mongo.Database, opts sessions.Options, keyPairs ...[]byte) *SessionStore {
	return NewSessionStore(&MongoSessionBackend{collection: db.Collection(SessionsCollection)}, opts, keyPairs...)
}

func (s *SessionStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New returns the session named by the request cookie, or a fresh one when
// the cookie is absent, tampered with or points at an expired record.
func (s *SessionStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.Options
	session.Options = &opts
	session.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, cookie.Value, &session.ID, s.Codecs...); err != nil {
		session.ID = ""
		return session, nil
	}

	data, err := s.backend.Load(r.Context(), session.ID)
	if err != nil {
		session.ID = ""
		if errors.Is(err, ErrNotFound) {
			return session, nil
		}
		return session, err
	}
	if err := securecookie.DecodeMulti(name, data, &session.Values, s.Codecs...); err != nil {
		session.ID = ""
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

// Discard deletes the record stored under id.
func (s *SessionStore) Discard(ctx context.Context, id string) error {
	return s.backend.Delete(ctx, id)
}

func (s *SessionStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := s.backend.Delete(r.Context(), session.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)), "=")
	}
	data, err := securecookie.EncodeMulti(session.Name(), session.Values, s.Codecs...)
	if err != nil {
		return errors.Wrap(err, "encode session")
	}
	expiresAt := time.Now().UTC().Add(time.Duration(session.Options.MaxAge) * time.Second)
	if err := s.backend.Save(r.Context(), session.ID, data, expiresAt); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return errors.Wrap(err, "encode session cookie")
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

type MongoSessionBackend struct {
	collection *mongo.Collection
}

type sessionDocument struct {
	ID         string    `bson:"_id"`
	Data       string    `bson:"data"`
	ModifiedAt time.Time `bson:"modifiedAt"`
	ExpiresAt  time.Time `bson:"expiresAt"`
}

// Load treats records past expiresAt as missing; the TTL monitor only runs
// once a minute.
func (b *MongoSessionBackend) Load(ctx context.Context, id string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc sessionDocument
	filter := bson.M{"_id": id, "expiresAt": bson.M{"$gt": time.Now().UTC()}}
	if err := b.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		return "", translate(err, "load session")
	}
	return doc.Data, nil
}

func (b *MongoSessionBackend) Save(ctx context.Context, id, data string, expiresAt time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"data":       data,
		"modifiedAt": time.Now().UTC(),
		"expiresAt":  expiresAt,
	}}
	_, err := b.collection.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true))
	return errors.Wrap(err, "save session")
}

func (b *MongoSessionBackend) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := b.collection.DeleteOne(ctx, bson.M{"_id": id})
	return errors.Wrap(err, "delete session")
}
