package app

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/config"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/database"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/handlers"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/jobs"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/metrics"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/middleware"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/oauth"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/routes"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/service"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/storage"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/tasks"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/tracking"
	"github.com/gorilla/sessions"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	pingTimeout     = 2 * time.Second
	indexTimeout    = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Application owns every long-lived dependency. Nothing is kept in package
// globals; handlers receive what they need through their constructors.
type Application struct {
	cfg    *config.AppConfig
	logger *zap.Logger

	client *mongo.Client
	db     *mongo.Database

	stores   *store.Stores
	sessions sessions.Store
	queue    *tasks.Queue
	tracker  *tracking.Tracker
	images   storage.Storage
	metrics  *metrics.Metrics
	jobs     *jobs.Jobs
	auth     *service.AuthService
	google   oauth.Provider
	states   *oauth.States
	ping     handlers.Pinger
}

func NewApplication(cfg *config.AppConfig, logger *zap.Logger) *Application {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Application{cfg: cfg, logger: logger}
}

// Init connects to MongoDB and builds the rest of the graph on top of it.
func (a *Application) Init(ctx context.Context) error {
	client, db, err := database.Connect(ctx, a.cfg.MongoURI, a.cfg.MongoDatabase)
	if err != nil {
		return err
	}
	a.client, a.db = client, db

	ictx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()
	if err := store.EnsureIndexes(ictx, db); err != nil {
		return err
	}

	opts := middleware.SessionOptions(int(a.cfg.Session.MaxAge.Seconds()), a.cfg.IsProduction())
	sessionStore := store.NewMongoSessionStore(db, opts, SessionKeys(a.cfg.Session.Secret)...)
	ping := func(ctx context.Context) error {
		return database.Ping(ctx, client, pingTimeout)
	}
	return a.Build(ctx, store.NewMongoStores(db), sessionStore, ping)
}

// Build wires everything that does not need a live database connection.
func (a *Application) Build(ctx context.Context, stores *store.Stores, sessionStore sessions.Store, ping handlers.Pinger) error {
	a.stores = stores
	a.sessions = sessionStore
	a.ping = ping
	a.metrics = metrics.New()

	queue, err := tasks.New(a.cfg.WorkerPoolSize, tasks.DefaultTaskTimeout, a.logger.Named("tasks"), a.metrics)
	if err != nil {
		return err
	}
	a.queue = queue
	a.tracker = tracking.NewTracker(queue, stores.Interactions, a.logger.Named("tracking"))

	images, err := storage.NewStorage(ctx, a.cfg.Storage)
	if err != nil {
		return errors.Wrap(err, "init image storage")
	}
	a.images = images

	a.auth = service.NewAuthService(stores.Users)
	a.states = oauth.NewStates(a.cfg.Session.Secret)
	if a.cfg.Google.Enabled() {
		a.google = oauth.NewGoogleProvider(a.cfg.Google)
	} else {
		a.logger.Warn("google sign-in disabled: GOOGLE_CLIENT_ID or GOOGLE_CLIENT_SECRET missing")
	}

	a.jobs = jobs.New(stores, a.cfg.InteractionRetentionDays, a.metrics, a.logger.Named("jobs"))
	return nil
}

// StartJobs begins the housekeeping schedule.
func (a *Application) StartJobs() error {
	return a.jobs.Start()
}

func (a *Application) Config() *config.AppConfig { return a.cfg }
func (a *Application) Logger() *zap.Logger { return a.logger }
func (a *Application) Stores() *store.Stores { return a.stores }
func (a *Application) SessionStore() sessions.Store { return a.sessions }
func (a *Application) Metrics() *metrics.Metrics { return a.metrics }
func (a *Application) Storage() storage.Storage { return a.images }
func (a *Application) Auth() *service.AuthService { return a.auth }

// Handlers builds the controllers.
func (a *Application) Handlers() routes.Handlers {
	log := a.logger.Named("http")
	return routes.Handlers{
		Auth:       handlers.NewAuthHandler(a.auth, a.google, a.states, a.cfg.Session.Name, a.cfg.ClientURL, log),
		Properties: handlers.NewPropertyHandler(a.stores, a.images, a.queue, log),
		Favorites:  handlers.NewFavoriteHandler(a.stores, a.queue, log),
		Contact:    handlers.NewContactHandler(a.stores.Contacts, log),
		Users:      handlers.NewUserHandler(a.stores.Users, log),
		Health:     handlers.NewHealthHandler(a.ping, log),
	}
}

func (a *Application) RouteDeps() routes.Deps {
	return routes.Deps{
		Users:       a.stores.Users,
		Tracker:     a.tracker,
		SessionName: a.cfg.Session.Name,
		Logger:      a.logger.Named("tracking"),
	}
}

// Release stops the scheduler, drains the task queue and closes the database
// connection.
func (a *Application) Release(ctx context.Context) {
	if a.jobs != nil {
		a.jobs.Stop(ctx)
	}
	if a.queue != nil {
		if err := a.queue.Shutdown(shutdownTimeout); err != nil {
			a.logger.Warn("task queue did not drain", zap.Error(err))
		}
	}
	if a.client != nil {
		if err := a.client.Disconnect(ctx); err != nil {
			a.logger.Warn("disconnect mongodb", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// SessionKeys derives the cookie signing key and a 32-byte encryption key
// from the session secret.
func SessionKeys(secret string) [][]byte {
	block := sha256.Sum256([]byte("session-encryption:" + secret))
	return [][]byte{[]byte(secret), block[:]}
}
