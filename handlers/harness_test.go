package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/handlers"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/middleware"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/oauth"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/routes"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/service"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/storage"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store/storetest"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/tracking"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionName  = "estatehub.sid"
	testSecret   = "test-session-secret-0123456789abcdef"
	clientURL    = "http://client.test"
	testPassword = "secret123"
)

type inlineQueue struct{}

func (inlineQueue) Submit(name string, fn func(ctx context.Context) error) bool {
	_ = fn(context.Background())
	return true
}

type stubProvider struct {
	profile *models.GoogleProfile
	err     error
	codes   []string
}

func (p *stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.test/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (p *stubProvider) Exchange(ctx context.Context, code string) (*models.GoogleProfile, error) {
	p.codes = append(p.codes, code)
	return p.profile, p.err
}

type harness struct {
	t        *testing.T
	e        *echo.Echo
	fakes    *storetest.Fakes
	images   *storage.LocalStorage
	google   *stubProvider
	pingErr  error
	sessions *storetest.SessionBackend
}

type options struct {
	withoutGoogle bool
}

func newHarness(t *testing.T, opts ...options) *harness {
	t.Helper()
	var opt options
	if len(opts) > 0 {
		opt = opts[0]
	}

	h := &harness{
		t:        t,
		fakes:    storetest.New(),
		google:   &stubProvider{},
		sessions: storetest.NewSessionBackend(),
	}
	images, err := storage.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)
	h.images = images

	logger := zap.NewNop()
	stores := h.fakes.Stores()
	queue := inlineQueue{}

	var provider oauth.Provider = h.google
	if opt.withoutGoogle {
		provider = nil
	}

	e := echo.New()
	e.Validator = utils.NewValidator()
	e.HTTPErrorHandler = middleware.ErrorHandler(logger)
	sessionStore := store.NewSessionStore(h.sessions, middleware.SessionOptions(3600, false), []byte(testSecret))
	e.Use(session.Middleware(sessionStore))

	routes.SetupRoutes(e, routes.Handlers{
		Auth:       handlers.NewAuthHandler(service.NewAuthService(stores.Users), provider, oauth.NewStates(testSecret), sessionName, clientURL, logger),
		Properties: handlers.NewPropertyHandler(stores, images, queue, logger),
		Favorites:  handlers.NewFavoriteHandler(stores, queue, logger),
		Contact:    handlers.NewContactHandler(stores.Contacts, logger),
		Users:      handlers.NewUserHandler(stores.Users, logger),
		Health: handlers.NewHealthHandler(func(ctx context.Context) error {
			return h.pingErr
		}, logger),
	}, routes.Deps{
		Users:       stores.Users,
		Tracker:     tracking.NewTracker(queue, stores.Interactions, logger),
		SessionName: sessionName,
		Logger:      logger,
	})
	h.e = e
	return h
}

// user stores an active local account with testPassword.
func (h *harness) user(email string, role models.Role) *models.User {
	h.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(h.t, err)
	u := &models.User{
		Name:     strings.Split(email, "@")[0],
		Email:    email,
		Password: string(hash),
		Provider: models.ProviderLocal,
		Role:     role,
		IsActive: true,
	}
	require.NoError(h.t, h.fakes.Users.Create(context.Background(), u))
	return u
}

// client is a browser with its own cookie jar.
type client struct {
	h       *harness
	cookies map[string]*http.Cookie
}

func (h *harness) client() *client {
	return &client{h: h, cookies: map[string]*http.Cookie{}}
}

// login signs in as a freshly stored user and returns the client.
func (h *harness) login(email string, role models.Role) (*client, *models.User) {
	h.t.Helper()
	u := h.user(email, role)
	c := h.client()
	rec := c.do(http.MethodPost, "/api/auth/login", map[string]string{"email": email, "password": testPassword})
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	return c, u
}

func (c *client) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.h.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	return c.send(req)
}

func (c *client) send(req *http.Request) *httptest.ResponseRecorder {
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c.h.e.ServeHTTP(rec, req)
	for _, cookie := range rec.Result().Cookies() {
		if cookie.MaxAge < 0 || cookie.Value == "" {
			delete(c.cookies, cookie.Name)
			continue
		}
		c.cookies[cookie.Name] = cookie
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func data(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	d, ok := decode(t, rec)["data"].(map[string]interface{})
	require.True(t, ok, rec.Body.String())
	return d
}

func list(t *testing.T, rec *httptest.ResponseRecorder) []interface{} {
	t.Helper()
	d, ok := decode(t, rec)["data"].([]interface{})
	require.True(t, ok, rec.Body.String())
	return d
}
