package middleware

import (
	"context"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
)

// Session value keys.
const (
	SessionUserKey     = "userId"
	SessionTrackingKey = "trackingId"
	SessionNonceKey    = "oauthNonce"
)

// SessionOptions are the cookie flags for the environment. Production needs
// SameSite=None because the frontend is served from another origin.
func SessionOptions(maxAgeSeconds int, production bool) sessions.Options {
	opts := sessions.Options{
		Path:     "/",
		MaxAge:   maxAgeSeconds,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if production {
		opts.Secure = true
		opts.SameSite = http.SameSiteNoneMode
	}
	return opts
}

// SessionString reads a string value, returning "" when the session or the
// key is missing.
func SessionString(c echo.Context, name, key string) string {
	sess, err := session.Get(name, c)
	if err != nil || sess == nil {
		return ""
	}
	v, _ := sess.Values[key].(string)
	return v
}

// SaveSession applies mutate to the named session and writes it back.
func SaveSession(c echo.Context, name string, mutate func(*sessions.Session)) error {
	sess, err := session.Get(name, c)
	if err != nil {
		return err
	}
	mutate(sess)
	return sess.Save(c.Request(), c.Response())
}

// discarder is implemented by stores that keep session records server side.
type discarder interface {
	Discard(ctx context.Context, id string) error
}

// EstablishSession binds the session to userID under a fresh session id; the
// record behind the pre-login cookie is deleted.
func EstablishSession(c echo.Context, name, userID string) error {
	sess, err := session.Get(name, c)
	if err != nil {
		return err
	}
	if d, ok := sess.Store().(discarder); ok && sess.ID != "" {
		if err := d.Discard(c.Request().Context(), sess.ID); err != nil {
			return err
		}
	}
	sess.ID = ""
	sess.IsNew = true
	sess.Values[SessionUserKey] = userID
	delete(sess.Values, SessionNonceKey)
	return sess.Save(c.Request(), c.Response())
}

// DestroySession expires the cookie and the stored record.
func DestroySession(c echo.Context, name string) error {
	return SaveSession(c, name, func(s *sessions.Session) {
		for k := range s.Values {
			delete(s.Values, k)
		}
		s.Options.MaxAge = -1
	})
}
