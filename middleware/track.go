package middleware

import (
	"errors"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/tracking"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	contextActionKey = "trackAction"
	contextDetailKey = "trackDetail"
)

// SetAction names the interaction recorded for this request and attaches
// optional details such as the property involved.
func SetAction(c echo.Context, action string, extra map[string]string) {
	c.Set(contextActionKey, action)
	if extra != nil {
		c.Set(contextDetailKey, extra)
	}
}

// Track records one interaction per authenticated request after the handler
// has run. Recording failures never affect the response.
func Track(tracker *tracking.Tracker, sessionName string, logger *zap.Logger) echo.MiddlewareFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return next(c)
			}

			// The id has to be stored before the handler writes the body.
			sessionID := SessionString(c, sessionName, SessionTrackingKey)
			if sessionID == "" {
				req := c.Request()
				sessionID = tracking.DeriveSessionID(req.UserAgent(), c.RealIP(), time.Now())
				err := SaveSession(c, sessionName, func(s *sessions.Session) {
					s.Values[SessionTrackingKey] = sessionID
				})
				if err != nil {
					logger.Warn("store tracking id", zap.Error(err))
				}
			}

			err := next(c)

			// The handler may have logged out or switched accounts.
			if current := CurrentUser(c); current != nil {
				user = current
			}
			tracker.Record(models.Interaction{
				User:      user.ID,
				SessionID: sessionID,
				Action:    actionFor(c),
				Details:   detailsFor(c, err),
			})
			return err
		}
	}
}

func actionFor(c echo.Context) string {
	if action, ok := c.Get(contextActionKey).(string); ok && action != "" {
		return action
	}
	return c.Request().Method + " " + c.Path()
}

func detailsFor(c echo.Context, err error) models.InteractionDetails {
	req := c.Request()
	status := c.Response().Status
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
	}
	details := models.InteractionDetails{
		UserAgent: req.UserAgent(),
		IPAddress: c.RealIP(),
		Method:    req.Method,
		Path:      req.URL.Path,
		Status:    status,
	}
	if extra, ok := c.Get(contextDetailKey).(map[string]string); ok {
		if id := extra["propertyId"]; id != "" {
			details.PropertyID = id
		}
		rest := map[string]string{}
		for k, v := range extra {
			if k != "propertyId" {
				rest[k] = v
			}
		}
		if len(rest) > 0 {
			details.Extra = rest
		}
	}
	return details
}
