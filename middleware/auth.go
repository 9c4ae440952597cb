package middleware

import (
	"errors"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const contextUserKey = "user"

// LoadPrincipal resolves the session's user id to an active account and
// stores it on the context. Requests without a valid session pass through
// anonymously.
func LoadPrincipal(users store.UserStore, sessionName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := SessionString(c, sessionName, SessionUserKey)
			if raw == "" {
				return next(c)
			}
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				return next(c)
			}

			user, err := users.FindByID(c.Request().Context(), id)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return next(c)
				}
				return err
			}
			if user.IsActive {
				SetCurrentUser(c, user)
			}
			return next(c)
		}
	}
}

func SetCurrentUser(c echo.Context, user *models.User) {
	c.Set(contextUserKey, user)
}

// CurrentUser returns the authenticated user, or nil.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(contextUserKey).(*models.User)
	return user
}

func RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return utils.Unauthorized(c, "Authentication required")
		}
		return next(c)
	}
}

// RequireRole admits authenticated users holding one of roles.
func RequireRole(roles ...models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return utils.Unauthorized(c, "Authentication required")
			}
			for _, role := range roles {
				if user.Role == role {
					return next(c)
				}
			}
			return utils.Forbidden(c, "You do not have permission to perform this action")
		}
	}
}
