package routes

import (
	"github.com/Madhav-Gupta-28/estatehub-backend-go/handlers"
	customMiddleware "github.com/Madhav-Gupta-28/estatehub-backend-go/middleware"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/tracking"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// UploadBodyLimit covers a full image batch plus multipart overhead.
const UploadBodyLimit = "55M"

// Handlers groups the controllers mounted by SetupRoutes.
type Handlers struct {
	Auth       *handlers.AuthHandler
	Properties *handlers.PropertyHandler
	Favorites  *handlers.FavoriteHandler
	Contact    *handlers.ContactHandler
	Users      *handlers.UserHandler
	Health     *handlers.HealthHandler
}

// Deps is what the /api group needs besides the controllers.
type Deps struct {
	Users       store.UserStore
	Tracker     *tracking.Tracker
	SessionName string
	Logger      *zap.Logger
}

// SetupRoutes mounts every route. The session middleware must already be
// installed on e.
func SetupRoutes(e *echo.Echo, h Handlers, deps Deps) {
	e.GET("/health", h.Health.Live)

	api := e.Group("/api")
	api.Use(customMiddleware.LoadPrincipal(deps.Users, deps.SessionName))
	if deps.Tracker != nil {
		api.Use(customMiddleware.Track(deps.Tracker, deps.SessionName, deps.Logger))
	}

	requireAuth := customMiddleware.RequireAuth
	adminOnly := customMiddleware.RequireRole(models.RoleAdmin)

	api.GET("/health", h.Health.Ready)

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.GET("/google", h.Auth.GoogleLogin)
	auth.GET("/google/callback", h.Auth.GoogleCallback)
	auth.GET("/check", h.Auth.Check)
	auth.POST("/logout", h.Auth.Logout)

	// Property routes; static paths are registered before :id
	props := api.Group("/properties")
	props.GET("", h.Properties.List)
	props.GET("/featured", h.Properties.Featured)
	props.GET("/user/my-properties", h.Properties.MyProperties, requireAuth)
	props.GET("/:id", h.Properties.Get)
	props.POST("", h.Properties.Create, requireAuth)
	props.PUT("/:id", h.Properties.Update, requireAuth)
	props.DELETE("/:id", h.Properties.Delete, requireAuth)
	props.POST("/:id/images", h.Properties.UploadImages, requireAuth, echomw.BodyLimit(UploadBodyLimit))

	// Favorite routes
	favs := api.Group("/favorites", requireAuth)
	favs.GET("", h.Favorites.List)
	favs.POST("", h.Favorites.Add)
	favs.DELETE("", h.Favorites.Clear)
	favs.GET("/check/:propertyId", h.Favorites.Check)
	favs.DELETE("/:propertyId", h.Favorites.Remove)

	// Contact routes
	api.POST("/contact", h.Contact.Submit)
	api.GET("/contact", h.Contact.List, adminOnly)

	// User routes
	users := api.Group("/users")
	users.GET("/me", h.Users.Me, requireAuth)
	users.PUT("/me", h.Users.UpdateMe, requireAuth)
	users.GET("", h.Users.List, adminOnly)
	users.PUT("/:id/role", h.Users.UpdateRole, adminOnly)
}
