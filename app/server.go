package app

import (
	"net/http"
	"strings"

	customMiddleware "github.com/Madhav-Gupta-28/estatehub-backend-go/middleware"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/routes"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/storage"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const DefaultBodyLimit = "2M"

// NewServer builds the echo instance with the full middleware chain and
// every route mounted.
func (a *Application) NewServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = utils.NewValidator()
	e.HTTPErrorHandler = customMiddleware.ErrorHandler(a.logger)
	// Client-supplied forwarding headers are only honoured behind a proxy.
	if a.cfg.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(customMiddleware.RequestLogger(a.logger.Named("http")))
	e.Use(a.metrics.Middleware())
	e.Use(middleware.Secure())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{a.cfg.ClientURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:   5,
		Skipper: func(c echo.Context) bool { return c.Path() == "/metrics" },
	}))
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit:   DefaultBodyLimit,
		Skipper: func(c echo.Context) bool { return strings.HasSuffix(c.Path(), "/images") },
	}))
	e.Use(a.rateLimiter())
	e.Use(session.Middleware(a.sessions))

	e.GET("/metrics", echo.WrapHandler(a.metrics.Handler()))
	if local, ok := a.images.(*storage.LocalStorage); ok && a.cfg.Storage.PublicURL == "" {
		e.Static(storage.DefaultLocalURL, local.Root())
	}

	routes.SetupRoutes(e, a.Handlers(), a.RouteDeps())
	return e
}

// rateLimiter allows RATE_LIMIT_MAX requests per window and client IP, with
// the whole allowance available as a burst.
func (a *Application) rateLimiter() echo.MiddlewareFunc {
	limit := a.cfg.RateLimit
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit.Max) / limit.Window.Seconds()),
		Burst:     limit.Max,
		ExpiresIn: limit.Window,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return utils.Forbidden(c, "Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return utils.Fail(c, http.StatusTooManyRequests, "Too many requests, please try again later")
		},
	})
}
