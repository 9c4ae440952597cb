package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/middleware"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/oauth"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/service"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Error codes appended to the client redirect after a failed Google sign-in.
const (
	oauthDenied       = "access_denied"
	oauthBadState     = "invalid_state"
	oauthMissingCode  = "missing_code"
	oauthUnverified   = "email_not_verified"
	oauthFailed       = "oauth_failed"
	oauthDisabled     = "account_disabled"
	oauthServerFailed = "server_error"
)

type AuthHandler struct {
	auth        *service.AuthService
	provider    oauth.Provider
	states      *oauth.States
	sessionName string
	clientURL   string
	logger      *zap.Logger
}

// NewAuthHandler wires the auth routes. provider may be nil when Google
// sign-in is not configured.
func NewAuthHandler(auth *service.AuthService, provider oauth.Provider, states *oauth.States, sessionName, clientURL string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:        auth,
		provider:    provider,
		states:      states,
		sessionName: sessionName,
		clientURL:   clientURL,
		logger:      logger,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	user, err := h.auth.Register(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			return utils.BadRequest(c, "User already exists with this email")
		}
		return serverError(c, h.logger, "register user", err)
	}

	if err := h.signIn(c, user); err != nil {
		return serverError(c, h.logger, "establish session", err)
	}
	return utils.Created(c, "Registration successful", user)
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	user, err := h.auth.Login(c.Request().Context(), req)
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return utils.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, service.ErrGoogleAccount):
		return utils.Unauthorized(c, "This account uses Google sign-in. Please continue with Google.")
	case errors.Is(err, service.ErrInactive):
		return utils.Unauthorized(c, "Account is deactivated")
	case err != nil:
		return serverError(c, h.logger, "login", err)
	}

	if err := h.signIn(c, user); err != nil {
		return serverError(c, h.logger, "establish session", err)
	}
	return utils.OKMessage(c, "Login successful", user)
}

// GoogleLogin starts the OAuth flow. The nonce stays in the session and the
// signed state carries a copy, so the callback can only complete in the
// browser that started it.
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	if h.provider == nil {
		return utils.Fail(c, http.StatusServiceUnavailable, "Google sign-in is not configured")
	}

	state, nonce, err := h.states.New()
	if err != nil {
		return serverError(c, h.logger, "create oauth state", err)
	}
	err = middleware.SaveSession(c, h.sessionName, func(s *sessions.Session) {
		s.Values[middleware.SessionNonceKey] = nonce
	})
	if err != nil {
		return serverError(c, h.logger, "store oauth nonce", err)
	}
	return c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state))
}

func (h *AuthHandler) GoogleCallback(c echo.Context) error {
	if h.provider == nil {
		return h.redirectFailure(c, oauthFailed)
	}
	if c.QueryParam("error") != "" {
		return h.redirectFailure(c, oauthDenied)
	}

	nonce := middleware.SessionString(c, h.sessionName, middleware.SessionNonceKey)
	if err := h.states.Verify(c.QueryParam("state"), nonce); err != nil {
		h.logger.Warn("oauth state rejected", zap.Error(err))
		return h.redirectFailure(c, oauthBadState)
	}

	code := c.QueryParam("code")
	if code == "" {
		return h.redirectFailure(c, oauthMissingCode)
	}

	ctx := c.Request().Context()
	profile, err := h.provider.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, oauth.ErrEmailNotVerified) {
			return h.redirectFailure(c, oauthUnverified)
		}
		h.logger.Warn("oauth exchange failed", zap.Error(err))
		return h.redirectFailure(c, oauthFailed)
	}

	user, err := h.auth.ResolveGoogleUser(ctx, profile)
	if err != nil {
		if errors.Is(err, service.ErrInactive) {
			return h.redirectFailure(c, oauthDisabled)
		}
		h.logger.Error("resolve google user", zap.Error(err))
		return h.redirectFailure(c, oauthServerFailed)
	}

	if err := h.signIn(c, user); err != nil {
		h.logger.Error("establish session", zap.Error(err))
		return h.redirectFailure(c, oauthServerFailed)
	}
	return c.Redirect(http.StatusFound, h.clientURL+"/auth/callback?success=true")
}

func (h *AuthHandler) Check(c echo.Context) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return c.JSON(http.StatusOK, echo.Map{"success": true, "authenticated": false, "data": nil})
	}
	return utils.OK(c, user, echo.Map{"authenticated": true})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	if err := middleware.DestroySession(c, h.sessionName); err != nil {
		return serverError(c, h.logger, "destroy session", err)
	}
	return utils.OKMessage(c, "Logged out successfully", nil)
}

func (h *AuthHandler) signIn(c echo.Context, user *models.User) error {
	if err := middleware.EstablishSession(c, h.sessionName, user.ID.Hex()); err != nil {
		return err
	}
	middleware.SetCurrentUser(c, user)
	middleware.SetAction(c, "login", map[string]string{"provider": user.Provider})
	return nil
}

func (h *AuthHandler) redirectFailure(c echo.Context, code string) error {
	return c.Redirect(http.StatusFound, h.clientURL+"/auth/callback?success=false&error="+url.QueryEscape(code))
}
