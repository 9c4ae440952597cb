package handlers

import (
	"errors"
	"strings"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/middleware"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type UserHandler struct {
	users  store.UserStore
	logger *zap.Logger
}

func NewUserHandler(users store.UserStore, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// Me returns the signed-in user's profile.
func (h *UserHandler) Me(c echo.Context) error {
	return utils.OK(c, middleware.CurrentUser(c))
}

// UpdateMe changes name, phone, avatar or preferences.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user := middleware.CurrentUser(c)
	var req models.UpdateProfileRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	set := bson.M{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return utils.BadRequest(c, "Validation failed", "name cannot be empty")
		}
		set["name"] = name
	}
	if req.Phone != nil {
		set["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Avatar != nil {
		set["avatar"] = strings.TrimSpace(*req.Avatar)
	}
	if prefs := req.Preferences; prefs != nil {
		if prefs.BudgetMin < 0 || prefs.BudgetMax < 0 || (prefs.BudgetMax > 0 && prefs.BudgetMin > prefs.BudgetMax) {
			return utils.BadRequest(c, "Validation failed", "preferences budget range is invalid")
		}
		prefs.PropertyTypes = models.NormalizeTags(prefs.PropertyTypes)
		prefs.Cities = models.NormalizeTags(prefs.Cities)
		set["preferences"] = prefs
	}
	if len(set) == 0 {
		return utils.BadRequest(c, "No valid fields to update")
	}

	updated, err := h.users.Update(c.Request().Context(), user.ID, set)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return serverError(c, h.logger, "update profile", err)
	}
	middleware.SetCurrentUser(c, updated)
	middleware.SetAction(c, "update_profile", nil)
	return utils.OKMessage(c, "Profile updated successfully", updated)
}

// List is the admin user directory.
func (h *UserHandler) List(c echo.Context) error {
	page, limit := pageParams(c)
	users, total, err := h.users.List(c.Request().Context(), page, limit)
	if err != nil {
		return serverError(c, h.logger, "list users", err)
	}
	if users == nil {
		users = []*models.User{}
	}
	return paginated(c, users, page, limit, total)
}

// UpdateRole lets an admin change another account's role.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	admin := middleware.CurrentUser(c)
	id, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid user ID")
	}
	if id == admin.ID {
		return utils.BadRequest(c, "You cannot change your own role")
	}

	var req models.UpdateRoleRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	updated, err := h.users.Update(c.Request().Context(), id, bson.M{"role": req.Role})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "User not found")
		}
		return serverError(c, h.logger, "update role", err)
	}
	h.logger.Info("role changed",
		zap.String("user", id.Hex()),
		zap.String("role", string(req.Role)),
		zap.String("by", admin.ID.Hex()),
	)
	return utils.OKMessage(c, "User role updated successfully", updated)
}
