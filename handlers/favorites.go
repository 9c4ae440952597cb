package handlers

import (
	"context"
	"errors"
	"strings"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/middleware"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/tasks"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type FavoriteHandler struct {
	stores *store.Stores
	queue  tasks.Submitter
	logger *zap.Logger
}

func NewFavoriteHandler(stores *store.Stores, queue tasks.Submitter, logger *zap.Logger) *FavoriteHandler {
	return &FavoriteHandler{stores: stores, queue: queue, logger: logger}
}

// List returns the caller's favorites with their properties. Entries whose
// property is gone are dropped from the page and deleted in the background.
// The total counts stored favorites, so page boundaries stay stable for the
// request and shrink once the orphans are deleted.
func (h *FavoriteHandler) List(c echo.Context) error {
	user := middleware.CurrentUser(c)
	page, limit := pageParams(c)
	ctx := c.Request().Context()

	favs, total, err := h.stores.Favorites.ListByUser(ctx, user.ID, page, limit)
	if err != nil {
		return serverError(c, h.logger, "list favorites", err)
	}

	ids := make([]primitive.ObjectID, 0, len(favs))
	for _, f := range favs {
		ids = append(ids, f.Property)
	}
	var props []*models.Property
	if len(ids) > 0 {
		props, err = h.stores.Properties.FindByIDs(ctx, ids)
		if err != nil {
			return serverError(c, h.logger, "load favorite properties", err)
		}
	}
	if err := store.AttachOwners(ctx, h.stores.Users, props...); err != nil {
		return serverError(c, h.logger, "attach owners", err)
	}
	byID := make(map[primitive.ObjectID]*models.Property, len(props))
	for _, p := range props {
		byID[p.ID] = p
	}

	out := make([]*models.Favorite, 0, len(favs))
	var orphans []primitive.ObjectID
	for _, f := range favs {
		p, ok := byID[f.Property]
		if !ok {
			orphans = append(orphans, f.Property)
			continue
		}
		f.PropertyDetails = p
		out = append(out, f)
	}
	if len(orphans) > 0 {
		h.queue.Submit("orphan_favorites", func(ctx context.Context) error {
			_, err := h.stores.Favorites.DeleteByProperties(ctx, orphans)
			return err
		})
	}
	return paginated(c, out, page, limit, total)
}

func (h *FavoriteHandler) Add(c echo.Context) error {
	user := middleware.CurrentUser(c)
	var req models.AddFavoriteRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	propertyID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.PropertyID))
	if err != nil {
		return utils.BadRequest(c, "Invalid property ID")
	}

	ctx := c.Request().Context()
	p, err := h.stores.Properties.Get(ctx, propertyID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Property not found")
		}
		return serverError(c, h.logger, "get property", err)
	}

	fav := &models.Favorite{User: user.ID, Property: p.ID, Notes: strings.TrimSpace(req.Notes)}
	if err := h.stores.Favorites.Add(ctx, fav); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return utils.BadRequest(c, "Property already in favorites")
		}
		return serverError(c, h.logger, "add favorite", err)
	}
	fav.PropertyDetails = p
	middleware.SetAction(c, "add_favorite", map[string]string{"propertyId": p.ID.Hex()})
	return utils.Created(c, "Added to favorites", fav)
}

func (h *FavoriteHandler) Remove(c echo.Context) error {
	user := middleware.CurrentUser(c)
	propertyID, ok := paramID(c, "propertyId")
	if !ok {
		return utils.BadRequest(c, "Invalid property ID")
	}

	if err := h.stores.Favorites.Remove(c.Request().Context(), user.ID, propertyID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Favorite not found")
		}
		return serverError(c, h.logger, "remove favorite", err)
	}
	middleware.SetAction(c, "remove_favorite", map[string]string{"propertyId": propertyID.Hex()})
	return utils.OKMessage(c, "Removed from favorites", nil)
}

func (h *FavoriteHandler) Check(c echo.Context) error {
	user := middleware.CurrentUser(c)
	propertyID, ok := paramID(c, "propertyId")
	if !ok {
		return utils.BadRequest(c, "Invalid property ID")
	}

	exists, err := h.stores.Favorites.Exists(c.Request().Context(), user.ID, propertyID)
	if err != nil {
		return serverError(c, h.logger, "check favorite", err)
	}
	return utils.OK(c, echo.Map{"isFavorite": exists})
}

func (h *FavoriteHandler) Clear(c echo.Context) error {
	user := middleware.CurrentUser(c)
	n, err := h.stores.Favorites.ClearUser(c.Request().Context(), user.ID)
	if err != nil {
		return serverError(c, h.logger, "clear favorites", err)
	}
	return utils.OKMessage(c, "All favorites cleared", echo.Map{"deletedCount": n})
}
