package handlers

import (
	"strings"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type ContactHandler struct {
	contacts store.ContactStore
	logger   *zap.Logger
}

func NewContactHandler(contacts store.ContactStore, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

func (h *ContactHandler) Submit(c echo.Context) error {
	var req models.ContactRequest
	if ok, err := bindValid(c, &req); !ok {
		return err
	}

	contact := &models.Contact{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if req.PropertyID != "" {
		id, err := primitive.ObjectIDFromHex(req.PropertyID)
		if err != nil {
			return utils.BadRequest(c, "Invalid property ID")
		}
		contact.Property = &id
	}
	if contact.Name == "" || contact.Message == "" {
		return utils.BadRequest(c, "Validation failed", "name, email and message are required")
	}

	if err := h.contacts.Create(c.Request().Context(), contact); err != nil {
		return serverError(c, h.logger, "save contact", err)
	}
	return utils.OKMessage(c, "Message sent successfully", nil)
}

// List is the admin inbox, newest first.
func (h *ContactHandler) List(c echo.Context) error {
	page, limit := pageParams(c)
	items, total, err := h.contacts.List(c.Request().Context(), page, limit)
	if err != nil {
		return serverError(c, h.logger, "list contacts", err)
	}
	if items == nil {
		items = []*models.Contact{}
	}
	return paginated(c, items, page, limit, total)
}
