package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/filters"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/middleware"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/storage"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/store"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/tasks"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	DefaultFeaturedLimit = 6
	MaxFeaturedLimit     = 24

	MaxImagesPerUpload = 10
	MaxImageSize       = 5 << 20

	slugAttempts = 3
)

// propertyDetail is the single-listing view with display helpers.
type propertyDetail struct {
	*models.Property
	FormattedPrice string `json:"formattedPrice"`
	EstimatedEMI   int64  `json:"estimatedEmi"`
}

func detail(p *models.Property) propertyDetail {
	return propertyDetail{
		Property:       p,
		FormattedPrice: utils.FormatPrice(p.Price),
		EstimatedEMI:   utils.EstimateEMI(p.Price),
	}
}

type PropertyHandler struct {
	stores *store.Stores
	images storage.Storage
	queue  tasks.Submitter
	logger *zap.Logger
}

func NewPropertyHandler(stores *store.Stores, images storage.Storage, queue tasks.Submitter, logger *zap.Logger) *PropertyHandler {
	return &PropertyHandler{stores: stores, images: images, queue: queue, logger: logger}
}

func (h *PropertyHandler) List(c echo.Context) error {
	q := filters.ParsePropertyQuery(c.QueryParams())
	ctx := c.Request().Context()

	items, total, err := h.stores.Properties.List(ctx, q)
	if err != nil {
		return serverError(c, h.logger, "list properties", err)
	}
	if err := store.AttachOwners(ctx, h.stores.Users, items...); err != nil {
		return serverError(c, h.logger, "attach owners", err)
	}
	return paginated(c, nonNil(items), q.Page, q.Limit, total)
}

func (h *PropertyHandler) Featured(c echo.Context) error {
	limit := utils.QueryInt(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if limit > MaxFeaturedLimit {
		limit = MaxFeaturedLimit
	}
	ctx := c.Request().Context()

	items, err := h.stores.Properties.Featured(ctx, limit)
	if err != nil {
		return serverError(c, h.logger, "list featured properties", err)
	}
	if err := store.AttachOwners(ctx, h.stores.Users, items...); err != nil {
		return serverError(c, h.logger, "attach owners", err)
	}
	return utils.OK(c, nonNil(items))
}

func (h *PropertyHandler) MyProperties(c echo.Context) error {
	user := middleware.CurrentUser(c)
	page, limit := pageParams(c)
	ctx := c.Request().Context()

	items, total, err := h.stores.Properties.ListByOwner(ctx, user.ID, page, limit)
	if err != nil {
		return serverError(c, h.logger, "list own properties", err)
	}
	if err := store.AttachOwners(ctx, h.stores.Users, items...); err != nil {
		return serverError(c, h.logger, "attach owners", err)
	}
	return paginated(c, nonNil(items), page, limit, total)
}

// Get returns one listing and counts the view in the background. Listings
// that are not active are only visible to their owner and admins.
func (h *PropertyHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid property ID")
	}
	ctx := c.Request().Context()

	p, err := h.stores.Properties.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Property not found")
		}
		return serverError(c, h.logger, "get property", err)
	}
	if p.Status != models.StatusActive && !canManage(middleware.CurrentUser(c), p) {
		return utils.NotFound(c, "Property not found")
	}
	if err := store.AttachOwners(ctx, h.stores.Users, p); err != nil {
		return serverError(c, h.logger, "attach owners", err)
	}

	h.queue.Submit("property_view", func(ctx context.Context) error {
		return h.stores.Properties.IncrementViews(ctx, id)
	})
	middleware.SetAction(c, "view_property", map[string]string{"propertyId": id.Hex()})
	return utils.OK(c, detail(p))
}

func (h *PropertyHandler) Create(c echo.Context) error {
	user := middleware.CurrentUser(c)
	input, ok, err := h.readInput(c, user)
	if !ok {
		return err
	}
	if missing := input.MissingForCreate(); len(missing) > 0 {
		return utils.BadRequest(c, "Validation failed", missing...)
	}

	input.Images = h.heldImages(input.Images, nil)
	p := &models.Property{Owner: user.ID, Status: models.StatusActive}
	input.Apply(p)
	if input.PricePerSqft == nil {
		p.PricePerSqft = pricePerSqft(p.Price, p.Area)
	}

	ctx := c.Request().Context()
	for attempt := 1; ; attempt++ {
		p.ID = primitive.NilObjectID
		p.ListingID = utils.GenerateListingID()
		p.Slug = utils.GenerateSlug(p.Title, strings.ToLower(utils.RandomHex(3)))
		err = h.stores.Properties.Create(ctx, p)
		if err == nil || !errors.Is(err, store.ErrDuplicate) || attempt == slugAttempts {
			break
		}
	}
	if err != nil {
		return serverError(c, h.logger, "create property", err)
	}

	p.OwnerDetails = ownerSummary(user)
	middleware.SetAction(c, "create_property", map[string]string{"propertyId": p.ID.Hex()})
	return utils.Created(c, "Property created successfully", detail(p))
}

func (h *PropertyHandler) Update(c echo.Context) error {
	user := middleware.CurrentUser(c)
	p, ok, err := h.loadManaged(c, user, "update")
	if !ok {
		return err
	}

	input, ok, err := h.readInput(c, user)
	if !ok {
		return err
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return utils.BadRequest(c, "Validation failed", "title cannot be empty")
	}

	input.Images = h.heldImages(input.Images, p.Images)
	set := input.UpdateDocument()
	if len(set) == 0 {
		return utils.BadRequest(c, "No valid fields to update")
	}
	if input.PricePerSqft == nil && (input.Price != nil || input.Area != nil) {
		price, area := p.Price, p.Area
		if input.Price != nil {
			price = *input.Price
		}
		if input.Area != nil {
			area = input.Area
		}
		if v := pricePerSqft(price, area); v != nil {
			set["pricePerSqft"] = *v
		}
	}

	ctx := c.Request().Context()
	updated, err := h.stores.Properties.Update(ctx, p.ID, set)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Property not found")
		}
		return serverError(c, h.logger, "update property", err)
	}
	if err := store.AttachOwners(ctx, h.stores.Users, updated); err != nil {
		return serverError(c, h.logger, "attach owners", err)
	}
	middleware.SetAction(c, "update_property", map[string]string{"propertyId": p.ID.Hex()})
	return utils.OKMessage(c, "Property updated successfully", detail(updated))
}

// Delete removes the listing and the favorites pointing at it. Stored images
// are cleaned up in the background.
func (h *PropertyHandler) Delete(c echo.Context) error {
	user := middleware.CurrentUser(c)
	p, ok, err := h.loadManaged(c, user, "delete")
	if !ok {
		return err
	}

	ctx := c.Request().Context()
	if err := h.stores.Properties.Delete(ctx, p.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Property not found")
		}
		return serverError(c, h.logger, "delete property", err)
	}
	// Orphans left by a failure here are removed by the scheduled sweep.
	if _, err := h.stores.Favorites.DeleteByProperties(ctx, []primitive.ObjectID{p.ID}); err != nil {
		h.logger.Warn("delete favorites of property", zap.String("property", p.ID.Hex()), zap.Error(err))
	}
	h.removeImages(p.Images)

	middleware.SetAction(c, "delete_property", map[string]string{"propertyId": p.ID.Hex()})
	return utils.OKMessage(c, "Property deleted successfully", nil)
}

// UploadImages stores the multipart "images" files and appends their URLs.
func (h *PropertyHandler) UploadImages(c echo.Context) error {
	user := middleware.CurrentUser(c)
	p, ok, err := h.loadManaged(c, user, "update")
	if !ok {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return utils.BadRequest(c, "Invalid multipart form")
	}
	files := form.File["images"]
	switch {
	case len(files) == 0:
		return utils.BadRequest(c, "No images uploaded")
	case len(files) > MaxImagesPerUpload:
		return utils.BadRequest(c, "Too many images", "at most 10 images per upload")
	}

	exts := make([]string, len(files))
	for i, fh := range files {
		if fh.Size > MaxImageSize {
			return utils.BadRequest(c, "Image too large", fh.Filename+" exceeds 5MB")
		}
		ext, err := sniffImage(fh)
		if err != nil {
			return utils.BadRequest(c, "Only JPEG, PNG and WebP images are allowed", fh.Filename)
		}
		exts[i] = ext
	}

	ctx := c.Request().Context()
	urls := make([]string, 0, len(files))
	for i, fh := range files {
		url, err := h.saveImage(ctx, fh, exts[i])
		if err != nil {
			h.removeImages(urls)
			return serverError(c, h.logger, "store image", err)
		}
		urls = append(urls, url)
	}

	updated, err := h.stores.Properties.AddImages(ctx, p.ID, urls)
	if err != nil {
		h.removeImages(urls)
		if errors.Is(err, store.ErrNotFound) {
			return utils.NotFound(c, "Property not found")
		}
		return serverError(c, h.logger, "attach images", err)
	}
	middleware.SetAction(c, "upload_images", map[string]string{
		"propertyId": p.ID.Hex(),
		"count":      cast.ToString(len(urls)),
	})
	return utils.OKMessage(c, "Images uploaded successfully", detail(updated))
}

func (h *PropertyHandler) saveImage(ctx context.Context, fh *multipart.FileHeader, ext string) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	key, err := h.images.Upload(ctx, uuid.New(), "image"+ext, f)
	if err != nil {
		return "", err
	}
	return h.images.URL(key), nil
}

// removeImages deletes stored images in the background. URLs this storage
// did not issue are skipped.
func (h *PropertyHandler) removeImages(urls []string) {
	var keys []string
	for _, u := range urls {
		if key, ok := h.images.KeyFromURL(u); ok {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return
	}
	h.queue.Submit("image_cleanup", func(ctx context.Context) error {
		var failed error
		for _, key := range keys {
			if err := h.images.Delete(ctx, key); err != nil {
				failed = err
			}
		}
		return failed
	})
}

// heldImages drops URLs issued by this storage that the listing does not
// already hold. Uploaded files are only ever attached through UploadImages,
// so deleting a listing never reaches another listing's files.
func (h *PropertyHandler) heldImages(urls, held []string) []string {
	if urls == nil {
		return nil
	}
	owned := make(map[string]bool, len(held))
	for _, u := range held {
		owned[u] = true
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, issued := h.images.KeyFromURL(u); issued && !owned[u] {
			h.logger.Warn("dropping foreign image reference", zap.String("url", u))
			continue
		}
		out = append(out, u)
	}
	return out
}

// loadManaged fetches the :id listing and checks the caller may change it.
func (h *PropertyHandler) loadManaged(c echo.Context, user *models.User, verb string) (*models.Property, bool, error) {
	id, ok := paramID(c, "id")
	if !ok {
		return nil, false, utils.BadRequest(c, "Invalid property ID")
	}
	p, err := h.stores.Properties.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, utils.NotFound(c, "Property not found")
		}
		return nil, false, serverError(c, h.logger, "get property", err)
	}
	if !canManage(user, p) {
		return nil, false, utils.Forbidden(c, "You are not authorized to "+verb+" this property")
	}
	return p, true, nil
}

// readInput decodes and validates a property body. Only admins may set the
// featured flag; for anyone else it is ignored.
func (h *PropertyHandler) readInput(c echo.Context, user *models.User) (*models.PropertyInput, bool, error) {
	raw, err := decodeObject(c)
	if err != nil {
		return nil, false, utils.BadRequest(c, "Invalid request body")
	}
	input, err := models.DecodePropertyInput(raw)
	if err != nil {
		return nil, false, utils.BadRequest(c, "Validation failed", err.Error())
	}
	if err := c.Validate(input); err != nil {
		return nil, false, utils.BadRequest(c, "Validation failed", utils.ValidationMessages(err)...)
	}
	if !user.IsAdmin() {
		input.Featured = nil
	}
	return input, true, nil
}

func canManage(user *models.User, p *models.Property) bool {
	return user != nil && (user.IsAdmin() || p.OwnedBy(user.ID))
}

func ownerSummary(u *models.User) *models.OwnerSummary {
	s := u.Summary()
	return &s
}

func pricePerSqft(price int64, area *int) *int64 {
	if area == nil || *area <= 0 || price <= 0 {
		return nil
	}
	v := price / int64(*area)
	return &v
}

func sniffImage(fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := f.Read(head)
	if ext, ok := storage.ImageExtension(http.DetectContentType(head[:n])); ok {
		return ext, nil
	}
	return "", errors.New("unsupported image type")
}

func nonNil(items []*models.Property) []*models.Property {
	if items == nil {
		return []*models.Property{}
	}
	return items
}
