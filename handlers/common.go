package handlers

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// bindValid binds the request body into dst and validates it. On failure the
// 400 response has already been written and ok is false.
func bindValid(c echo.Context, dst interface{}) (ok bool, err error) {
	if err := c.Bind(dst); err != nil {
		return false, utils.BadRequest(c, "Invalid request body")
	}
	if err := c.Validate(dst); err != nil {
		return false, utils.BadRequest(c, "Validation failed", utils.ValidationMessages(err)...)
	}
	return true, nil
}

// decodeObject reads a JSON object body into a generic map.
func decodeObject(c echo.Context) (map[string]interface{}, error) {
	raw := map[string]interface{}{}
	err := json.NewDecoder(c.Request().Body).Decode(&raw)
	if err == io.EOF {
		return raw, nil
	}
	return raw, err
}

// paramID parses an ObjectID path parameter.
func paramID(c echo.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param(name)))
	return id, err == nil
}

// pageParams reads ?page and ?limit with the default clamps applied.
func pageParams(c echo.Context) (int, int) {
	return utils.NormalizePage(
		utils.QueryInt(c.QueryParam("page")),
		utils.QueryInt(c.QueryParam("limit")),
		utils.DefaultPageLimit,
		utils.MaxPageLimit,
	)
}

func paginated(c echo.Context, data interface{}, page, limit int, total int64) error {
	return utils.OK(c, data, echo.Map{"pagination": utils.NewPagination(page, limit, total)})
}

// serverError logs err with the route and answers with the generic 500.
func serverError(c echo.Context, logger *zap.Logger, msg string, err error) error {
	logger.Error(msg,
		zap.Error(err),
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
	)
	return utils.InternalError(c)
}
