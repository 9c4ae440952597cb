package utils

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Respond writes the uniform {success, message, data, ...extra} envelope.
// Extra keys never override the three envelope keys.
func Respond(c echo.Context, status int, success bool, message string, data interface{}, extra ...echo.Map) error {
	body := echo.Map{}
	for _, m := range extra {
		for k, v := range m {
			body[k] = v
		}
	}
	body["success"] = success
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

func OK(c echo.Context, data interface{}, extra ...echo.Map) error {
	return Respond(c, http.StatusOK, true, "", data, extra...)
}

func OKMessage(c echo.Context, message string, data interface{}, extra ...echo.Map) error {
	return Respond(c, http.StatusOK, true, message, data, extra...)
}

func Created(c echo.Context, message string, data interface{}) error {
	return Respond(c, http.StatusCreated, true, message, data)
}

// Fail writes an error envelope. Detail messages, when given, are listed under
// "errors".
func Fail(c echo.Context, status int, message string, details ...string) error {
	if len(details) > 0 {
		return Respond(c, status, false, message, nil, echo.Map{"errors": details})
	}
	return Respond(c, status, false, message, nil)
}

func BadRequest(c echo.Context, message string, details ...string) error {
	return Fail(c, http.StatusBadRequest, message, details...)
}

func NotFound(c echo.Context, message string) error {
	return Fail(c, http.StatusNotFound, message)
}

func Forbidden(c echo.Context, message string) error {
	return Fail(c, http.StatusForbidden, message)
}

func Unauthorized(c echo.Context, message string) error {
	return Fail(c, http.StatusUnauthorized, message)
}

// InternalError hides err from the client; callers log it.
func InternalError(c echo.Context) error {
	return Fail(c, http.StatusInternalServerError, "Internal server error")
}
