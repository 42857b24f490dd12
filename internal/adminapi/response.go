package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ok writes data as a 200 JSON response.
func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// created writes data as a 201 JSON response.
func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

// fail writes the error envelope shared by every handler.
func fail(c echo.Context, status int, code, message string, details interface{}) error {
	body := map[string]interface{}{
		"error": message,
		"code":  code,
	}
	if details != nil {
		body["details"] = details
	}
	return c.JSON(status, body)
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
