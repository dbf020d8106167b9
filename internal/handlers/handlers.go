package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/greengrocer/produce_shop/internal/apperr"
	"github.com/greengrocer/produce_shop/internal/logging"
)

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

// httpError maps a service error to its status code. Internal detail is
// logged server-side and never sent to the client.
func httpError(c echo.Context, err error) error {
	he := apperr.ToHTTP(err)
	if he.Code == http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("internal error", "error", err)
	}
	return he
}
