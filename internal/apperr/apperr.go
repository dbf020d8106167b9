package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

var (
	ErrValidation     = errors.New("validation")     // 400
	ErrAuthentication = errors.New("authentication") // 401
	ErrAuthorization  = errors.New("authorization")  // 403
	ErrNotFound       = errors.New("not found")      // 404
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func Authenticationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthentication, fmt.Sprintf(format, args...))
}

func Authorizationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrAuthorization, fmt.Sprintf(format, args...))
}

// Message strips the kind prefix so clients see only the human-readable part.
func Message(err error, kind error) string {
	msg := err.Error()
	prefix := kind.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

// ToHTTP maps a service error to an echo.HTTPError. Unknown errors become
// opaque 500s; the caller is expected to log them server-side.
func ToHTTP(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, Message(err, ErrValidation))
	case errors.Is(err, ErrAuthentication):
		return echo.NewHTTPError(http.StatusUnauthorized, Message(err, ErrAuthentication))
	case errors.Is(err, ErrAuthorization):
		return echo.NewHTTPError(http.StatusForbidden, Message(err, ErrAuthorization))
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, Message(err, ErrNotFound))
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
