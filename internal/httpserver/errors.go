package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/service"
)

// httpError maps a service error to the response the client sees. Internal
// details stay in the logs.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, service.ErrValidation):
		msg := strings.TrimSuffix(err.Error(), ": "+service.ErrValidation.Error())
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	case errors.Is(err, service.ErrInvalidCode):
		return echo.NewHTTPError(http.StatusBadRequest, "invalid verification code")
	case errors.Is(err, service.ErrEmptyCart):
		return echo.NewHTTPError(http.StatusBadRequest, "cart is empty")
	case errors.Is(err, service.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	case errors.Is(err, service.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrProductNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrLineNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "cart line not found")
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrNotVerified):
		return echo.NewHTTPError(http.StatusForbidden, "account not verified")
	case errors.Is(err, service.ErrAuth):
		return echo.NewHTTPError(http.StatusUnauthorized, "wrong email or password")
	case errors.Is(err, service.ErrDependency):
		return echo.NewHTTPError(http.StatusBadGateway, "upstream service unavailable, try again later")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}
	return uint(id), nil
}
