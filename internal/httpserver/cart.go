package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Svc.ListCart(ctx, userID)
	if err != nil {
		logging.FromContext(ctx).Error("get_cart_error", "status", 500, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.DataResponse{Data: items})
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.AddToCartRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return err
	}

	line, err := h.Svc.AddToCart(ctx, userID, req.ProductID, req.Quantity)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, line)
}

func (h *CartHTTP) RemoveLine(c echo.Context) error {
	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	lineID, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.RemoveLine(c.Request().Context(), userID, lineID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "removed"})
}
