package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AccountHTTP struct {
	Svc *service.AccountService
}

func (h *AccountHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.register")

	var req transport.RegisterRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	err := h.Svc.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "registered, verification code sent"})
}

func (h *AccountHTTP) Verify(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.verify")

	var req transport.VerifyRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("verify_error", "status", 400, "error", err)
		return err
	}

	if err := h.Svc.Verify(ctx, req.Email, req.Code); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "account verified"})
}

func (h *AccountHTTP) ResendCode(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.resend")

	var req transport.ResendRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("resend_error", "status", 400, "error", err)
		return err
	}

	if err := h.Svc.ResendCode(ctx, req.Email); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "if the account is waiting for verification a new code was sent"})
}

func (h *AccountHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.login")

	var req transport.LoginRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrNotVerified) {
			return c.JSON(http.StatusForbidden, echo.Map{
				"message":      "account not verified",
				"needs_verify": true,
			})
		}
		return httpError(err)
	}

	c.SetCookie(auth.CreateCookie(auth.AccessCookie, res.AccessToken, "/", res.AccessExp))
	l.Info("login_successful", "user_id", res.User.ID)

	return c.JSON(http.StatusOK, transport.LoginResponse{
		User:      res.User,
		IsAdmin:   res.User.Role == models.RoleAdmin,
		ExpiresAt: res.AccessExp,
	})
}

func (h *AccountHTTP) Logout(c echo.Context) error {
	c.SetCookie(auth.DeleteCookie(auth.AccessCookie, "/"))
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "logged out"})
}

func (h *AccountHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.Svc.GetProfile(ctx, userID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AccountHTTP) UpdateMe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "account.update_me")

	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.ProfileRequest
	if err := bindValid(c, &req); err != nil {
		l.Warn("update_profile_error", "status", 400, "error", err)
		return err
	}

	user, err := h.Svc.UpdateProfile(ctx, userID, req.Name, req.Phone, req.Address)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AccountHTTP) DeleteMe(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := auth.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := h.Svc.DeleteAccount(ctx, userID); err != nil {
		return httpError(err)
	}

	c.SetCookie(auth.DeleteCookie(auth.AccessCookie, "/"))
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "account deleted"})
}
