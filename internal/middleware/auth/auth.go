package auth

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	KeyUserID = "user_id"
	KeyRole   = "role"

	keyToken = "access_token"
)

var ErrNoUser = errors.New("no authenticated user")

// Auth validates the access token carried in the accessToken cookie or an
// Authorization: Bearer header.
type Auth struct {
	jwt echo.MiddlewareFunc
}

func New(secret []byte) *Auth {
	return &Auth{
		jwt: echojwt.WithConfig(echojwt.Config{
			SigningKey:    secret,
			SigningMethod: jwt.SigningMethodHS256.Alg(),
			ContextKey:    keyToken,
			TokenLookup:   "cookie:" + AccessCookie + ",header:Authorization:Bearer ",
			NewClaimsFunc: func(echo.Context) jwt.Claims {
				return new(tokens.AccessClaims)
			},
			ErrorHandler: func(c echo.Context, err error) error {
				l := logging.FromContext(c.Request().Context()).With("middleware", "auth")
				c.SetCookie(DeleteCookie(AccessCookie, "/"))
				l.Warn("auth_failed", "status", 401, "error", err)
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			},
		}),
	}
}

// RequireAuth admits any signed-in user and stores the user id and role in
// the echo context.
func (a *Auth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return a.jwt(func(c echo.Context) error {
		token, ok := c.Get(keyToken).(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		claims, ok := token.Claims.(*tokens.AccessClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}
		id, err := claims.UserID()
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		c.Set(KeyUserID, id)
		c.Set(KeyRole, claims.Role)
		return next(c)
	})
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if role, _ := c.Get(KeyRole).(string); role != models.RoleAdmin {
			logging.FromContext(c.Request().Context()).Warn("admin_required", "status", 403, "role", role)
			return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
		}
		return next(c)
	}
}

func UserID(c echo.Context) (uint, error) {
	id, ok := c.Get(KeyUserID).(uint)
	if !ok || id == 0 {
		return 0, ErrNoUser
	}
	return id, nil
}
