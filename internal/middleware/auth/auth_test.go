package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/tokens"
)

var secret = []byte("test-jwt-secret")

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	a := New(secret)

	whoami := func(c echo.Context) error {
		id, err := UserID(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, echo.Map{"id": id, "role": c.Get(KeyRole)})
	}
	e.GET("/me", whoami, a.RequireAuth)
	e.GET("/admin", whoami, a.RequireAuth, RequireAdmin)
	return e
}

func token(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	tok, err := tokens.CreateAccessToken(secret, 7, role, exp)
	require.NoError(t, err)
	return tok
}

func TestRequireAuth(t *testing.T) {
	e := newTestEcho(t)
	valid := token(t, "user", time.Now().Add(time.Hour))
	expired := token(t, "user", time.Now().Add(-time.Hour))

	tests := []struct {
		name  string
		setup func(r *http.Request)
		want  int
	}{
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(CreateCookie(AccessCookie, valid, "/", time.Now().Add(time.Hour))) }, want: http.StatusOK},
		{name: "bearer", setup: func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+valid) }, want: http.StatusOK},
		{name: "missing", setup: func(*http.Request) {}, want: http.StatusUnauthorized},
		{name: "expired", setup: func(r *http.Request) { r.Header.Set(echo.HeaderAuthorization, "Bearer "+expired) }, want: http.StatusUnauthorized},
		{name: "garbage", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessCookie, Value: "x.y.z"}) }, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"id":7,"role":"user"}`, rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	e := newTestEcho(t)

	for role, want := range map[string]int{"user": http.StatusForbidden, "admin": http.StatusOK} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, role, time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, role)
	}
}

func TestUserID_Missing(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := UserID(c)
	assert.ErrorIs(t, err, ErrNoUser)
}
