package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{SkipPaths: []string{"/api/login"}}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/api/cart", ok)
	e.POST("/api/cart", ok)
	e.POST("/api/login", ok)
	return e
}

func issuedToken(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	token := rec.Header().Get("X-CSRF-Token")
	require.NotEmpty(t, token)
	return token
}

func TestMiddleware_SafeMethodIssuesToken(t *testing.T) {
	e := newTestEcho()
	token := issuedToken(t, e)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
	e.ServeHTTP(rec, req)
	assert.Equal(t, token, rec.Header().Get("X-CSRF-Token"))
}

func TestMiddleware_UnsafeMethod(t *testing.T) {
	e := newTestEcho()
	token := issuedToken(t, e)

	tests := []struct {
		name   string
		origin string
		header string
		want   int
	}{
		{name: "matching token", origin: "http://example.com", header: token, want: http.StatusNoContent},
		{name: "missing token", origin: "http://example.com", header: "", want: http.StatusForbidden},
		{name: "wrong token", origin: "http://example.com", header: "nope", want: http.StatusForbidden},
		{name: "foreign origin", origin: "http://evil.test", header: token, want: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/cart", nil)
			req.Header.Set(echo.HeaderOrigin, tt.origin)
			req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestMiddleware_SkipPaths(t *testing.T) {
	e := newTestEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/login", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
