package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/middleware/csrf"
	"github.com/Skotchmaster/storefront/internal/storage"
)

type Deps struct {
	AccountHandler *AccountHTTP
	CatalogHandler *CatalogHTTP
	CartHandler    *CartHTTP
	OrderHandler   *OrderHTTP
	JWTSecret      []byte

	// UploadDir is served under /uploads when set.
	UploadDir string
	// CSRF enables double-submit protection on the API when set.
	CSRF *csrf.Config
	// Ready reports whether the database answers.
	Ready func() error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				return c.NoContent(http.StatusServiceUnavailable)
			}
		}
		return c.NoContent(http.StatusOK)
	})

	if d.UploadDir != "" {
		e.Static(storage.PublicPrefix, d.UploadDir)
	}

	authMw := auth.New(d.JWTSecret)

	api := e.Group("/api")
	if d.CSRF != nil {
		api.Use(csrf.Middleware(*d.CSRF))
	}

	api.POST("/register", d.AccountHandler.Register)
	api.POST("/verify", d.AccountHandler.Verify)
	api.POST("/verify/resend", d.AccountHandler.ResendCode)
	api.POST("/login", d.AccountHandler.Login)
	api.POST("/logout", d.AccountHandler.Logout)

	api.GET("/products", d.CatalogHandler.ListProducts)
	api.GET("/products/search", d.CatalogHandler.Search)
	api.GET("/products/:id", d.CatalogHandler.GetProduct)

	admin := api.Group("/products", authMw.RequireAuth, auth.RequireAdmin)
	admin.POST("", d.CatalogHandler.CreateProduct)
	admin.PUT("/:id", d.CatalogHandler.UpdateProduct)
	admin.DELETE("/:id", d.CatalogHandler.DeleteProduct)

	private := api.Group("", authMw.RequireAuth)

	private.GET("/me", d.AccountHandler.Me)
	private.PUT("/me", d.AccountHandler.UpdateMe)
	private.DELETE("/me", d.AccountHandler.DeleteMe)

	private.GET("/cart", d.CartHandler.GetCart)
	private.POST("/cart", d.CartHandler.AddToCart)
	private.DELETE("/cart/:id", d.CartHandler.RemoveLine)

	private.POST("/checkout", d.OrderHandler.Checkout)
	private.GET("/orders", d.OrderHandler.ListOrders)
}
