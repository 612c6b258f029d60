package httpserver

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	items, err := h.Svc.ListProducts(c.Request().Context())
	if err != nil {
		logging.FromContext(c.Request().Context()).Error("list_products_error", "status", 500, "error", err)
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.DataResponse{Data: items})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	p, err := h.Svc.GetProduct(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	q := c.QueryParam("q")
	if strings.TrimSpace(q) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))

	total, items, err := h.Svc.SearchProducts(c.Request().Context(), q, page, size)
	if err != nil {
		return httpError(err)
	}

	offset, limit := util.Calculate(page, size)
	return c.JSON(http.StatusOK, transport.SearchResponse{
		Total:    total,
		Page:     offset/limit + 1,
		Size:     limit,
		Products: items,
	})
}

// readUpload returns the optional "image" file of a multipart form. The
// returned closer must be called once the upload has been consumed.
func readUpload(c echo.Context) (*service.Upload, io.Closer, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, nil, echo.NewHTTPError(http.StatusBadRequest, "cannot read image")
	}
	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: contentType(fh),
		Body:        f,
	}, f, nil
}

func contentType(fh *multipart.FileHeader) string {
	return fh.Header.Get(echo.HeaderContentType)
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, echo.NewHTTPError(http.StatusBadRequest, "price must be a number")
	}
	return price, nil
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.create_product")

	var form transport.ProductForm
	if err := c.Bind(&form); err != nil {
		l.Warn("create_product_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	if strings.TrimSpace(form.DisplayName()) == "" || strings.TrimSpace(form.Price) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and price are required")
	}
	price, err := parsePrice(form.Price)
	if err != nil {
		return err
	}

	up, closer, err := readUpload(c)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	p, err := h.Svc.CreateProduct(ctx, service.ProductInput{
		Name:     form.DisplayName(),
		Price:    price,
		Category: form.Category,
	}, up)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.update_product")

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var form transport.ProductForm
	if err := c.Bind(&form); err != nil {
		l.Warn("update_product_error", "status", 400, "reason", "invalid form", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	var patch service.ProductPatch
	if name := form.DisplayName(); name != "" {
		patch.Name = &name
	}
	if form.Price != "" {
		price, err := parsePrice(form.Price)
		if err != nil {
			return err
		}
		patch.Price = &price
	}
	if form.Category != "" {
		patch.Category = &form.Category
	}

	up, closer, err := readUpload(c)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	p, err := h.Svc.UpdateProduct(ctx, id, patch, up)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Svc.DeleteProduct(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "product deleted"})
}
