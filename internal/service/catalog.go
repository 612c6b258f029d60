package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/storage"
	"github.com/Skotchmaster/storefront/internal/util"
)

// ProductIndex is a full-text index over the catalog.
type ProductIndex interface {
	Put(ctx context.Context, p *models.Product) error
	Remove(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Images *storage.ImageStore
	Events events.Publisher

	// Index is optional; without it search runs against the database.
	Index ProductIndex
}

// Upload is an image file received with a product form.
type Upload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Category string
}

// ProductPatch holds the fields to change; nil fields are left as they are.
type ProductPatch struct {
	Name     *string
	Price    *decimal.Decimal
	Category *string
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx)
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) saveImage(ctx context.Context, up *Upload) (string, error) {
	if up == nil {
		return "", nil
	}
	if s.Images == nil {
		return "", fmt.Errorf("image storage is not configured: %w", ErrDependency)
	}
	return s.Images.Save(ctx, up.Filename, up.ContentType, up.Body)
}

func (s *CatalogService) dropImage(ctx context.Context, path string) {
	if s.Images == nil || path == "" {
		return
	}
	if err := s.Images.Delete(ctx, path); err != nil {
		logging.FromContext(ctx).Warn("image_delete_failed", "image", path, "error", err)
	}
}

func (s *CatalogService) indexPut(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Put(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("index_put_failed", "product_id", p.ID, "error", err)
	}
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput, up *Upload) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create")

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", ErrValidation)
	}
	if in.Price.IsNegative() {
		return nil, fmt.Errorf("price must not be negative: %w", ErrValidation)
	}

	image, err := s.saveImage(ctx, up)
	if err != nil {
		l.Error("create_product_error", "status", 500, "reason", "cannot store image", "error", err)
		return nil, err
	}

	p := models.Product{
		Name:     name,
		Price:    in.Price,
		Category: strings.TrimSpace(in.Category),
		Image:    image,
	}
	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		s.dropImage(ctx, image)
		l.Error("create_product_error", "status", 500, "error", err)
		return nil, err
	}

	s.indexPut(ctx, &p)
	publish(ctx, s.Events, events.TopicProducts, p.ID, "product_created", map[string]any{
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price,
	})
	l.Info("product_created", "product_id", p.ID)
	return &p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, patch ProductPatch, up *Upload) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update", "product_id", id)

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, fmt.Errorf("name must not be empty: %w", ErrValidation)
		}
		p.Name = name
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, fmt.Errorf("price must not be negative: %w", ErrValidation)
		}
		p.Price = *patch.Price
	}
	if patch.Category != nil {
		p.Category = strings.TrimSpace(*patch.Category)
	}

	oldImage := p.Image
	image, err := s.saveImage(ctx, up)
	if err != nil {
		l.Error("update_product_error", "status", 500, "reason", "cannot store image", "error", err)
		return nil, err
	}
	if image != "" {
		p.Image = image
	}

	if err := s.Repo.SaveProduct(ctx, p); err != nil {
		s.dropImage(ctx, image)
		l.Error("update_product_error", "status", 500, "error", err)
		return nil, err
	}
	if image != "" {
		s.dropImage(ctx, oldImage)
	}

	s.indexPut(ctx, p)
	publish(ctx, s.Events, events.TopicProducts, p.ID, "product_updated", map[string]any{
		"productID": p.ID,
		"name":      p.Name,
		"price":     p.Price,
	})
	l.Info("product_updated")
	return p, nil
}

// DeleteProduct removes the product and every cart line pointing at it.
// Orders already placed keep their text summary.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "catalog.delete", "product_id", id)

	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		l.Error("delete_product_error", "status", 500, "error", err)
		return err
	}

	s.dropImage(ctx, p.Image)
	if s.Index != nil {
		if err := s.Index.Remove(ctx, id); err != nil {
			l.Warn("index_remove_failed", "error", err)
		}
	}

	publish(ctx, s.Events, events.TopicProducts, id, "product_deleted", map[string]any{"productID": id})
	l.Info("product_deleted")
	return nil
}

// SearchProducts queries the search index when one is configured and the
// database otherwise. An index failure falls back to the database.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page, size int) (int64, []models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.search")

	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("query is required: %w", ErrValidation)
	}
	offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			return total, items, nil
		}
		l.Warn("index_search_failed", "reason", "falling back to database", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, query, offset, limit)
	if err != nil {
		l.Error("search_error", "status", 500, "error", err)
		return 0, nil, err
	}
	return total, items, nil
}
