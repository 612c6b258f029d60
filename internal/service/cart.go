package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// AddToCart adds quantity units of a product, merging with an existing line
// for the same product. A zero quantity counts as one.
func (s *CartService) AddToCart(ctx context.Context, userID, productID, quantity uint) (*models.CartLine, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add", "user_id", userID, "product_id", productID)

	if productID == 0 {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if quantity == 0 {
		quantity = 1
	}

	if _, err := s.Repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("add_to_cart_error", "status", 404, "reason", "user not found")
			return nil, ErrUserNotFound
		}
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return nil, err
	}

	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("add_to_cart_error", "status", 404, "reason", "product not found")
			return nil, ErrProductNotFound
		}
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return nil, err
	}

	line := models.CartLine{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.Repo.AddToCart(ctx, &line); err != nil {
		l.Error("add_to_cart_error", "status", 500, "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCart, userID, "cart_item_added", map[string]any{
		"userID":    userID,
		"productID": productID,
		"quantity":  line.Quantity,
	})
	l.Info("cart_item_added", "quantity", line.Quantity)
	return &line, nil
}

func (s *CartService) ListCart(ctx context.Context, userID uint) ([]models.CartView, error) {
	return s.Repo.ListCart(ctx, userID)
}

// RemoveLine deletes one whole line owned by the user.
func (s *CartService) RemoveLine(ctx context.Context, userID, lineID uint) error {
	l := logging.FromContext(ctx).With("svc", "cart.remove", "user_id", userID, "line_id", lineID)

	if err := s.Repo.DeleteCartLine(ctx, userID, lineID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("remove_line_error", "status", 404)
			return ErrLineNotFound
		}
		l.Error("remove_line_error", "status", 500, "error", err)
		return err
	}

	l.Info("cart_line_removed")
	return nil
}
