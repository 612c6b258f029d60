package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type OrderService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// Summarize returns the order total and its item summary, e.g. "2x A, 1x B",
// in cart line order.
func Summarize(lines []models.CartView) (decimal.Decimal, string) {
	total := decimal.Zero
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		qty := decimal.NewFromInt(int64(line.Quantity))
		total = total.Add(line.Price.Mul(qty))
		parts = append(parts, fmt.Sprintf("%dx %s", line.Quantity, line.Name))
	}
	return total, strings.Join(parts, ", ")
}

// Checkout turns the user's cart into one order and empties the cart, all in
// a single transaction. The read lines stay locked until commit and only those
// lines are removed. The payment payload is accepted and not inspected.
func (s *OrderService) Checkout(ctx context.Context, userID uint, address string, _ []byte) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)

	var order models.Order
	err := s.Repo.WithTx(ctx, func(tx *repo.GormRepo) error {
		user, err := tx.GetUserByID(ctx, userID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		lines, err := tx.LockCart(ctx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		address = strings.TrimSpace(address)
		if address == "" {
			address = strings.TrimSpace(user.Address)
		}
		if address == "" {
			return fmt.Errorf("delivery address is required: %w", ErrValidation)
		}

		total, items := Summarize(lines)
		order = models.Order{
			UserID:     userID,
			TotalPrice: total,
			Items:      items,
			Address:    address,
			Status:     models.OrderStatusPreparing,
		}
		if err := tx.CreateOrder(ctx, &order); err != nil {
			return err
		}
		ids := make([]uint, 0, len(lines))
		for _, line := range lines {
			ids = append(ids, line.LineID)
		}
		return tx.DeleteCartLines(ctx, userID, ids)
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			l.Warn("checkout_failed", "status", 400, "reason", "cart is empty")
		case errors.Is(err, ErrValidation):
			l.Warn("checkout_failed", "status", 400, "error", err)
		case errors.Is(err, ErrNotFound):
			l.Warn("checkout_failed", "status", 404, "error", err)
		default:
			l.Error("checkout_failed", "status", 500, "error", err)
		}
		return nil, err
	}

	publish(ctx, s.Events, events.TopicOrders, order.ID, "order_created", map[string]any{
		"orderID":    order.ID,
		"userID":     userID,
		"totalPrice": order.TotalPrice,
		"items":      order.Items,
		"createdAt":  order.CreatedAt.Format(time.RFC3339),
	})
	l.Info("checkout_successful", "order_id", order.ID, "total", order.TotalPrice.StringFixed(2))
	return &order, nil
}

// ListOrders returns the user's orders, most recent first.
func (s *OrderService) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.Repo.ListOrders(ctx, userID)
}
