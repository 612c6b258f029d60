package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/storefront/internal/models"
)

// AddToCart increments the quantity of an existing (user, product) line or
// creates it. item is filled with the stored line.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartLine) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartLine{}).
			Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(item).Error
		}

		return tx.Create(item).Error
	})
}

func (r *GormRepo) ListCart(ctx context.Context, userID uint) ([]models.CartView, error) {
	return r.listCart(r.DB.WithContext(ctx), userID)
}

// LockCart lists the user's lines like ListCart and row-locks them until the
// surrounding transaction ends. Concurrent quantity increments wait for it.
func (r *GormRepo) LockCart(ctx context.Context, userID uint) ([]models.CartView, error) {
	q := r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "c"}})
	return r.listCart(q, userID)
}

func (r *GormRepo) listCart(q *gorm.DB, userID uint) ([]models.CartView, error) {
	rows := make([]models.CartView, 0)
	err := q.
		Table("cart AS c").
		Select("c.id AS line_id, c.product_id, c.quantity, p.name, p.price, p.image").
		Joins("JOIN products AS p ON p.id = c.product_id").
		Where("c.user_id = ?", userID).
		Order("c.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *GormRepo) DeleteCartLine(ctx context.Context, userID, lineID uint) error {
	res := r.DB.WithContext(ctx).Where("id = ? AND user_id = ?", lineID, userID).Delete(&models.CartLine{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartLine{}).Error
}

// DeleteCartLines removes the given lines of one user. Lines added after they
// were read stay in place.
func (r *GormRepo) DeleteCartLines(ctx context.Context, userID uint, lineIDs []uint) error {
	if len(lineIDs) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Where("user_id = ? AND id IN ?", userID, lineIDs).Delete(&models.CartLine{}).Error
}
