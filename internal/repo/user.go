package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ConsumeVerificationCode marks the matching unverified user as verified and
// clears the code in one statement. It returns the number of rows changed.
func (r *GormRepo) ConsumeVerificationCode(ctx context.Context, email, code string) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("email = ? AND verification_code = ? AND is_verified = ?", email, code, false).
		Updates(map[string]any{
			"is_verified":       true,
			"verification_code": nil,
		})
	return res.RowsAffected, res.Error
}

func (r *GormRepo) SetVerificationCode(ctx context.Context, userID uint, code string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_verified = ?", userID, false).
		Update("verification_code", code)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) UpdateProfile(ctx context.Context, userID uint, name, phone, address string) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"name":    name,
			"phone":   phone,
			"address": address,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteUser(ctx context.Context, userID uint) error {
	res := r.DB.WithContext(ctx).Delete(&models.User{}, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PurgeUser removes a user together with their cart lines.
func (r *GormRepo) PurgeUser(ctx context.Context, userID uint) error {
	return r.WithTx(ctx, func(tx *GormRepo) error {
		if err := tx.ClearCart(ctx, userID); err != nil {
			return err
		}
		return tx.DeleteUser(ctx, userID)
	})
}
