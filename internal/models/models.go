package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	OrderStatusPreparing = "preparing"
)

type User struct {
	ID               uint      `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name             string    `gorm:"not null"                      json:"name"`
	Email            string    `gorm:"uniqueIndex;not null"          json:"email"`
	Phone            string    `json:"phone"`
	Address          string    `json:"address"`
	PasswordHash     string    `gorm:"column:password;not null"      json:"-"`
	Role             string    `gorm:"not null;default:user"         json:"role"`
	IsVerified       bool      `gorm:"not null;default:false"        json:"is_verified"`
	VerificationCode *string   `gorm:"index"                         json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserSummary is what leaves the service boundary: never the hash or the code.
type UserSummary struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Address: u.Address,
		Role:    u.Role,
	}
}

type Product struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	Name      string          `gorm:"not null"                      json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"   json:"price"`
	Image     string          `json:"image"`
	Category  string          `gorm:"index"                         json:"category"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type CartLine struct {
	ID        uint `gorm:"primaryKey;autoIncrement"                       json:"id"`
	UserID    uint `gorm:"uniqueIndex:idx_cart_user_product;not null"     json:"user_id"`
	ProductID uint `gorm:"uniqueIndex:idx_cart_user_product;index;not null" json:"product_id"`
	Quantity  uint `gorm:"not null;default:1;check:quantity>0"            json:"quantity"`
}

func (CartLine) TableName() string {
	return "cart"
}

// CartView is one cart line joined with the product it points at.
type CartView struct {
	LineID    uint            `json:"cart_id"`
	ProductID uint            `json:"product_id"`
	Quantity  uint            `json:"quantity"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
}

type Order struct {
	ID         uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	UserID     uint            `gorm:"index;not null"                json:"user_id"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"   json:"total_price"`
	Items      string          `gorm:"type:text;not null"            json:"items"`
	Address    string          `gorm:"not null"                      json:"address"`
	Status     string          `gorm:"not null;default:preparing"    json:"status"`
	CreatedAt  time.Time       `gorm:"index"                         json:"date"`
}
