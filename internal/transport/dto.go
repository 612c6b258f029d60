package transport

import (
	"encoding/json"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required,len=6,numeric"`
}

type ResendRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type LoginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	User      models.UserSummary `json:"user"`
	IsAdmin   bool               `json:"is_admin"`
	ExpiresAt time.Time          `json:"expires_at"`
}

type ProfileRequest struct {
	Name    string `json:"name"    validate:"required"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// ProductForm is the multipart form of product create and update. Empty
// fields are left unchanged on update.
type ProductForm struct {
	Name     string `form:"name"`
	NameTR   string `form:"name_tr"`
	Price    string `form:"price"`
	Category string `form:"category"`
}

func (f ProductForm) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.NameTR
}

type AddToCartRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  uint `json:"quantity"`
}

type CheckoutRequest struct {
	Address string          `json:"address"`
	Payment json.RawMessage `json:"card_info"`
}

type SearchResponse struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Size     int              `json:"size"`
	Products []models.Product `json:"products"`
}

type DataResponse struct {
	Data any `json:"data"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
