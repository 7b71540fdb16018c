package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models (DTO for read side)

type OrderView struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	Status          string          `json:"status"`
	Subtotal        int64           `json:"subtotal"`
	Discount        int64           `json:"discount"`
	Total           int64           `json:"total"`
	DiscountCode    *string         `json:"discount_code,omitempty"`
	ShippingAddress string          `json:"shipping_address"`
	ShippingName    string          `json:"shipping_name"`
	ShippingPhone   string          `json:"shipping_phone"`
	Notes           string          `json:"notes"`
	IsRead          bool            `json:"is_read"`
	Lines           []OrderLineView `json:"lines"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type OrderLineView struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"product_id"`
	ProductName string    `json:"product_name"`
	ImageURL    string    `json:"image_url"`
	Quantity    int32     `json:"quantity"`
	UnitPrice   int64     `json:"unit_price"`
}

type OrderListItem struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	Status       string    `json:"status"`
	Total        int64     `json:"total"`
	Discount     int64     `json:"discount"`
	ShippingName string    `json:"shipping_name"`
	IsRead       bool      `json:"is_read"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProductView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       int64     `json:"price"`
	ImageURL    string    `json:"image_url"`
	Category    string    `json:"category"`
	Stock       int32     `json:"stock"`
	Sold        int32     `json:"sold"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CartItemView struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     int64     `json:"price"`
	ImageURL  string    `json:"image_url"`
	Stock     int32     `json:"stock"`
	Quantity  int32     `json:"quantity"`
}

type DiscountView struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Percentage    float64   `json:"percentage"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidTo       time.Time `json:"valid_to"`
	Active        bool      `json:"active"`
	MinOrderValue *int64    `json:"min_order_value,omitempty"`
	MaxDiscount   *int64    `json:"max_discount,omitempty"`
	UsageLimit    *int32    `json:"usage_limit,omitempty"`
	UsedCount     int32     `json:"used_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// DiscountPreview is the validate-only evaluation result. Nothing is
// claimed; used_count stays untouched.
type DiscountPreview struct {
	Code           string  `json:"code"`
	Percentage     float64 `json:"percentage"`
	DiscountAmount int64   `json:"discount_amount"`
	MaxDiscount    *int64  `json:"max_discount,omitempty"`
}

type AuthorizedUserView struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	IsActive bool      `json:"is_active"`
}
