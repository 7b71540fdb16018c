package request

import "time"

type CreateDiscountRequest struct {
	Code          string     `json:"code" binding:"required"`
	Percentage    float64    `json:"percentage" binding:"required,gt=0,lte=100"`
	ValidFrom     *time.Time `json:"valid_from,omitempty"`
	ValidTo       *time.Time `json:"valid_to,omitempty"`
	MinOrderValue *int64     `json:"min_order_value,omitempty"`
	MaxDiscount   *int64     `json:"max_discount,omitempty"`
	UsageLimit    *int32     `json:"usage_limit,omitempty"`
}

type UpdateDiscountRequest struct {
	CreateDiscountRequest
	Active *bool `json:"active,omitempty"`
}

type ValidateDiscountRequest struct {
	Code  string `json:"code" binding:"required"`
	Total int64  `json:"total" binding:"required,gt=0"`
}
