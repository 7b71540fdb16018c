package request

import "strings"

type CheckoutRequest struct {
	ShippingAddress string  `json:"shipping_address" binding:"required"`
	ShippingName    string  `json:"shipping_name" binding:"required"`
	ShippingPhone   string  `json:"shipping_phone,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	DiscountCode    *string `json:"discount_code,omitempty"`
}

func (r CheckoutRequest) GetDiscountCode() *string {
	if r.DiscountCode == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.DiscountCode)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
