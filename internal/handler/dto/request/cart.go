package request

import "github.com/google/uuid"

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int32     `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	// Zero or negative removes the line.
	Quantity int32 `json:"quantity"`
}
