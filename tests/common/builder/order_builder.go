//go:build unit || e2e

package builder

import (
	"time"

	"solestore/internal/domain/order"
	reqdto "solestore/internal/handler/dto/request"
	"solestore/internal/usecase/queries"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
)

type OrderBuilder struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Status          string
	Lines           []shared.CartLineSnapshot
	DiscountAmount  int64
	DiscountCode    *string
	ShippingAddress string
	ShippingName    string
	ShippingPhone   string
	Notes           string
}

func NewOrderBuilder() *OrderBuilder {
	return &OrderBuilder{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Status: "pending",
		Lines: []shared.CartLineSnapshot{
			NewProductBuilder().BuildCartLine(2),
		},
		ShippingAddress: "1-2-3 Shibuya, Tokyo",
		ShippingName:    "Taro Yamada",
		ShippingPhone:   "090-1234-5678",
	}
}

func (o *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(o)
	return o
}

func (o *OrderBuilder) BuildDomain() (*order.Order, error) {
	shipping, err := order.NewShippingInfo(o.ShippingAddress, o.ShippingName, o.ShippingPhone, o.Notes)
	if err != nil {
		return nil, err
	}

	lines := make([]order.Line, 0, len(o.Lines))
	for _, cl := range o.Lines {
		line, lineErr := order.NewLine(cl.ProductID, cl.Quantity, cl.UnitPrice, cl.ProductName, cl.ImageURL)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}

	return order.NewOrder(o.UserID, lines, o.DiscountAmount, o.DiscountCode, shipping)
}

func (o *OrderBuilder) BuildCheckoutRequestDTO() reqdto.CheckoutRequest {
	return reqdto.CheckoutRequest{
		ShippingAddress: o.ShippingAddress,
		ShippingName:    o.ShippingName,
		ShippingPhone:   o.ShippingPhone,
		Notes:           o.Notes,
		DiscountCode:    o.DiscountCode,
	}
}

func (o *OrderBuilder) BuildSnapshot() *shared.OrderSnapshot {
	return &shared.OrderSnapshot{
		ID:     o.ID,
		UserID: o.UserID,
		Status: o.Status,
	}
}

func (o *OrderBuilder) BuildView() *queries.OrderView {
	now := time.Now()

	var subtotal int64
	lines := make([]queries.OrderLineView, 0, len(o.Lines))
	for _, cl := range o.Lines {
		subtotal += cl.UnitPrice * int64(cl.Quantity)
		lines = append(lines, queries.OrderLineView{
			ID:          uuid.New(),
			ProductID:   cl.ProductID,
			ProductName: cl.ProductName,
			ImageURL:    cl.ImageURL,
			Quantity:    cl.Quantity,
			UnitPrice:   cl.UnitPrice,
		})
	}

	total := subtotal - o.DiscountAmount
	if total < 0 {
		total = 0
	}

	return &queries.OrderView{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status,
		Subtotal:        subtotal,
		Discount:        o.DiscountAmount,
		Total:           total,
		DiscountCode:    o.DiscountCode,
		ShippingAddress: o.ShippingAddress,
		ShippingName:    o.ShippingName,
		ShippingPhone:   o.ShippingPhone,
		Notes:           o.Notes,
		Lines:           lines,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
