package order

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrMissingShippingAddress = errors.New("shipping address is required")
	ErrMissingShippingName    = errors.New("shipping name is required")
	ErrEmptyOrder             = errors.New("order must contain at least one line")
	ErrInvalidQuantity        = errors.New("quantity must be at least 1")
	ErrNegativePrice          = errors.New("price cannot be negative")
)

type ShippingInfo struct {
	address string
	name    string
	phone   string
	notes   string
}

func NewShippingInfo(address, name, phone, notes string) (ShippingInfo, error) {
	address = strings.TrimSpace(address)
	name = strings.TrimSpace(name)
	if address == "" {
		return ShippingInfo{}, ErrMissingShippingAddress
	}
	if name == "" {
		return ShippingInfo{}, ErrMissingShippingName
	}
	return ShippingInfo{
		address: address,
		name:    name,
		phone:   strings.TrimSpace(phone),
		notes:   strings.TrimSpace(notes),
	}, nil
}

func (s ShippingInfo) Address() string { return s.address }
func (s ShippingInfo) Name() string    { return s.name }
func (s ShippingInfo) Phone() string   { return s.phone }
func (s ShippingInfo) Notes() string   { return s.notes }

// Line holds the snapshotted unit price, product name and image taken from
// the cart at checkout time. It is never re-read from the product afterwards,
// so later product mutation or deletion cannot affect it.
type Line struct {
	productID   uuid.UUID
	quantity    int32
	unitPrice   int64
	productName string
	imageURL    string
}

func NewLine(productID uuid.UUID, quantity int32, unitPrice int64, productName, imageURL string) (Line, error) {
	if quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}
	if unitPrice < 0 {
		return Line{}, ErrNegativePrice
	}
	return Line{
		productID:   productID,
		quantity:    quantity,
		unitPrice:   unitPrice,
		productName: productName,
		imageURL:    imageURL,
	}, nil
}

func (l Line) ProductID() uuid.UUID { return l.productID }
func (l Line) Quantity() int32      { return l.quantity }
func (l Line) UnitPrice() int64     { return l.unitPrice }
func (l Line) ProductName() string  { return l.productName }
func (l Line) ImageURL() string     { return l.imageURL }

func (l Line) Subtotal() int64 {
	return l.unitPrice * int64(l.quantity)
}

type Order struct {
	id           uuid.UUID
	userID       uuid.UUID
	status       Status
	lines        []Line
	subtotal     int64
	discount     int64
	total        int64
	discountCode *string
	shipping     ShippingInfo
	isRead       bool
	createdAt    time.Time
	updatedAt    time.Time
}

// NewOrder materializes a pending order from a cart snapshot. The discount
// amount must already be clamped by the evaluator; the total never goes
// negative.
func NewOrder(userID uuid.UUID, lines []Line, discountAmount int64, discountCode *string, shipping ShippingInfo) (*Order, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	if discountAmount < 0 {
		return nil, ErrNegativePrice
	}

	var subtotal int64
	for _, l := range lines {
		subtotal += l.Subtotal()
	}

	total := subtotal - discountAmount
	if total < 0 {
		total = 0
	}

	return &Order{
		id:           uuid.New(),
		userID:       userID,
		status:       StatusPending,
		lines:        lines,
		subtotal:     subtotal,
		discount:     discountAmount,
		total:        total,
		discountCode: discountCode,
		shipping:     shipping,
		isRead:       false,
	}, nil
}

func (o *Order) ID() uuid.UUID          { return o.id }
func (o *Order) UserID() uuid.UUID      { return o.userID }
func (o *Order) Status() Status         { return o.status }
func (o *Order) Lines() []Line          { return o.lines }
func (o *Order) Subtotal() int64        { return o.subtotal }
func (o *Order) Discount() int64        { return o.discount }
func (o *Order) Total() int64           { return o.total }
func (o *Order) DiscountCode() *string  { return o.discountCode }
func (o *Order) Shipping() ShippingInfo { return o.shipping }
func (o *Order) IsRead() bool           { return o.isRead }
func (o *Order) CreatedAt() time.Time   { return o.createdAt }
func (o *Order) UpdatedAt() time.Time   { return o.updatedAt }
