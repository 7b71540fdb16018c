package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidQuantity = errors.New("quantity must be at least 1")

// Item is one cart line. A user holds at most one line per product; adding
// the same product again merges quantities.
type Item struct {
	id        uuid.UUID
	userID    uuid.UUID
	productID uuid.UUID
	quantity  int32
	createdAt time.Time
	updatedAt time.Time
}

func NewItem(userID, productID uuid.UUID, quantity int32) (*Item, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	return &Item{
		id:        uuid.New(),
		userID:    userID,
		productID: productID,
		quantity:  quantity,
	}, nil
}

func (i *Item) ID() uuid.UUID        { return i.id }
func (i *Item) UserID() uuid.UUID    { return i.userID }
func (i *Item) ProductID() uuid.UUID { return i.productID }
func (i *Item) Quantity() int32      { return i.quantity }
func (i *Item) CreatedAt() time.Time { return i.createdAt }
func (i *Item) UpdatedAt() time.Time { return i.updatedAt }
