package product

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyName     = errors.New("product name is required")
	ErrNegativePrice = errors.New("price cannot be negative")
	ErrNegativeStock = errors.New("stock cannot be negative")
)

// Product carries the inventory counters. stock never goes below zero;
// sold grows on completed checkouts and shrinks only when cancellation
// compensation is configured to reverse it.
type Product struct {
	id          uuid.UUID
	name        string
	description string
	price       int64
	imageURL    string
	category    string
	stock       int32
	sold        int32
	createdAt   time.Time
	updatedAt   time.Time
}

func NewProduct(name, description string, price int64, imageURL, category string, stock int32) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if price < 0 {
		return nil, ErrNegativePrice
	}
	if stock < 0 {
		return nil, ErrNegativeStock
	}

	return &Product{
		id:          uuid.New(),
		name:        name,
		description: description,
		price:       price,
		imageURL:    imageURL,
		category:    category,
		stock:       stock,
	}, nil
}

func (p *Product) ID() uuid.UUID        { return p.id }
func (p *Product) Name() string         { return p.name }
func (p *Product) Description() string  { return p.description }
func (p *Product) Price() int64         { return p.price }
func (p *Product) ImageURL() string     { return p.imageURL }
func (p *Product) Category() string     { return p.category }
func (p *Product) Stock() int32         { return p.stock }
func (p *Product) Sold() int32          { return p.sold }
func (p *Product) CreatedAt() time.Time { return p.createdAt }
func (p *Product) UpdatedAt() time.Time { return p.updatedAt }

// HasStock reports whether a checkout for the given quantity could succeed
// against this snapshot. The authoritative floor check happens in the
// conditional stock update inside the checkout transaction.
func (p *Product) HasStock(quantity int32) bool {
	return quantity >= 1 && p.stock >= quantity
}
