//go:build unit || e2e

package builder

import (
	"time"

	"solestore/internal/domain/product"
	reqdto "solestore/internal/handler/dto/request"
	"solestore/internal/usecase/queries"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
)

type ProductBuilder struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       int64
	ImageURL    string
	Category    string
	Stock       int32
	Sold        int32
}

func NewProductBuilder() *ProductBuilder {
	return &ProductBuilder{
		ID:          uuid.New(),
		Name:        "Air Runner Pro",
		Description: "Lightweight daily trainer",
		Price:       12800,
		ImageURL:    "https://img.example.com/air-runner-pro.jpg",
		Category:    "sneakers",
		Stock:       10,
	}
}

func (p *ProductBuilder) With(mutate func(*ProductBuilder)) *ProductBuilder {
	mutate(p)
	return p
}

func (p *ProductBuilder) BuildDomain() (*product.Product, error) {
	return product.NewProduct(p.Name, p.Description, p.Price, p.ImageURL, p.Category, p.Stock)
}

func (p *ProductBuilder) BuildView() *queries.ProductView {
	now := time.Now()
	return &queries.ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Stock:       p.Stock,
		Sold:        p.Sold,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (p *ProductBuilder) BuildSnapshot() *shared.ProductSnapshot {
	return &shared.ProductSnapshot{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		Stock:    p.Stock,
		ImageURL: p.ImageURL,
	}
}

func (p *ProductBuilder) BuildCartLine(quantity int32) shared.CartLineSnapshot {
	return shared.CartLineSnapshot{
		ItemID:      uuid.New(),
		ProductID:   p.ID,
		Quantity:    quantity,
		UnitPrice:   p.Price,
		ProductName: p.Name,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
	}
}

func (p *ProductBuilder) BuildCreateRequestDTO() reqdto.CreateProductRequest {
	return reqdto.CreateProductRequest{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Stock:       p.Stock,
	}
}
