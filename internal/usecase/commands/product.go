package commands

import (
	"context"

	"solestore/internal/domain/product"
	reqdto "solestore/internal/handler/dto/request"
	"solestore/internal/pkg/errs"
	"solestore/internal/usecase/queries"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrInvalidProduct = errs.New("invalid product definition")

type ProductCommands interface {
	Create(ctx context.Context, req reqdto.CreateProductRequest) (*queries.ProductView, error)
	Update(ctx context.Context, id uuid.UUID, req reqdto.CreateProductRequest) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type productCommandsImpl struct {
	uow            shared.UnitOfWork
	productQueries queries.ProductQueries
}

func NewProductCommands(uow shared.UnitOfWork, productQueries queries.ProductQueries) ProductCommands {
	return &productCommandsImpl{uow: uow, productQueries: productQueries}
}

func (p *productCommandsImpl) Create(ctx context.Context, req reqdto.CreateProductRequest) (*queries.ProductView, error) {
	entity, err := product.NewProduct(req.Name, req.Description, req.Price, req.ImageURL, req.Category, req.Stock)
	if err != nil {
		return nil, errs.Mark(err, ErrInvalidProduct)
	}

	var id uuid.UUID
	err = p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		insertedID, insErr := tx.Products().Insert(ctx, tx.DB(), entity)
		if insErr != nil {
			return errs.Mark(insErr, ErrDatabaseOperation)
		}
		id = insertedID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return p.productQueries.GetByID(ctx, id)
}

func (p *productCommandsImpl) Update(ctx context.Context, id uuid.UUID, req reqdto.CreateProductRequest) error {
	if _, err := product.NewProduct(req.Name, req.Description, req.Price, req.ImageURL, req.Category, req.Stock); err != nil {
		return errs.Mark(err, ErrInvalidProduct)
	}

	params := shared.ProductParams{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
		Category:    req.Category,
		Stock:       req.Stock,
	}

	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, err := tx.Products().Update(ctx, tx.DB(), id, params)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		if !ok {
			return ErrProductNotFound
		}
		return nil
	})
}

func (p *productCommandsImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return p.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		ok, err := tx.Products().Delete(ctx, tx.DB(), id)
		if err != nil {
			return errs.Mark(err, ErrDatabaseOperation)
		}
		if !ok {
			return ErrProductNotFound
		}
		return nil
	})
}
