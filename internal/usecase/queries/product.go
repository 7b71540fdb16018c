package queries

import (
	"context"

	"solestore/internal/infra"
	"solestore/internal/pkg/errs"

	"github.com/google/uuid"
)

var ErrProductNotFound = errs.New("product not found")

type ProductFilter struct {
	Category *string
	Search   *string
}

type ProductQueries interface {
	List(ctx context.Context, filter ProductFilter) ([]*ProductView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
}

type ProductViewRepo interface {
	FindAll(ctx context.Context, filter ProductFilter) ([]*ProductView, error)
	FindByID(ctx context.Context, id uuid.UUID) (*ProductView, error)
}

type productQueriesImpl struct {
	repo ProductViewRepo
}

func NewProductQueries(repo ProductViewRepo) ProductQueries {
	return &productQueriesImpl{repo: repo}
}

func (q *productQueriesImpl) List(ctx context.Context, filter ProductFilter) ([]*ProductView, error) {
	return q.repo.FindAll(ctx, filter)
}

func (q *productQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return view, nil
}
