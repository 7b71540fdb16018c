package queries

import (
	"context"

	"github.com/google/uuid"
)

type CartQueries interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*CartItemView, error)
}

type CartViewRepo interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*CartItemView, error)
}

type cartQueriesImpl struct {
	repo CartViewRepo
}

func NewCartQueries(repo CartViewRepo) CartQueries {
	return &cartQueriesImpl{repo: repo}
}

func (q *cartQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]*CartItemView, error) {
	return q.repo.FindByUserID(ctx, userID)
}
