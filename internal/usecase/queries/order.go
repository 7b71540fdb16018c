package queries

import (
	"context"

	"solestore/internal/domain/user"
	"solestore/internal/infra"
	"solestore/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errs.New("order not found")
	ErrOrderAccess   = errs.New("order belongs to another user")
)

type OrderQueries interface {
	// GetByID enforces ownership: customers see their own orders only,
	// admins see everything.
	GetByID(ctx context.Context, actor uuid.UUID, role user.Role, id uuid.UUID) (*OrderView, error)
	// GetByIDSystem bypasses ownership for internal read-after-write and
	// idempotent replay.
	GetByIDSystem(ctx context.Context, id uuid.UUID) (*OrderView, error)
	List(ctx context.Context, actor uuid.UUID, role user.Role) ([]*OrderListItem, error)
	UnreadCount(ctx context.Context) (int64, error)
}

type OrderViewRepo interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OrderView, error)
	FindAll(ctx context.Context) ([]*OrderListItem, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*OrderListItem, error)
	CountUnread(ctx context.Context) (int64, error)
}

type orderQueriesImpl struct {
	repo OrderViewRepo
}

func NewOrderQueries(repo OrderViewRepo) OrderQueries {
	return &orderQueriesImpl{repo: repo}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, actor uuid.UUID, role user.Role, id uuid.UUID) (*OrderView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !role.IsAdmin() && view.UserID != actor {
		// Scoped like the storefront always was: you cannot learn whether
		// someone else's order exists.
		return nil, ErrOrderNotFound
	}
	return view, nil
}

func (q *orderQueriesImpl) GetByIDSystem(ctx context.Context, id uuid.UUID) (*OrderView, error) {
	view, err := q.repo.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *orderQueriesImpl) List(ctx context.Context, actor uuid.UUID, role user.Role) ([]*OrderListItem, error) {
	if role.IsAdmin() {
		return q.repo.FindAll(ctx)
	}
	return q.repo.FindByUserID(ctx, actor)
}

func (q *orderQueriesImpl) UnreadCount(ctx context.Context) (int64, error) {
	return q.repo.CountUnread(ctx)
}
