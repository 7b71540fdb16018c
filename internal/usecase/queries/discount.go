package queries

import (
	"context"

	"solestore/internal/domain/discount"
	"solestore/internal/infra"
	"solestore/internal/pkg/clock"
	"solestore/internal/pkg/errs"
)

var (
	ErrDiscountNotFound     = errs.New("discount code not found")
	ErrDiscountNotUsable    = errs.New("discount code invalid or expired")
	ErrDiscountBelowMinimum = errs.New("order total below discount minimum")
	ErrDiscountUsageLimit   = errs.New("discount code usage limit exceeded")
)

type DiscountQueries interface {
	List(ctx context.Context) ([]*DiscountView, error)
	// Validate is the pure preview: it evaluates the code against a
	// hypothetical total and never touches used_count.
	Validate(ctx context.Context, code string, total int64) (*DiscountPreview, error)
}

type DiscountViewRepo interface {
	FindAll(ctx context.Context) ([]*DiscountView, error)
	FindByCode(ctx context.Context, code string) (*DiscountView, error)
}

type discountQueriesImpl struct {
	repo  DiscountViewRepo
	clock clock.Clock
}

func NewDiscountQueries(repo DiscountViewRepo, clock clock.Clock) DiscountQueries {
	return &discountQueriesImpl{repo: repo, clock: clock}
}

func (q *discountQueriesImpl) List(ctx context.Context) ([]*DiscountView, error) {
	return q.repo.FindAll(ctx)
}

func (q *discountQueriesImpl) Validate(ctx context.Context, code string, total int64) (*DiscountPreview, error) {
	canonical, err := discount.NewCode(code)
	if err != nil {
		return nil, ErrDiscountNotUsable
	}

	view, err := q.repo.FindByCode(ctx, canonical.String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrDiscountNotUsable
		}
		return nil, err
	}

	entity, err := discount.NewDiscountCode(
		view.ID, view.Code, view.Percentage,
		view.ValidFrom, view.ValidTo, view.Active,
		view.MinOrderValue, view.MaxDiscount,
		view.UsageLimit, view.UsedCount,
	)
	if err != nil {
		return nil, ErrDiscountNotUsable
	}

	amount, err := entity.Evaluate(q.clock.Now(), total)
	if err != nil {
		var belowMin *discount.BelowMinimumOrderError
		switch {
		case errs.As(err, &belowMin):
			return nil, errs.Mark(err, ErrDiscountBelowMinimum)
		case errs.Is(err, discount.ErrUsageLimitReached):
			return nil, ErrDiscountUsageLimit
		default:
			return nil, ErrDiscountNotUsable
		}
	}

	return &DiscountPreview{
		Code:           entity.Code().String(),
		Percentage:     entity.Percentage(),
		DiscountAmount: amount,
		MaxDiscount:    entity.MaxDiscount(),
	}, nil
}
