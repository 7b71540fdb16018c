//go:build unit || e2e

package builder

import (
	"time"

	"solestore/internal/domain/discount"
	reqdto "solestore/internal/handler/dto/request"
	"solestore/internal/usecase/queries"
	"solestore/internal/usecase/shared"

	"github.com/google/uuid"
)

type DiscountBuilder struct {
	ID            uuid.UUID
	Code          string
	Percentage    float64
	ValidFrom     time.Time
	ValidTo       time.Time
	Active        bool
	MinOrderValue *int64
	MaxDiscount   *int64
	UsageLimit    *int32
	UsedCount     int32
}

// FixedNow is the instant deterministic fixtures are anchored to. Tests that
// evaluate a validity window must pass this (or a MockClock seeded with it)
// instead of the wall clock, so the defaults below never drift out of range.
var FixedNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func NewDiscountBuilder() *DiscountBuilder {
	return &DiscountBuilder{
		ID:         uuid.New(),
		Code:       "SUMMER20",
		Percentage: 20,
		ValidFrom:  FixedNow.Add(-24 * time.Hour),
		ValidTo:    FixedNow.Add(24 * time.Hour),
		Active:     true,
	}
}

func (d *DiscountBuilder) With(mutate func(*DiscountBuilder)) *DiscountBuilder {
	mutate(d)
	return d
}

func (d *DiscountBuilder) WithMinOrderValue(v int64) *DiscountBuilder {
	d.MinOrderValue = &v
	return d
}

func (d *DiscountBuilder) WithMaxDiscount(v int64) *DiscountBuilder {
	d.MaxDiscount = &v
	return d
}

func (d *DiscountBuilder) WithUsageLimit(limit int32, used int32) *DiscountBuilder {
	d.UsageLimit = &limit
	d.UsedCount = used
	return d
}

func (d *DiscountBuilder) BuildDomain() (*discount.DiscountCode, error) {
	return discount.NewDiscountCode(
		d.ID, d.Code, d.Percentage,
		d.ValidFrom, d.ValidTo, d.Active,
		d.MinOrderValue, d.MaxDiscount,
		d.UsageLimit, d.UsedCount,
	)
}

func (d *DiscountBuilder) BuildSnapshot() *shared.DiscountSnapshot {
	return &shared.DiscountSnapshot{
		ID:            d.ID,
		Code:          d.Code,
		Percentage:    d.Percentage,
		ValidFrom:     d.ValidFrom,
		ValidTo:       d.ValidTo,
		Active:        d.Active,
		MinOrderValue: d.MinOrderValue,
		MaxDiscount:   d.MaxDiscount,
		UsageLimit:    d.UsageLimit,
		UsedCount:     d.UsedCount,
	}
}

func (d *DiscountBuilder) BuildView() *queries.DiscountView {
	now := FixedNow
	return &queries.DiscountView{
		ID:            d.ID,
		Code:          d.Code,
		Percentage:    d.Percentage,
		ValidFrom:     d.ValidFrom,
		ValidTo:       d.ValidTo,
		Active:        d.Active,
		MinOrderValue: d.MinOrderValue,
		MaxDiscount:   d.MaxDiscount,
		UsageLimit:    d.UsageLimit,
		UsedCount:     d.UsedCount,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (d *DiscountBuilder) BuildCreateRequestDTO() reqdto.CreateDiscountRequest {
	return reqdto.CreateDiscountRequest{
		Code:          d.Code,
		Percentage:    d.Percentage,
		ValidFrom:     &d.ValidFrom,
		ValidTo:       &d.ValidTo,
		MinOrderValue: d.MinOrderValue,
		MaxDiscount:   d.MaxDiscount,
		UsageLimit:    d.UsageLimit,
	}
}
