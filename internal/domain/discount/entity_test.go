//go:build unit

package discount_test

import (
	"errors"
	"testing"
	"time"

	"solestore/internal/domain/discount"
	"solestore/tests/common/builder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	t.Run("canonicalizes to upper case", func(t *testing.T) {
		code, err := discount.NewCode("  summer20 ")
		require.NoError(t, err)
		assert.Equal(t, "SUMMER20", code.String())
	})

	t.Run("rejects invalid formats", func(t *testing.T) {
		for _, input := range []string{"", "AB", "HAS SPACE", "TOO-DASHED", "WAYTOOLONGCODE1234567"} {
			_, err := discount.NewCode(input)
			assert.ErrorIs(t, err, discount.ErrInvalidCode, "input %q", input)
		}
	})
}

func TestNewPercentage(t *testing.T) {
	for _, v := range []float64{0, 0.5, 100} {
		_, err := discount.NewPercentage(v)
		assert.NoError(t, err, "value %v", v)
	}
	for _, v := range []float64{-0.1, 100.1} {
		_, err := discount.NewPercentage(v)
		assert.ErrorIs(t, err, discount.ErrInvalidPercentage, "value %v", v)
	}
}

func TestValidateWindow(t *testing.T) {
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 6, 30, 23, 59, 59, 0, time.UTC)

	build := func(active bool) *discount.DiscountCode {
		entity, err := builder.NewDiscountBuilder().
			With(func(b *builder.DiscountBuilder) {
				b.ValidFrom = from
				b.ValidTo = to
				b.Active = active
			}).BuildDomain()
		require.NoError(t, err)
		return entity
	}

	tests := []struct {
		name  string
		now   time.Time
		errIs error
	}{
		{name: "before window", now: from.Add(-time.Second), errIs: discount.ErrCodeNotYetValid},
		{name: "exactly at validFrom", now: from},
		{name: "inside window", now: from.Add(12 * time.Hour)},
		{name: "exactly at validTo", now: to},
		{name: "after window", now: to.Add(time.Second), errIs: discount.ErrCodeExpired},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := build(true).ValidateWindow(tc.now)
			if tc.errIs == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.errIs)
			}
		})
	}

	t.Run("inactive code fails regardless of window", func(t *testing.T) {
		err := build(false).ValidateWindow(from.Add(12 * time.Hour))
		assert.ErrorIs(t, err, discount.ErrCodeInactive)
	})

	// The builder's default window must contain the fixture anchor, or every
	// test pairing a default code with a frozen clock silently rots.
	t.Run("builder defaults are valid at the anchored instant", func(t *testing.T) {
		entity, err := builder.NewDiscountBuilder().BuildDomain()
		require.NoError(t, err)
		assert.NoError(t, entity.ValidateWindow(builder.FixedNow))
	})
}

func TestEvaluate(t *testing.T) {
	now := builder.FixedNow

	t.Run("computes percentage of subtotal", func(t *testing.T) {
		entity, err := builder.NewDiscountBuilder().BuildDomain()
		require.NoError(t, err)

		amount, err := entity.Evaluate(now, 50_000)
		require.NoError(t, err)
		assert.Equal(t, int64(10_000), amount)
	})

	t.Run("truncates toward zero", func(t *testing.T) {
		entity, err := builder.NewDiscountBuilder().
			With(func(b *builder.DiscountBuilder) { b.Percentage = 15 }).
			BuildDomain()
		require.NoError(t, err)

		amount, err := entity.Evaluate(now, 999)
		require.NoError(t, err)
		assert.Equal(t, int64(149), amount)
	})

	t.Run("clamps to max discount", func(t *testing.T) {
		entity, err := builder.NewDiscountBuilder().
			WithMaxDiscount(50_000).
			BuildDomain()
		require.NoError(t, err)

		// 20% of 1,000,000 would be 200,000.
		amount, err := entity.Evaluate(now, 1_000_000)
		require.NoError(t, err)
		assert.Equal(t, int64(50_000), amount)
	})

	t.Run("amount below max discount is untouched", func(t *testing.T) {
		entity, err := builder.NewDiscountBuilder().
			WithMaxDiscount(50_000).
			BuildDomain()
		require.NoError(t, err)

		amount, err := entity.Evaluate(now, 100_000)
		require.NoError(t, err)
		assert.Equal(t, int64(20_000), amount)
	})

	t.Run("rejects subtotal below minimum order value", func(t *testing.T) {
		entity, err := builder.NewDiscountBuilder().
			WithMinOrderValue(10_000).
			BuildDomain()
		require.NoError(t, err)

		_, err = entity.Evaluate(now, 9_999)
		var belowMin *discount.BelowMinimumOrderError
		require.ErrorAs(t, err, &belowMin)
		assert.Equal(t, int64(10_000), belowMin.Minimum)
	})

	t.Run("subtotal exactly at minimum passes", func(t *testing.T) {
		entity, err := builder.NewDiscountBuilder().
			WithMinOrderValue(10_000).
			BuildDomain()
		require.NoError(t, err)

		amount, err := entity.Evaluate(now, 10_000)
		require.NoError(t, err)
		assert.Equal(t, int64(2_000), amount)
	})

	t.Run("usage limit reached", func(t *testing.T) {
		entity, err := builder.NewDiscountBuilder().
			WithUsageLimit(5, 5).
			BuildDomain()
		require.NoError(t, err)

		_, err = entity.Evaluate(now, 50_000)
		assert.ErrorIs(t, err, discount.ErrUsageLimitReached)
	})

	t.Run("one usage slot left", func(t *testing.T) {
		entity, err := builder.NewDiscountBuilder().
			WithUsageLimit(5, 4).
			BuildDomain()
		require.NoError(t, err)

		amount, err := entity.Evaluate(now, 50_000)
		require.NoError(t, err)
		assert.Equal(t, int64(10_000), amount)
	})

	t.Run("evaluation never mutates usage", func(t *testing.T) {
		entity, err := builder.NewDiscountBuilder().
			WithUsageLimit(5, 4).
			BuildDomain()
		require.NoError(t, err)

		for range 3 {
			_, err := entity.Evaluate(now, 50_000)
			require.NoError(t, err)
		}
		assert.Equal(t, int32(4), entity.UsedCount())
	})
}

func TestNewDiscountCode(t *testing.T) {
	t.Run("rejects negative bounds", func(t *testing.T) {
		negative := int64(-1)

		_, err := builder.NewDiscountBuilder().
			With(func(b *builder.DiscountBuilder) { b.MinOrderValue = &negative }).
			BuildDomain()
		assert.ErrorIs(t, err, discount.ErrNegativeAmount)

		_, err = builder.NewDiscountBuilder().
			With(func(b *builder.DiscountBuilder) { b.MaxDiscount = &negative }).
			BuildDomain()
		assert.ErrorIs(t, err, discount.ErrNegativeAmount)
	})

	t.Run("rejects malformed code", func(t *testing.T) {
		_, err := builder.NewDiscountBuilder().
			With(func(b *builder.DiscountBuilder) { b.Code = "no good" }).
			BuildDomain()
		assert.True(t, errors.Is(err, discount.ErrInvalidCode))
	})
}
