package discount

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCodeInactive      = errors.New("discount code is inactive")
	ErrCodeNotYetValid   = errors.New("discount code is not yet valid")
	ErrCodeExpired       = errors.New("discount code has expired")
	ErrUsageLimitReached = errors.New("discount code usage limit reached")
)

// BelowMinimumOrderError carries the minimum so the boundary can format a
// user-facing message.
type BelowMinimumOrderError struct {
	Minimum int64
}

func (e *BelowMinimumOrderError) Error() string {
	return fmt.Sprintf("order total below minimum of %d", e.Minimum)
}

// DiscountCode is a snapshot of a code at evaluation time. Evaluate is pure;
// claiming a usage slot is the store's job and happens atomically in the
// checkout transaction.
type DiscountCode struct {
	id            uuid.UUID
	code          Code
	percentage    Percentage
	validFrom     time.Time
	validTo       time.Time
	active        bool
	minOrderValue *int64
	maxDiscount   *int64
	usageLimit    *int32
	usedCount     int32
}

func NewDiscountCode(
	id uuid.UUID,
	code string,
	percentage float64,
	validFrom, validTo time.Time,
	active bool,
	minOrderValue, maxDiscount *int64,
	usageLimit *int32,
	usedCount int32,
) (*DiscountCode, error) {
	canonical, err := NewCode(code)
	if err != nil {
		return nil, err
	}

	pct, err := NewPercentage(percentage)
	if err != nil {
		return nil, err
	}

	if minOrderValue != nil && *minOrderValue < 0 {
		return nil, ErrNegativeAmount
	}
	if maxDiscount != nil && *maxDiscount < 0 {
		return nil, ErrNegativeAmount
	}

	return &DiscountCode{
		id:            id,
		code:          canonical,
		percentage:    pct,
		validFrom:     validFrom,
		validTo:       validTo,
		active:        active,
		minOrderValue: minOrderValue,
		maxDiscount:   maxDiscount,
		usageLimit:    usageLimit,
		usedCount:     usedCount,
	}, nil
}

// ValidateWindow checks the active flag and the closed validity interval
// validFrom <= now <= validTo.
func (d *DiscountCode) ValidateWindow(now time.Time) error {
	if !d.active {
		return ErrCodeInactive
	}
	if now.Before(d.validFrom) {
		return ErrCodeNotYetValid
	}
	if now.After(d.validTo) {
		return ErrCodeExpired
	}
	return nil
}

// Evaluate validates the code against a pre-discount subtotal and returns the
// clamped discount amount. It never mutates usage counters.
func (d *DiscountCode) Evaluate(now time.Time, subtotal int64) (int64, error) {
	if err := d.ValidateWindow(now); err != nil {
		return 0, err
	}

	if d.minOrderValue != nil && subtotal < *d.minOrderValue {
		return 0, &BelowMinimumOrderError{Minimum: *d.minOrderValue}
	}

	if d.usageLimit != nil && d.usedCount >= *d.usageLimit {
		return 0, ErrUsageLimitReached
	}

	amount := d.percentage.AmountOff(subtotal)
	if d.maxDiscount != nil && amount > *d.maxDiscount {
		amount = *d.maxDiscount
	}
	return amount, nil
}

func (d *DiscountCode) ID() uuid.UUID         { return d.id }
func (d *DiscountCode) Code() Code            { return d.code }
func (d *DiscountCode) Percentage() float64   { return d.percentage.Value() }
func (d *DiscountCode) ValidFrom() time.Time  { return d.validFrom }
func (d *DiscountCode) ValidTo() time.Time    { return d.validTo }
func (d *DiscountCode) Active() bool          { return d.active }
func (d *DiscountCode) MinOrderValue() *int64 { return d.minOrderValue }
func (d *DiscountCode) MaxDiscount() *int64   { return d.maxDiscount }
func (d *DiscountCode) UsageLimit() *int32    { return d.usageLimit }
func (d *DiscountCode) UsedCount() int32      { return d.usedCount }
