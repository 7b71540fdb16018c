package discount

import (
	"errors"
	"regexp"
	"strings"
)

var (
	ErrInvalidCode       = errors.New("invalid discount code format")
	ErrInvalidPercentage = errors.New("percentage must be between 0 and 100")
	ErrNegativeAmount    = errors.New("amount cannot be negative")
)

var codeRegex = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

// Code is the canonical (upper-cased) form of a discount code. Lookups are
// case-insensitive; storage always holds the canonical form.
type Code string

func NewCode(s string) (Code, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if !codeRegex.MatchString(s) {
		return Code(""), ErrInvalidCode
	}
	return Code(s), nil
}

func (c Code) String() string {
	return string(c)
}

type Percentage float64

func NewPercentage(v float64) (Percentage, error) {
	if v < 0 || v > 100 {
		return 0, ErrInvalidPercentage
	}
	return Percentage(v), nil
}

func (p Percentage) Value() float64 {
	return float64(p)
}

// AmountOff computes the raw discount for a given subtotal, truncating
// toward zero. Prices are whole currency units.
func (p Percentage) AmountOff(subtotal int64) int64 {
	return int64(float64(subtotal) * float64(p) / 100.0)
}
