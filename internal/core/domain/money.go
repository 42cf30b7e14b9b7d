package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// A Money is a non-negative monetary amount together with its display
// form. Formatted is always derived from Raw, never set independently.
type Money struct {
	Raw       decimal.Decimal
	Formatted string
}

// NewMoney builds a Money from a raw amount.
// Negative, NaN and Inf amounts yield [ErrInvalidAmount].
func NewMoney(raw float64) (Money, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) || raw < 0 {
		return Money{}, ErrInvalidAmount
	}
	return moneyFromDecimal(decimal.NewFromFloat(raw)), nil
}

func ZeroMoney() Money {
	return moneyFromDecimal(decimal.Zero)
}

func (m Money) Add(v Money) Money {
	return moneyFromDecimal(m.Raw.Add(v.Raw))
}

// Scale multiplies the amount by a non-negative integer factor,
// e.g. unit price by quantity.
func (m Money) Scale(factor int) Money {
	if factor < 0 {
		factor = 0
	}
	return moneyFromDecimal(m.Raw.Mul(decimal.NewFromInt(int64(factor))))
}

func (m Money) Equal(v Money) bool {
	return m.Raw.Equal(v.Raw)
}

func moneyFromDecimal(d decimal.Decimal) Money {
	return Money{Raw: d, Formatted: formatAmount(d)}
}

func formatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
