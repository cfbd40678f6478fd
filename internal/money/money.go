// Package money provides the exact decimal arithmetic shared by the pricing
// engine. Amounts are non-negative; subtraction floors at zero.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Amount represents a monetary value with exact decimal precision.
type Amount = decimal.Decimal

// Zero is the zero amount.
func Zero() Amount { return decimal.Zero }

// FromFloat converts a float into an Amount.
func FromFloat(f float64) Amount { return decimal.NewFromFloat(f) }

// FromInt converts an integer into an Amount.
func FromInt(n int64) Amount { return decimal.NewFromInt(n) }

// Parse converts a free-text numeric field into an Amount. It accepts plain
// machine notation ("1234.56") as well as pt-BR locale notation with "." as
// the thousands separator and "," as the decimal separator ("1.234,56").
// It reports false when the text does not describe a number.
func Parse(s string) (Amount, bool) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, false
	}
	if strings.Contains(trimmed, ",") {
		trimmed = strings.ReplaceAll(trimmed, ".", "")
		trimmed = strings.ReplaceAll(trimmed, ",", ".")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Net subtracts discount from gross, flooring at zero. A discount larger than
// the gross value yields zero rather than a negative amount.
func Net(gross, discount Amount) Amount {
	n := gross.Sub(discount)
	if n.IsNegative() {
		return decimal.Zero
	}
	return n
}

// LineNet computes quantity × unitPrice − discount, floored at zero.
func LineNet(quantity, unitPrice, discount Amount) Amount {
	return Net(quantity.Mul(unitPrice), discount)
}

// Percent returns pct percent of v.
func Percent(v, pct Amount) Amount {
	return v.Mul(pct).Div(decimal.NewFromInt(100))
}

// Min returns the smaller of a and b, preferring a on ties.
func Min(a, b Amount) Amount {
	if b.LessThan(a) {
		return b
	}
	return a
}
