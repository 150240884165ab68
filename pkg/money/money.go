package money

import "github.com/shopspring/decimal"

var centsPerUnit = decimal.NewFromInt(100)

// RoundHalfUp quantizes an amount to 2 decimal places, rounding half up.
// Amounts on the platform are never negative, so decimal's
// round-half-away-from-zero is exactly half-up here.
func RoundHalfUp(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}

// ToCents converts a 2-place amount into minor currency units.
func ToCents(v decimal.Decimal) int64 {
	return RoundHalfUp(v).Mul(centsPerUnit).IntPart()
}

// FromCents converts minor currency units into a 2-place amount.
func FromCents(c int64) decimal.Decimal {
	return decimal.NewFromInt(c).Div(centsPerUnit)
}
