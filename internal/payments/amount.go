package payments

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// MinorUnits converts a rupee price to paise, rounding half-up to a whole paisa.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Mul(hundred).Round(0).IntPart()
}

// TruncatedMinorUnits drops the fractional rupee before scaling (499.99 -> 49900).
// Kept for reconciling orders opened by the legacy Django backend.
func TruncatedMinorUnits(price decimal.Decimal) int64 {
	return price.Truncate(0).IntPart() * 100
}
