package utils

import "github.com/shopspring/decimal"

// MinorUnitPrecision is the number of decimal places kept for converted amounts.
// Every currency handled by the rate engine uses two.
const MinorUnitPrecision = 2

// RoundToMinorUnits rounds half away from zero to MinorUnitPrecision places.
// Example: 12.345 returns 12.35
func RoundToMinorUnits(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MinorUnitPrecision)
}

// FormatWithPrecision formats an amount with the given precision
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.StringFixed(int32(precision))
}
