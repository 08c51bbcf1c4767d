package model

import (
	"github.com/shopspring/decimal"
)

// FormatPrice renders an amount in minor units as a dollar string.
// Examples: 3500 → "$35.00", 5 → "$0.05", -1250 → "-$12.50"
func FormatPrice(cents int64) string {
	d := decimal.New(cents, -2)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// ParseCents converts a decimal string amount in major units to cents.
// Rounds half away from zero at the third decimal. Empty or invalid input yields 0.
// Examples: "99.00" → 9900, "1234.56" → 123456, "" → 0
func ParseCents(s string) int64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return d.Shift(2).Round(0).IntPart()
}
