package domain

import "github.com/shopspring/decimal"

// FormatPrice renders an amount as dollars with exactly two decimals.
func FormatPrice(v decimal.Decimal) string {
	return "$" + v.StringFixed(2)
}
