// Package money computes order totals with decimal arithmetic so sums of
// float prices do not drift.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Price coerces a stored price into a decimal. Missing or invalid prices
// (NaN, infinities, negatives) count as zero.
func Price(value float64) decimal.Decimal {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(value)
}

// MaxPrice is the largest value a numeric(12,2) price column holds.
var MaxPrice = decimal.RequireFromString("9999999999.99")

// ValidPrice reports whether value is still positive once rounded to cents
// and fits the price column.
func ValidPrice(value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	cents := decimal.NewFromFloat(value).Round(2)
	return cents.IsPositive() && cents.LessThanOrEqual(MaxPrice)
}

// Quantity coerces a line quantity; anything below one counts as one.
func Quantity(value int) int {
	if value < 1 {
		return 1
	}
	return value
}

// LineTotal returns price × quantity after coercion.
func LineTotal(price float64, quantity int) decimal.Decimal {
	return Price(price).Mul(decimal.NewFromInt(int64(Quantity(quantity))))
}

// Float rounds d to cents and converts it for JSON transport.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
