// Package money does currency arithmetic on decimals and hands back two-place floats.
package money

import "github.com/shopspring/decimal"

// Round2 rounds half away from zero to cents.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Mul returns round2(a * b).
func Mul(a, b float64) float64 {
	return decimal.NewFromFloat(a).Mul(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// Sum adds the values exactly and rounds the result to cents.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(2).InexactFloat64()
}

// Sub returns round2(a - b).
func Sub(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

// Floor truncates toward negative infinity to a whole unit.
func Floor(v float64) int64 {
	return decimal.NewFromFloat(v).Floor().IntPart()
}
