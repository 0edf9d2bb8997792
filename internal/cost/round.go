package cost

import "github.com/shopspring/decimal"

// Round2 rounds an amount to cents for display and tie detection.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// FormatUSD renders an amount with exactly two decimals.
func FormatUSD(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
