package analytics

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Growth is the percentage change from prev to cur, rounded to two places.
// It is zero when prev is zero.
func Growth(cur, prev decimal.Decimal) decimal.Decimal {
	if prev.IsZero() {
		return decimal.Zero
	}
	return cur.Sub(prev).Div(prev).Mul(hundred).Round(2)
}

func AverageOrderValue(revenue decimal.Decimal, orders int) decimal.Decimal {
	if orders <= 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(int64(orders))).Round(2)
}
