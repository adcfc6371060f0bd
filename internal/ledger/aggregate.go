package ledger

import (
	"math"

	"github.com/shopspring/decimal"
)

// TotalSpend truncates every amount toward zero and sums the results,
// so 10.7 and -3.2 add up to 7. Amounts and the running total saturate at
// the int64 bounds instead of wrapping.
func TotalSpend(transactions []Transaction) int64 {
	var total int64
	for _, t := range transactions {
		total = addSaturating(total, wholePart(t.Amount))
	}
	return total
}

func wholePart(amount decimal.Decimal) int64 {
	switch {
	case amount.GreaterThan(maxWholeAmount):
		return math.MaxInt64
	case amount.LessThan(minWholeAmount):
		return math.MinInt64
	}
	return amount.IntPart()
}

func addSaturating(a int64, b int64) int64 {
	sum := a + b
	switch {
	case a > 0 && b > 0 && sum < 0:
		return math.MaxInt64
	case a < 0 && b < 0 && sum >= 0:
		return math.MinInt64
	}
	return sum
}

func subSaturating(a int64, b int64) int64 {
	if b == math.MinInt64 {
		if a >= 0 {
			return math.MaxInt64
		}
		return a - b
	}
	return addSaturating(a, -b)
}
