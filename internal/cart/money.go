package cart

import (
	"fmt"
	"math"
)

// Money is an amount in integer minor units (paise). Cart arithmetic stays
// in minor units end to end; conversion to display currency happens only at
// the API boundary.
type Money int64

// MoneyFromDecimal converts a decimal currency amount (e.g. 99.99) to minor
// units, rounding half away from zero.
func MoneyFromDecimal(amount float64) Money {
	return Money(math.Round(amount * 100))
}

// Decimal returns the amount in display currency units.
func (m Money) Decimal() float64 {
	return float64(m) / 100
}

// String formats the amount with two decimal places.
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", int64(m)/100, abs64(int64(m)%100))
}

// BasisPointsFromPercent converts a percentage tax rate (e.g. 18.0) to basis
// points, rounding half away from zero.
func BasisPointsFromPercent(rate float64) int64 {
	return int64(math.Round(rate * 100))
}

// PercentFromBasisPoints converts basis points back to a percentage.
func PercentFromBasisPoints(bp int64) float64 {
	return float64(bp) / 100
}

// TaxOf computes amount × rate, with rate in basis points, rounding half up
// at the single division. This is the only rounding point in cart totals.
func TaxOf(amount Money, rateBP int64) Money {
	if amount <= 0 || rateBP <= 0 {
		return 0
	}
	return Money((int64(amount)*rateBP + 5000) / 10000)
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
