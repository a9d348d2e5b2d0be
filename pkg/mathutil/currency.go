// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/shopspring/decimal"
)

var (
	// Hundred is the percentage multiplier as a decimal.
	Hundred = decimal.NewFromInt(constants.PercentageMultiplier)

	// One is the multiplicative identity.
	One = decimal.NewFromInt(1)

	currencyTolerance = decimal.RequireFromString(constants.CurrencyTolerance)
)

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CurrencyPlaces)
}

// RoundRate rounds a percentage or factor for display.
func RoundRate(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.RatePlaces)
}

// IsZero checks if a value is effectively zero (within one cent)
func IsZero(val decimal.Decimal) bool {
	return val.Abs().LessThanOrEqual(currencyTolerance)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tolerance)
}

// PercentToFraction converts 12 into 0.12.
func PercentToFraction(percent decimal.Decimal) decimal.Decimal {
	return percent.Div(Hundred)
}

// FractionToPercent converts 0.12 into 12.
func FractionToPercent(fraction decimal.Decimal) decimal.Decimal {
	return fraction.Mul(Hundred)
}

// PowInt raises base to a non-negative integer power by squaring, keeping
// constants.FactorPrecision fractional digits between steps so long terms do
// not grow the mantissa without bound.
func PowInt(base decimal.Decimal, n int) decimal.Decimal {
	result := One
	b := base
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(b).Round(constants.FactorPrecision)
		}
		b = b.Mul(b).Round(constants.FactorPrecision)
		n >>= 1
	}
	return result
}

// Root returns base^(1/n) for a positive base. The root of a dimensionless
// ratio goes through float64 and is rounded straight back to
// constants.RatePrecision digits.
func Root(base decimal.Decimal, n int) decimal.Decimal {
	f := base.InexactFloat64()
	return decimal.NewFromFloat(math.Pow(f, 1/float64(n))).Round(constants.RatePrecision)
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Div(total).Mul(Hundred)
}

// MaxZero clamps negative values to zero.
func MaxZero(val decimal.Decimal) decimal.Decimal {
	if val.IsNegative() {
		return decimal.Zero
	}
	return val
}
