// Package rates converts annual rates to period rates and back.
package rates

import (
	"strconv"

	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/iwvelando/rural-credit/pkg/financing"
	"github.com/iwvelando/rural-credit/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// AnnualToPeriod converts an effective annual rate in percent into the
// compound-equivalent period rate, as a fraction:
//
//	i = (1 + r/100)^(1/p) - 1
func AnnualToPeriod(annualPercent decimal.Decimal, periodsPerYear int) (decimal.Decimal, error) {
	if err := check(annualPercent, periodsPerYear); err != nil {
		return decimal.Zero, err
	}
	if annualPercent.IsZero() {
		return decimal.Zero, nil
	}
	factor := mathutil.One.Add(mathutil.PercentToFraction(annualPercent))
	return mathutil.Root(factor, periodsPerYear).Sub(mathutil.One).Round(constants.RatePrecision), nil
}

// NominalToPeriod converts a nominal annual rate in percent, capitalized once
// per period, into the period rate as a fraction (r/100/p).
func NominalToPeriod(annualPercent decimal.Decimal, periodsPerYear int) (decimal.Decimal, error) {
	if err := check(annualPercent, periodsPerYear); err != nil {
		return decimal.Zero, err
	}
	return mathutil.PercentToFraction(annualPercent).
		Div(decimal.NewFromInt(int64(periodsPerYear))).
		Round(constants.RatePrecision), nil
}

// PeriodToAnnual converts a period rate (fraction) into the effective annual
// rate in percent: ((1+i)^p - 1) * 100.
func PeriodToAnnual(periodRate decimal.Decimal, periodsPerYear int) (decimal.Decimal, error) {
	if periodRate.LessThanOrEqual(mathutil.One.Neg()) {
		return decimal.Zero, &financing.InvalidRateError{
			Field: "period_rate", Value: periodRate.String(), Constraint: "must be greater than -1",
		}
	}
	if periodsPerYear <= 0 {
		return decimal.Zero, &financing.InvalidRateError{
			Field: "periods_per_year", Value: strconv.Itoa(periodsPerYear), Constraint: "must be greater than zero",
		}
	}
	growth := mathutil.PowInt(mathutil.One.Add(periodRate), periodsPerYear)
	return mathutil.FractionToPercent(growth.Sub(mathutil.One)).Round(constants.RatePrecision), nil
}

// PeriodRate returns the period rate (fraction) the terms accrue at.
func PeriodRate(terms financing.Terms) (decimal.Decimal, error) {
	periods := terms.Granularity.PeriodsPerYear()
	switch terms.RateBasis {
	case financing.BasisNominal:
		return NominalToPeriod(terms.AnnualRate, periods)
	case financing.BasisEffective:
		return AnnualToPeriod(terms.AnnualRate, periods)
	}
	return decimal.Zero, &financing.InvalidRateError{
		Field: "rate_basis", Value: string(terms.RateBasis), Constraint: "must be nominal or effective",
	}
}

func check(annualPercent decimal.Decimal, periodsPerYear int) error {
	if annualPercent.IsNegative() {
		return &financing.InvalidRateError{
			Field: "annual_rate", Value: annualPercent.String(), Constraint: "must not be negative",
		}
	}
	if periodsPerYear <= 0 {
		return &financing.InvalidRateError{
			Field: "periods_per_year", Value: strconv.Itoa(periodsPerYear), Constraint: "must be greater than zero",
		}
	}
	return nil
}
