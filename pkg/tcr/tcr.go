// Package tcr computes the Total Real Cost (Custo Total Real) of pre-fixed and
// post-fixed rural-credit operations.
//
// Central-bank inputs (index variations, FII, FP) arrive as already-resolved
// values; this package never fetches or caches them.
package tcr

import (
	"fmt"
	"strconv"

	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/iwvelando/rural-credit/pkg/financing"
	"github.com/iwvelando/rural-credit/pkg/mathutil"
	"github.com/iwvelando/rural-credit/pkg/rates"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Mode selects the TCR formula.
type Mode string

const (
	// ModePre is the pre-fixed formula: (1+Jm/100) * FII * (1+FP) * (1+FA) - 1.
	ModePre Mode = "pre"
	// ModePos is the post-fixed formula: FAM * (1+FP) * (1+FA) - 1.
	ModePos Mode = "pos"
)

// Factors are the inputs of one TCR computation. FP and FA are fractions
// (0.005 is 0.5%); Jm and the series entries are percentages.
type Factors struct {
	Mode      Mode
	Principal decimal.Decimal   // post-fixed only, optional
	Series    []decimal.Decimal // post-fixed monthly index variations
	Jm        decimal.Decimal   // pre-fixed base annual rate
	FII       decimal.Decimal   // pre-fixed inflation-implicit factor
	FP        decimal.Decimal
	FA        decimal.Decimal
}

// Result is the outcome of a TCR computation.
type Result struct {
	Mode Mode
	// FAM is the accumulated monetary-correction factor (post-fixed only).
	FAM decimal.Decimal
	// CorrectedPrincipal is Principal * FAM, when a principal was supplied.
	CorrectedPrincipal decimal.Decimal
	// Factor is the unrounded TCR as a fraction.
	Factor decimal.Decimal
	// EffectiveAnnualRate is the TCR in percent, rounded to four places.
	EffectiveAnnualRate decimal.Decimal
	// EffectiveMonthlyRate is the compound monthly equivalent, in percent.
	EffectiveMonthlyRate decimal.Decimal
	// Notice carries financing.ErrEmptySeries when FAM defaulted to 1.
	Notice error
}

// Calculator computes TCRs. It is stateless and safe for concurrent use.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a new calculator instance
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// Compute dispatches on factors.Mode.
func (c *Calculator) Compute(factors Factors) (Result, error) {
	switch factors.Mode {
	case ModePos:
		return c.ComputePosFixado(factors.Principal, factors.Series, factors.FP, factors.FA)
	case ModePre:
		return c.ComputePreFixado(factors.Jm, factors.FII, factors.FP, factors.FA)
	}
	return Result{}, &financing.InvalidFactorError{Field: "mode", Value: string(factors.Mode), Constraint: "must be pre or pos"}
}

// ComputePosFixado computes FAM = prod(1 + v/100) over the monthly variations
// and TCRpos = FAM * (1+fp) * (1+fa) - 1. An empty series is not an error: FAM
// is 1 and the result carries financing.ErrEmptySeries as its Notice.
func (c *Calculator) ComputePosFixado(principal decimal.Decimal, series []decimal.Decimal, fp, fa decimal.Decimal) (Result, error) {
	if principal.IsNegative() {
		return Result{}, &financing.InvalidFactorError{Field: "principal", Value: principal.String(), Constraint: "must not be negative"}
	}
	for idx, variation := range series {
		if variation.LessThanOrEqual(mathutil.Hundred.Neg()) {
			return Result{}, &financing.InvalidFactorError{
				Field:      "series[" + strconv.Itoa(idx) + "]",
				Value:      variation.String(),
				Constraint: "must be greater than -100",
			}
		}
	}
	if err := checkAdjustments(fp, fa); err != nil {
		return Result{}, err
	}

	result := Result{Mode: ModePos, FAM: mathutil.One}
	if len(series) == 0 {
		result.Notice = financing.ErrEmptySeries
		c.logger.Debug("no index variations supplied, FAM defaults to 1",
			zap.String("op", "tcr.ComputePosFixado"),
		)
	}
	for _, variation := range series {
		result.FAM = result.FAM.Mul(mathutil.One.Add(mathutil.PercentToFraction(variation))).Round(constants.FactorPrecision)
	}

	result.Factor = result.FAM.
		Mul(mathutil.One.Add(fp)).
		Mul(mathutil.One.Add(fa)).
		Sub(mathutil.One)
	if principal.IsPositive() {
		result.CorrectedPrincipal = mathutil.Round(principal.Mul(result.FAM))
	}

	if err := c.finish(&result); err != nil {
		return Result{}, err
	}
	c.logger.Debug(fmt.Sprintf("post-fixed TCR %s%% with FAM %s over %d months",
		result.EffectiveAnnualRate, mathutil.RoundRate(result.FAM), len(series)),
		zap.String("op", "tcr.ComputePosFixado"),
	)
	return result, nil
}

// ComputePreFixado computes TCRpre = (1+jm/100) * fii * (1+fp) * (1+fa) - 1.
func (c *Calculator) ComputePreFixado(jm, fii, fp, fa decimal.Decimal) (Result, error) {
	if !jm.IsPositive() {
		return Result{}, &financing.InvalidFactorError{Field: "jm", Value: jm.String(), Constraint: "must be greater than zero"}
	}
	if !fii.IsPositive() {
		return Result{}, &financing.InvalidFactorError{Field: "fii", Value: fii.String(), Constraint: "must be greater than zero"}
	}
	if err := checkAdjustments(fp, fa); err != nil {
		return Result{}, err
	}

	result := Result{Mode: ModePre}
	result.Factor = mathutil.One.Add(mathutil.PercentToFraction(jm)).
		Mul(fii).
		Mul(mathutil.One.Add(fp)).
		Mul(mathutil.One.Add(fa)).
		Sub(mathutil.One)

	if err := c.finish(&result); err != nil {
		return Result{}, err
	}
	c.logger.Debug(fmt.Sprintf("pre-fixed TCR %s%% for Jm %s%%", result.EffectiveAnnualRate, jm),
		zap.String("op", "tcr.ComputePreFixado"),
	)
	return result, nil
}

// finish fills the derived percentages. Validated factors keep 1+Factor
// strictly positive.
func (c *Calculator) finish(result *Result) error {
	annualPercent := mathutil.FractionToPercent(result.Factor)
	result.EffectiveAnnualRate = mathutil.RoundRate(annualPercent)
	if annualPercent.IsNegative() {
		// Deflation. AnnualToPeriod rejects negative rates.
		result.EffectiveMonthlyRate = mathutil.RoundRate(
			mathutil.FractionToPercent(mathutil.Root(mathutil.One.Add(result.Factor), constants.MonthsPerYear).Sub(mathutil.One)))
		return nil
	}
	monthly, err := rates.AnnualToPeriod(annualPercent, constants.MonthsPerYear)
	if err != nil {
		return err
	}
	result.EffectiveMonthlyRate = mathutil.RoundRate(mathutil.FractionToPercent(monthly))
	return nil
}

func checkAdjustments(fp, fa decimal.Decimal) error {
	if fp.LessThanOrEqual(mathutil.One.Neg()) {
		return &financing.InvalidFactorError{Field: "fp", Value: fp.String(), Constraint: "must be greater than -1"}
	}
	if fa.LessThanOrEqual(mathutil.One.Neg()) {
		return &financing.InvalidFactorError{Field: "fa", Value: fa.String(), Constraint: "must be greater than -1"}
	}
	return nil
}
