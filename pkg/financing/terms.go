// Package financing defines the value objects shared by every part of the
// engine: financing terms, schedule lines and the error taxonomy.
//
// All values are request-scoped. Terms carries no slices or pointers, so a
// copy handed to a builder cannot be changed behind its back.
package financing

import (
	"strconv"

	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/shopspring/decimal"
)

// System is an amortization system.
type System string

const (
	// SystemPrice is the constant-payment (French) system.
	SystemPrice System = "price"
	// SystemSAC is the constant-amortization system.
	SystemSAC System = "sac"
	// SystemSAF is the French-adapted system with optional grace period.
	SystemSAF System = "saf"
)

// Valid reports whether s is a known system.
func (s System) Valid() bool {
	switch s {
	case SystemPrice, SystemSAC, SystemSAF:
		return true
	}
	return false
}

// Granularity is the length of one schedule period.
type Granularity string

const (
	// Monthly periods, twelve per year.
	Monthly Granularity = "monthly"
	// Annual periods, as in investment credit paid once per harvest.
	Annual Granularity = "annual"
)

// PeriodsPerYear returns how many periods of g fit in a year, or 0 if g is
// unknown.
func (g Granularity) PeriodsPerYear() int {
	switch g {
	case Monthly:
		return constants.MonthsPerYear
	case Annual:
		return constants.YearsPerYear
	}
	return 0
}

// RateBasis says how the contracted annual rate maps onto a period rate.
type RateBasis string

const (
	// BasisNominal is an annual rate capitalized once per period: the period
	// rate is the annual rate divided by the periods per year (12% a.a. is
	// 1% a.m.).
	BasisNominal RateBasis = "nominal"
	// BasisEffective is an effective annual rate: the period rate is its
	// compound equivalent ((1.12)^(1/12) - 1 for 12% a.a.).
	BasisEffective RateBasis = "effective"
)

// Valid reports whether b is a known basis.
func (b RateBasis) Valid() bool {
	return b == BasisNominal || b == BasisEffective
}

// Terms describes one financing contract.
type Terms struct {
	Principal    decimal.Decimal
	AnnualRate   decimal.Decimal // percent
	RateBasis    RateBasis
	Term         int // periods
	System       System
	Granularity  Granularity
	PaidPeriods  int
	GracePeriods int // SAF only
}

// Validate checks every field. It returns *InvalidRateError or
// *InvalidTermError naming the offending field.
func (t Terms) Validate() error {
	if !t.Principal.IsPositive() {
		return &InvalidTermError{Field: "principal", Value: t.Principal.String(), Constraint: "must be greater than zero"}
	}
	if t.AnnualRate.IsNegative() {
		return &InvalidRateError{Field: "annual_rate", Value: t.AnnualRate.String(), Constraint: "must not be negative"}
	}
	if !t.RateBasis.Valid() {
		return &InvalidRateError{Field: "rate_basis", Value: string(t.RateBasis), Constraint: "must be nominal or effective"}
	}
	if t.Term <= 0 {
		return &InvalidTermError{Field: "term", Value: strconv.Itoa(t.Term), Constraint: "must be greater than zero"}
	}
	if !t.System.Valid() {
		return &InvalidTermError{Field: "system", Value: string(t.System), Constraint: "must be price, sac or saf"}
	}
	if t.Granularity.PeriodsPerYear() == 0 {
		return &InvalidTermError{Field: "granularity", Value: string(t.Granularity), Constraint: "must be monthly or annual"}
	}
	if t.PaidPeriods < 0 || t.PaidPeriods > t.Term {
		return &InvalidTermError{Field: "paid_periods", Value: strconv.Itoa(t.PaidPeriods), Constraint: "must be between 0 and term"}
	}
	if t.GracePeriods < 0 || (t.GracePeriods > 0 && t.GracePeriods >= t.Term) {
		return &InvalidTermError{Field: "grace_periods", Value: strconv.Itoa(t.GracePeriods), Constraint: "must be between 0 and term-1"}
	}
	if t.GracePeriods > 0 && t.System != SystemSAF {
		return &InvalidTermError{Field: "grace_periods", Value: strconv.Itoa(t.GracePeriods), Constraint: "grace is only available for saf"}
	}
	return nil
}

// WithRate returns a copy of t carrying a different annual rate.
func (t Terms) WithRate(annualRate decimal.Decimal) Terms {
	t.AnnualRate = annualRate
	return t
}

// InstallmentLine is one row of a schedule. Currency values are rounded to
// two places.
type InstallmentLine struct {
	Period       int
	Opening      decimal.Decimal
	Interest     decimal.Decimal
	Amortization decimal.Decimal
	Payment      decimal.Decimal
	Closing      decimal.Decimal
	Legal        *LegalLine
}

// LegalLine is the same period recomputed at the statutory cap.
type LegalLine struct {
	Interest decimal.Decimal
	Payment  decimal.Decimal
	Closing  decimal.Decimal
	// Excess is max(0, payment - legal payment).
	Excess decimal.Decimal
	// Clamped is set when the raw difference was negative and reported as zero.
	Clamped bool
}
