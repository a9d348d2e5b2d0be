// Package amortization builds installment schedules for the Price, SAC and
// SAF systems.
package amortization

import (
	"fmt"

	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/iwvelando/rural-credit/pkg/financing"
	"github.com/iwvelando/rural-credit/pkg/mathutil"
	"github.com/iwvelando/rural-credit/pkg/rates"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Schedule is a complete installment schedule for one set of terms.
type Schedule struct {
	Terms      financing.Terms
	PeriodRate decimal.Decimal // fraction
	// PMT is the constant payment of Price, or of SAF after grace. Zero for SAC.
	PMT decimal.Decimal
	// ConstantAmortization is the SAC amortization per period. Zero otherwise.
	ConstantAmortization decimal.Decimal
	Lines                []financing.InstallmentLine
}

// TotalInterest sums the interest of every line.
func (s *Schedule) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Interest)
	}
	return total
}

// TotalPaid sums the payment of every line.
func (s *Schedule) TotalPaid() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Payment)
	}
	return total
}

// TotalAmortized sums the amortization of every line.
func (s *Schedule) TotalAmortized() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Amortization)
	}
	return total
}

// Paid returns the prefix of lines already paid.
func (s *Schedule) Paid() []financing.InstallmentLine {
	return s.Lines[:s.Terms.PaidPeriods]
}

// Remaining returns the lines still to be paid (the remaining-balance view).
func (s *Schedule) Remaining() []financing.InstallmentLine {
	return s.Lines[s.Terms.PaidPeriods:]
}

// OutstandingBalance is the unamortized balance after the paid periods.
func (s *Schedule) OutstandingBalance() decimal.Decimal {
	if s.Terms.PaidPeriods == 0 {
		return mathutil.Round(s.Terms.Principal)
	}
	return s.Lines[s.Terms.PaidPeriods-1].Closing
}

// Builder produces schedules. It is stateless and safe for concurrent use.
type Builder struct {
	logger *zap.Logger
}

// NewBuilder creates a new builder instance
func NewBuilder(logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{logger: logger}
}

// Build validates the terms and returns the full schedule of terms.Term lines.
//
// Balances, interest and payments are carried unrounded between periods and
// rounded to cents only on each line. A line's amortization is the difference
// of its rounded opening and closing balances, so the lines telescope to the
// principal and the last line absorbs the residual cents. At a zero rate the
// per-period share is rounded up to the cent and the last line takes what is
// left, so nothing beyond the principal is ever charged.
func (b *Builder) Build(terms financing.Terms) (*Schedule, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	i, err := rates.PeriodRate(terms)
	if err != nil {
		return nil, err
	}

	schedule := &Schedule{
		Terms:      terms,
		PeriodRate: i,
		Lines:      make([]financing.InstallmentLine, 0, terms.Term),
	}

	n := terms.Term
	grace := terms.GracePeriods
	balance := terms.Principal

	var pmt, constantAmortization decimal.Decimal
	switch terms.System {
	case financing.SystemPrice:
		pmt = Payment(balance, i, n)
		schedule.PMT = mathutil.Round(pmt)
	case financing.SystemSAC:
		constantAmortization = balance.Div(decimal.NewFromInt(int64(n)))
		schedule.ConstantAmortization = mathutil.Round(constantAmortization)
	case financing.SystemSAF:
		// Grace leaves the balance untouched, so the post-grace PMT can be
		// fixed up front over the remaining periods.
		pmt = Payment(balance, i, n-grace)
		schedule.PMT = mathutil.Round(pmt)
	}

	b.logger.Debug(fmt.Sprintf("building %s schedule for %s over %d periods at period rate %s",
		terms.System, terms.Principal.StringFixed(constants.CurrencyPlaces), n, i.String()),
		zap.String("op", "amortization.Build"),
	)

	for period := 1; period <= n; period++ {
		opening := balance
		interest := opening.Mul(i).Round(constants.FactorPrecision)

		var amortization decimal.Decimal
		switch {
		case period == n:
			amortization = opening
		case terms.System == financing.SystemSAC:
			amortization = constantAmortization
		case terms.System == financing.SystemSAF && period <= grace:
			amortization = decimal.Zero
		default:
			amortization = pmt.Sub(interest)
		}

		if i.IsZero() && period < n {
			amortization = decimal.Min(amortization.RoundUp(constants.CurrencyPlaces), opening)
		}

		payment := amortization.Add(interest)
		balance = opening.Sub(amortization)

		line := financing.InstallmentLine{
			Period:   period,
			Opening:  mathutil.Round(opening),
			Interest: mathutil.Round(interest),
			Payment:  mathutil.Round(payment),
			Closing:  mathutil.Round(balance),
		}
		line.Amortization = line.Opening.Sub(line.Closing)
		if i.IsZero() {
			line.Payment = line.Amortization
		}
		schedule.Lines = append(schedule.Lines, line)
	}

	return schedule, nil
}

// Payment is the Price constant payment PV*i / (1 - (1+i)^-n), unrounded.
// A zero rate degenerates to PV/n.
func Payment(principal, periodRate decimal.Decimal, n int) decimal.Decimal {
	if n <= 0 {
		return decimal.Zero
	}
	if periodRate.IsZero() {
		return principal.Div(decimal.NewFromInt(int64(n)))
	}
	growth := mathutil.PowInt(mathutil.One.Add(periodRate), n)
	// PV*i/(1-1/g) == PV*i*g/(g-1)
	return principal.Mul(periodRate).Mul(growth).Div(growth.Sub(mathutil.One))
}
