// Package compliance compares contracted rates and schedules against the
// statutory caps.
package compliance

import (
	"fmt"

	"github.com/iwvelando/rural-credit/pkg/amortization"
	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/iwvelando/rural-credit/pkg/financing"
	"github.com/iwvelando/rural-credit/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Status is the conformity verdict.
type Status string

const (
	// Conforme is a rate at or below the cap.
	Conforme Status = "conforme"
	// Atencao is a rate above the cap by no more than the attention margin.
	Atencao Status = "atencao"
	// NaoConforme is a rate above the cap plus the attention margin.
	NaoConforme Status = "nao_conforme"
)

// Severity orders the statuses: conforme < atencao < nao_conforme.
func (s Status) Severity() int {
	switch s {
	case Conforme:
		return 0
	case Atencao:
		return 1
	case NaoConforme:
		return 2
	}
	return -1
}

// CapKind names one of the statutory caps.
type CapKind string

const (
	// Remunerative is the cap on remunerative interest, per year.
	Remunerative CapKind = "remuneratorios"
	// Moratory is the cap on default interest, per year.
	Moratory CapKind = "moratorios"
	// Penalty is the cap on the contractual late-payment penalty.
	Penalty CapKind = "multa"
)

var (
	remunerativeCap = decimal.RequireFromString(constants.RemunerativeCapAnnual)
	moratoryCap     = decimal.RequireFromString(constants.MoratoryCapAnnual)
	penaltyCap      = decimal.RequireFromString(constants.PenaltyCap)
)

// Cap returns the compiled-in cap for kind, in percent.
func Cap(kind CapKind) (decimal.Decimal, bool) {
	switch kind {
	case Remunerative:
		return remunerativeCap, true
	case Moratory:
		return moratoryCap, true
	case Penalty:
		return penaltyCap, true
	}
	return decimal.Zero, false
}

// RemunerativeCap is the 12% a.a. ceiling for remunerative interest.
func RemunerativeCap() decimal.Decimal { return remunerativeCap }

// Legal citations attached to verdicts.
var (
	citationsRemunerative = []string{
		"Decreto 22.626/1933 (Lei de Usura), art. 1",
		"Decreto-Lei 167/1967, art. 5",
		"STJ, Sumula 382 (abusividade aferida caso a caso)",
	}
	citationsMoratory = []string{
		"Decreto-Lei 167/1967, art. 5, paragrafo unico",
	}
	citationsPenalty = []string{
		"Lei 8.078/1990 (CDC), art. 52, par. 1",
	}
)

func citationsFor(kind CapKind) []string {
	var src []string
	switch kind {
	case Moratory:
		src = citationsMoratory
	case Penalty:
		src = citationsPenalty
	default:
		src = citationsRemunerative
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Verdict is the result of one evaluation.
type Verdict struct {
	Status        Status
	EvaluatedRate decimal.Decimal // percent
	Cap           decimal.Decimal // percent
	// Difference is EvaluatedRate - Cap in percentage points.
	Difference decimal.Decimal
	Citations  []string
	// Lines is the parcel-by-parcel comparison; nil without a schedule.
	Lines       []financing.InstallmentLine
	TotalExcess decimal.Decimal
	// LegalTotalPaid is the total the borrower would pay at the cap.
	LegalTotalPaid decimal.Decimal
}

// Analyzer evaluates rates. It is stateless and safe for concurrent use.
type Analyzer struct {
	logger          *zap.Logger
	builder         *amortization.Builder
	attentionMargin decimal.Decimal
}

// NewAnalyzer creates an analyzer using the default attention margin.
func NewAnalyzer(logger *zap.Logger, builder *amortization.Builder) *Analyzer {
	return NewAnalyzerWithMargin(logger, builder, decimal.RequireFromString(constants.DefaultAttentionMargin))
}

// NewAnalyzerWithMargin creates an analyzer with an explicit attention margin
// in percentage points. Negative margins are treated as zero.
func NewAnalyzerWithMargin(logger *zap.Logger, builder *amortization.Builder, margin decimal.Decimal) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if builder == nil {
		builder = amortization.NewBuilder(logger)
	}
	return &Analyzer{logger: logger, builder: builder, attentionMargin: mathutil.MaxZero(margin)}
}

// AttentionMargin returns the margin in percentage points.
func (a *Analyzer) AttentionMargin() decimal.Decimal {
	return a.attentionMargin
}

// Classify maps a contracted rate and a cap onto a status. It is monotonic in
// the contracted rate.
func (a *Analyzer) Classify(contracted, capRate decimal.Decimal) Status {
	diff := contracted.Sub(capRate)
	switch {
	case !diff.IsPositive():
		return Conforme
	case diff.LessThanOrEqual(a.attentionMargin):
		return Atencao
	default:
		return NaoConforme
	}
}

// Evaluate compares the contracted annual rate with the cap. When schedule is
// not nil a parallel legal schedule is built at the cap with the same terms
// and each line carries its legal counterpart and excess.
func (a *Analyzer) Evaluate(contracted, capRate decimal.Decimal, schedule *amortization.Schedule) Verdict {
	return a.evaluate(Remunerative, contracted, capRate, schedule)
}

// EvaluateKind evaluates against one of the compiled-in caps.
func (a *Analyzer) EvaluateKind(kind CapKind, contracted decimal.Decimal, schedule *amortization.Schedule) (Verdict, error) {
	capRate, ok := Cap(kind)
	if !ok {
		return Verdict{}, &financing.InvalidRateError{Field: "cap_kind", Value: string(kind), Constraint: "must be remuneratorios, moratorios or multa"}
	}
	return a.evaluate(kind, contracted, capRate, schedule), nil
}

func (a *Analyzer) evaluate(kind CapKind, contracted, capRate decimal.Decimal, schedule *amortization.Schedule) Verdict {
	verdict := Verdict{
		Status:        a.Classify(contracted, capRate),
		EvaluatedRate: mathutil.RoundRate(contracted),
		Cap:           mathutil.RoundRate(capRate),
		Difference:    mathutil.RoundRate(contracted.Sub(capRate)),
		Citations:     citationsFor(kind),
		TotalExcess:   decimal.Zero,
	}

	if schedule != nil {
		a.compare(&verdict, capRate, schedule)
	}

	a.logger.Debug(fmt.Sprintf("rate %s%% against cap %s%%: %s", verdict.EvaluatedRate, verdict.Cap, verdict.Status),
		zap.String("op", "compliance.Evaluate"),
		zap.String("kind", string(kind)),
	)
	return verdict
}

// compare builds the legal schedule and fills the per-line excess. The
// schedule's terms were validated when it was built and a non-negative cap
// keeps them valid, so the legal build cannot fail for caps >= 0.
func (a *Analyzer) compare(verdict *Verdict, capRate decimal.Decimal, schedule *amortization.Schedule) {
	legal, err := a.builder.Build(schedule.Terms.WithRate(mathutil.MaxZero(capRate)))
	if err != nil {
		a.logger.Warn("failed to build legal schedule",
			zap.String("op", "compliance.compare"),
			zap.Error(err),
		)
		return
	}

	verdict.Lines = make([]financing.InstallmentLine, len(schedule.Lines))
	verdict.LegalTotalPaid = legal.TotalPaid()
	for idx, line := range schedule.Lines {
		legalLine := legal.Lines[idx]
		raw := line.Payment.Sub(legalLine.Payment)
		excess := mathutil.MaxZero(raw)

		line.Legal = &financing.LegalLine{
			Interest: legalLine.Interest,
			Payment:  legalLine.Payment,
			Closing:  legalLine.Closing,
			Excess:   excess,
			Clamped:  raw.IsNegative(),
		}
		verdict.Lines[idx] = line
		verdict.TotalExcess = verdict.TotalExcess.Add(excess)
	}
}
