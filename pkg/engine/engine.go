// Package engine exposes the computation entry points consumed by request
// handlers: schedules, TCR, compliance verdicts and chain reports.
//
// Every call is a pure function of its arguments; an Engine holds only its
// logger and policy, so one instance may serve concurrent requests.
package engine

import (
	"github.com/iwvelando/rural-credit/pkg/amortization"
	"github.com/iwvelando/rural-credit/pkg/chain"
	"github.com/iwvelando/rural-credit/pkg/compliance"
	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/iwvelando/rural-credit/pkg/financing"
	"github.com/iwvelando/rural-credit/pkg/tcr"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Policy holds the tunable, non-statutory parameters.
type Policy struct {
	// AttentionMargin in percentage points above the cap.
	AttentionMargin decimal.Decimal
}

// DefaultPolicy returns the policy compiled into this release.
func DefaultPolicy() Policy {
	return Policy{AttentionMargin: decimal.RequireFromString(constants.DefaultAttentionMargin)}
}

// Engine wires the calculators together.
type Engine struct {
	logger     *zap.Logger
	builder    *amortization.Builder
	calculator *tcr.Calculator
	compliance *compliance.Analyzer
	chain      *chain.Analyzer
}

// New creates an engine with the given policy.
func New(logger *zap.Logger, policy Policy) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	builder := amortization.NewBuilder(logger)
	analyzer := compliance.NewAnalyzerWithMargin(logger, builder, policy.AttentionMargin)
	return &Engine{
		logger:     logger,
		builder:    builder,
		calculator: tcr.NewCalculator(logger),
		compliance: analyzer,
		chain:      chain.NewAnalyzer(logger, builder, analyzer),
	}
}

// BuildSchedule returns the installment schedule for terms. Errors are
// *financing.InvalidRateError or *financing.InvalidTermError.
func (e *Engine) BuildSchedule(terms financing.Terms) (*amortization.Schedule, error) {
	return e.builder.Build(terms)
}

// ComputeTCR returns the Total Real Cost. Errors are *financing.InvalidFactorError.
func (e *Engine) ComputeTCR(factors tcr.Factors) (tcr.Result, error) {
	return e.calculator.Compute(factors)
}

// EvaluateCompliance never fails on valid numeric input. A nil schedule
// omits the per-line detail.
func (e *Engine) EvaluateCompliance(rateAnnual, capAnnual decimal.Decimal, schedule *amortization.Schedule) compliance.Verdict {
	return e.compliance.Evaluate(rateAnnual, capAnnual, schedule)
}

// EvaluateKind evaluates against a compiled-in cap (remunerative, moratory,
// penalty).
func (e *Engine) EvaluateKind(kind compliance.CapKind, rate decimal.Decimal, schedule *amortization.Schedule) (compliance.Verdict, error) {
	return e.compliance.EvaluateKind(kind, rate, schedule)
}

// AnalyzeChain returns the chain report. Structural violations are
// *financing.InvalidChainError.
func (e *Engine) AnalyzeChain(links []chain.Link) (*chain.Report, error) {
	return e.chain.Analyze(links)
}
