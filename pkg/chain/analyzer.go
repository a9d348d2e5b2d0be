// Package chain analyzes ordered sequences of contracts between one borrower
// and one lender (original, aditivos, refinancing, novations) and detects
// unpaid charges folded into a successor's principal.
package chain

import (
	"fmt"

	"github.com/iwvelando/rural-credit/pkg/amortization"
	"github.com/iwvelando/rural-credit/pkg/compliance"
	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/iwvelando/rural-credit/pkg/financing"
	"github.com/iwvelando/rural-credit/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LinkType is the kind of contract at one position of a chain.
type LinkType string

const (
	// Original is the first contract of a chain.
	Original LinkType = "original"
	// Aditivo amends the previous contract without replacing the debt.
	Aditivo LinkType = "aditivo"
	// Refinanciamento pays off the previous debt with a new contract.
	Refinanciamento LinkType = "refinanciamento"
	// Novacao extinguishes the previous obligation and creates a new one.
	Novacao LinkType = "novacao"
	// Renegociacao reschedules the previous debt under new terms.
	Renegociacao LinkType = "renegociacao"
)

// Valid reports whether t is a known link type.
func (t LinkType) Valid() bool {
	switch t {
	case Original, Aditivo, Refinanciamento, Novacao, Renegociacao:
		return true
	}
	return false
}

// Refinances reports whether the link replaces the prior debt, which is
// where charges can be capitalized.
func (t LinkType) Refinances() bool {
	return t == Refinanciamento || t == Novacao || t == Renegociacao
}

// Link is one contract of a chain. PriorOutstandingBalance and
// IncorporatedCharges are only meaningful for links after the first.
type Link struct {
	Order                   int
	Type                    LinkType
	Terms                   financing.Terms
	PriorOutstandingBalance decimal.Decimal
	IncorporatedCharges     decimal.Decimal
}

// LinkReport is the per-contract part of a Report.
type LinkReport struct {
	Order     int
	Type      LinkType
	Principal decimal.Decimal
	Schedule  *amortization.Schedule
	Verdict   compliance.Verdict

	CapitalizationDetected bool
	IncorporatedCharges    decimal.Decimal
	// PrincipalDelta is this principal minus the predecessor's.
	PrincipalDelta decimal.Decimal
	// NewMoney is principal - prior balance - incorporated charges: funds
	// actually released to the borrower on rollover.
	NewMoney decimal.Decimal
	Alerts   []string
}

// Report aggregates the findings over a whole chain.
type Report struct {
	Links                    []LinkReport
	OriginalPrincipal        decimal.Decimal
	CurrentPrincipal         decimal.Decimal
	GrowthPercent            decimal.Decimal
	TotalIncorporatedCharges decimal.Decimal
	CapitalizationDetected   bool
	MataMataDetected         bool
	RateAboveLegalDetected   bool
	Alerts                   []string
}

const (
	anatocismCitation = "STF, Sumula 121 e Decreto 22.626/1933, art. 4 (vedacao a capitalizacao de juros)"
	mataMataAlert     = "operacao mata-mata: refinanciamentos sucessivos com incorporacao de encargos"
)

// Analyzer walks chains. It is stateless and safe for concurrent use.
type Analyzer struct {
	logger     *zap.Logger
	builder    *amortization.Builder
	compliance *compliance.Analyzer
}

// NewAnalyzer creates a chain analyzer. Nil collaborators get defaults.
func NewAnalyzer(logger *zap.Logger, builder *amortization.Builder, complianceAnalyzer *compliance.Analyzer) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if builder == nil {
		builder = amortization.NewBuilder(logger)
	}
	if complianceAnalyzer == nil {
		complianceAnalyzer = compliance.NewAnalyzer(logger, builder)
	}
	return &Analyzer{logger: logger, builder: builder, compliance: complianceAnalyzer}
}

// Analyze validates the whole chain first and only then computes. Structural
// problems return *financing.InvalidChainError; invalid terms return the
// terms' own error wrapped with the link order.
func (a *Analyzer) Analyze(links []Link) (*Report, error) {
	if err := Validate(links); err != nil {
		return nil, err
	}

	report := &Report{
		OriginalPrincipal:        mathutil.Round(links[0].Terms.Principal),
		CurrentPrincipal:         mathutil.Round(links[len(links)-1].Terms.Principal),
		TotalIncorporatedCharges: decimal.Zero,
	}

	run := 0
	for idx, link := range links {
		schedule, err := a.builder.Build(link.Terms)
		if err != nil {
			// Unreachable after Validate.
			return nil, fmt.Errorf("link %d: %w", link.Order, err)
		}

		lr := LinkReport{
			Order:               link.Order,
			Type:                link.Type,
			Principal:           mathutil.Round(link.Terms.Principal),
			Schedule:            schedule,
			Verdict:             a.compliance.Evaluate(link.Terms.AnnualRate, compliance.RemunerativeCap(), schedule),
			IncorporatedCharges: decimal.Zero,
			PrincipalDelta:      decimal.Zero,
			NewMoney:            decimal.Zero,
		}

		if idx > 0 {
			prev := links[idx-1].Terms.Principal
			lr.PrincipalDelta = mathutil.Round(link.Terms.Principal.Sub(prev))
			lr.NewMoney = mathutil.Round(link.Terms.Principal.Sub(link.PriorOutstandingBalance).Sub(link.IncorporatedCharges))
		}

		if link.Type.Refinances() && link.IncorporatedCharges.IsPositive() {
			lr.CapitalizationDetected = true
			lr.IncorporatedCharges = mathutil.Round(link.IncorporatedCharges)
			lr.Alerts = append(lr.Alerts, fmt.Sprintf("%s incorpora %s de encargos ao principal: %s",
				link.Type, lr.IncorporatedCharges.StringFixed(constants.CurrencyPlaces), anatocismCitation))
			report.TotalIncorporatedCharges = report.TotalIncorporatedCharges.Add(lr.IncorporatedCharges)
			report.CapitalizationDetected = true
			run++
			if run >= 2 {
				report.MataMataDetected = true
			}
		} else {
			run = 0
		}

		if lr.Verdict.Status == compliance.NaoConforme {
			report.RateAboveLegalDetected = true
			lr.Alerts = append(lr.Alerts, fmt.Sprintf("taxa contratada %s%% acima do limite legal de %s%%",
				lr.Verdict.EvaluatedRate, lr.Verdict.Cap))
		}

		a.logger.Debug(fmt.Sprintf("chain link %d (%s): principal %s, capitalization %t, verdict %s",
			link.Order, link.Type, lr.Principal, lr.CapitalizationDetected, lr.Verdict.Status),
			zap.String("op", "chain.Analyze"),
		)
		report.Links = append(report.Links, lr)
	}

	report.GrowthPercent = mathutil.CalculatePercentage(
		report.CurrentPrincipal.Sub(report.OriginalPrincipal), report.OriginalPrincipal,
	).Round(constants.CurrencyPlaces)

	for _, lr := range report.Links {
		for _, alert := range lr.Alerts {
			report.Alerts = append(report.Alerts, fmt.Sprintf("contrato %d: %s", lr.Order, alert))
		}
	}
	if report.MataMataDetected {
		report.Alerts = append(report.Alerts, mataMataAlert)
	}

	return report, nil
}

// Validate checks the structure of a chain without computing anything.
func Validate(links []Link) error {
	if len(links) == 0 {
		return &financing.InvalidChainError{Field: "links", Constraint: "must not be empty"}
	}
	for idx, link := range links {
		if link.Order != idx+1 {
			return &financing.InvalidChainError{
				Order:      link.Order,
				Field:      "order",
				Constraint: fmt.Sprintf("order indices must be contiguous from 1, expected %d", idx+1),
			}
		}
		if !link.Type.Valid() {
			return &financing.InvalidChainError{Order: link.Order, Field: "type", Constraint: fmt.Sprintf("unknown link type %q", link.Type)}
		}
		if idx == 0 && link.Type != Original {
			return &financing.InvalidChainError{Order: link.Order, Field: "type", Constraint: "the first link must be original"}
		}
		if idx > 0 && link.Type == Original {
			return &financing.InvalidChainError{Order: link.Order, Field: "type", Constraint: "only the first link may be original"}
		}
		if link.PriorOutstandingBalance.IsNegative() {
			return &financing.InvalidChainError{Order: link.Order, Field: "prior_outstanding_balance", Constraint: "must not be negative"}
		}
		if link.IncorporatedCharges.IsNegative() {
			return &financing.InvalidChainError{Order: link.Order, Field: "incorporated_charges", Constraint: "must not be negative"}
		}
		if err := link.Terms.Validate(); err != nil {
			return fmt.Errorf("link %d: %w", link.Order, err)
		}
		if link.IncorporatedCharges.GreaterThan(link.Terms.Principal) {
			return &financing.InvalidChainError{Order: link.Order, Field: "incorporated_charges", Constraint: "must not exceed the link principal"}
		}
	}
	return nil
}
