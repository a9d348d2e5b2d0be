package config

import (
	"github.com/iwvelando/rural-credit/pkg/chain"
	"github.com/iwvelando/rural-credit/pkg/engine"
	"github.com/iwvelando/rural-credit/pkg/financing"
	"github.com/iwvelando/rural-credit/pkg/tcr"
	"github.com/shopspring/decimal"
)

// Defaults applied to contracts that leave the field empty.
const (
	DefaultRateBasis   = financing.BasisNominal
	DefaultGranularity = financing.Monthly
)

// ToTerms converts a case-file contract to engine terms, applying defaults.
func (c Contract) ToTerms() financing.Terms {
	basis := financing.RateBasis(c.RateBasis)
	if basis == "" {
		basis = DefaultRateBasis
	}
	granularity := financing.Granularity(c.Granularity)
	if granularity == "" {
		granularity = DefaultGranularity
	}

	return financing.Terms{
		Principal:    decimal.NewFromFloat(c.Principal),
		AnnualRate:   decimal.NewFromFloat(c.AnnualRate),
		RateBasis:    basis,
		Term:         c.Term,
		System:       financing.System(c.System),
		Granularity:  granularity,
		PaidPeriods:  c.PaidPeriods,
		GracePeriods: c.GracePeriods,
	}
}

// ToFactors converts a TCR case to calculator factors.
func (tc TCRCase) ToFactors() tcr.Factors {
	series := make([]decimal.Decimal, 0, len(tc.Series))
	for _, v := range tc.Series {
		series = append(series, decimal.NewFromFloat(v))
	}
	return tcr.Factors{
		Mode:      tcr.Mode(tc.Mode),
		Principal: decimal.NewFromFloat(tc.Principal),
		Series:    series,
		Jm:        decimal.NewFromFloat(tc.Jm),
		FII:       decimal.NewFromFloat(tc.FII),
		FP:        decimal.NewFromFloat(tc.FP),
		FA:        decimal.NewFromFloat(tc.FA),
	}
}

// ToLinks converts the chain to analyzer links in file order.
func (ch Chain) ToLinks() []chain.Link {
	links := make([]chain.Link, 0, len(ch.Links))
	for _, link := range ch.Links {
		links = append(links, chain.Link{
			Order:                   link.Order,
			Type:                    chain.LinkType(link.Type),
			Terms:                   link.Contract.ToTerms(),
			PriorOutstandingBalance: decimal.NewFromFloat(link.PriorOutstandingBalance),
			IncorporatedCharges:     decimal.NewFromFloat(link.IncorporatedCharges),
		})
	}
	return links
}

// ToPolicy returns the engine policy, keeping compiled defaults for anything
// the file leaves unset.
func (p PolicyConfig) ToPolicy() engine.Policy {
	policy := engine.DefaultPolicy()
	if p.AttentionMargin != nil {
		policy.AttentionMargin = decimal.NewFromFloat(*p.AttentionMargin)
	}
	return policy
}
