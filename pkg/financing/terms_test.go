package financing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTerms() Terms {
	return Terms{
		Principal:   decimal.NewFromInt(100000),
		AnnualRate:  decimal.NewFromInt(12),
		RateBasis:   BasisNominal,
		Term:        12,
		System:      SystemPrice,
		Granularity: Monthly,
	}
}

func TestTermsValidate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*Terms)
		sentinel error
		field    string
	}{
		{"valid", func(*Terms) {}, nil, ""},
		{"zero principal", func(t *Terms) { t.Principal = decimal.Zero }, ErrInvalidTerm, "principal"},
		{"negative principal", func(t *Terms) { t.Principal = decimal.NewFromInt(-1) }, ErrInvalidTerm, "principal"},
		{"negative rate", func(t *Terms) { t.AnnualRate = decimal.NewFromInt(-1) }, ErrInvalidRate, "annual_rate"},
		{"zero rate allowed", func(t *Terms) { t.AnnualRate = decimal.Zero }, nil, ""},
		{"missing basis", func(t *Terms) { t.RateBasis = "" }, ErrInvalidRate, "rate_basis"},
		{"zero term", func(t *Terms) { t.Term = 0 }, ErrInvalidTerm, "term"},
		{"unknown system", func(t *Terms) { t.System = "german" }, ErrInvalidTerm, "system"},
		{"unknown granularity", func(t *Terms) { t.Granularity = "weekly" }, ErrInvalidTerm, "granularity"},
		{"paid exceeds term", func(t *Terms) { t.PaidPeriods = 13 }, ErrInvalidTerm, "paid_periods"},
		{"paid equals term", func(t *Terms) { t.PaidPeriods = 12 }, nil, ""},
		{"grace on price", func(t *Terms) { t.GracePeriods = 2 }, ErrInvalidTerm, "grace_periods"},
		{"grace on saf", func(t *Terms) { t.System = SystemSAF; t.GracePeriods = 2 }, nil, ""},
		{"grace covers term", func(t *Terms) { t.System = SystemSAF; t.GracePeriods = 12 }, ErrInvalidTerm, "grace_periods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := validTerms()
			tt.mutate(&terms)
			err := terms.Validate()
			if tt.sentinel == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.sentinel), "expected %v, got %v", tt.sentinel, err)
			assert.True(t, IsClientError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestGranularityPeriodsPerYear(t *testing.T) {
	assert.Equal(t, 12, Monthly.PeriodsPerYear())
	assert.Equal(t, 1, Annual.PeriodsPerYear())
	assert.Equal(t, 0, Granularity("daily").PeriodsPerYear())
}

func TestWithRateCopies(t *testing.T) {
	terms := validTerms()
	other := terms.WithRate(decimal.NewFromInt(18))
	assert.True(t, terms.AnnualRate.Equal(decimal.NewFromInt(12)))
	assert.True(t, other.AnnualRate.Equal(decimal.NewFromInt(18)))
}

func TestInvalidChainErrorMessage(t *testing.T) {
	whole := &InvalidChainError{Field: "links", Constraint: "must not be empty"}
	assert.Equal(t, "invalid chain: links: must not be empty", whole.Error())

	link := &InvalidChainError{Order: 2, Field: "type", Constraint: "only the first link may be original"}
	assert.Equal(t, "invalid chain: link 2: type: only the first link may be original", link.Error())
	assert.ErrorIs(t, link, ErrInvalidChain)
}
