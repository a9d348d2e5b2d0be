package compliance

import (
	"testing"

	"github.com/iwvelando/rural-credit/pkg/amortization"
	"github.com/iwvelando/rural-credit/pkg/financing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func schedule(t *testing.T, system financing.System, rate string) *amortization.Schedule {
	t.Helper()
	tr := financing.Terms{
		Principal:   d("100000"),
		AnnualRate:  d(rate),
		RateBasis:   financing.BasisNominal,
		Term:        12,
		System:      system,
		Granularity: financing.Monthly,
	}
	if system == financing.SystemSAF {
		tr.GracePeriods = 2
	}
	s, err := amortization.NewBuilder(nil).Build(tr)
	require.NoError(t, err)
	return s
}

func TestEvaluateScenario(t *testing.T) {
	analyzer := NewAnalyzer(zap.NewNop(), nil)

	verdict := analyzer.Evaluate(d("18"), RemunerativeCap(), schedule(t, financing.SystemPrice, "18"))

	assert.Equal(t, NaoConforme, verdict.Status)
	assert.True(t, verdict.Difference.Equal(d("6")), "difference = %s", verdict.Difference)
	assert.True(t, verdict.Cap.Equal(d("12")))
	assert.True(t, verdict.TotalExcess.IsPositive())
	assert.NotEmpty(t, verdict.Citations)
	require.Len(t, verdict.Lines, 12)

	first := verdict.Lines[0]
	require.NotNil(t, first.Legal)
	assert.True(t, first.Legal.Interest.Equal(d("1000")), "legal interest = %s", first.Legal.Interest)
	assert.True(t, first.Legal.Payment.Equal(d("8884.88")))
	assert.True(t, first.Legal.Excess.Equal(first.Payment.Sub(first.Legal.Payment)))
	assert.False(t, first.Legal.Clamped)

	sum := decimal.Zero
	for _, line := range verdict.Lines {
		sum = sum.Add(line.Legal.Excess)
	}
	assert.True(t, sum.Equal(verdict.TotalExcess))
}

func TestEvaluateWithoutSchedule(t *testing.T) {
	analyzer := NewAnalyzer(nil, nil)
	verdict := analyzer.Evaluate(d("10"), RemunerativeCap(), nil)

	assert.Equal(t, Conforme, verdict.Status)
	assert.True(t, verdict.Difference.Equal(d("-2")))
	assert.Nil(t, verdict.Lines)
	assert.True(t, verdict.TotalExcess.IsZero())
}

func TestClassifyThresholds(t *testing.T) {
	analyzer := NewAnalyzerWithMargin(nil, nil, d("0.5"))

	tests := []struct {
		rate     string
		expected Status
	}{
		{"0", Conforme},
		{"11.99", Conforme},
		{"12", Conforme},
		{"12.0001", Atencao},
		{"12.5", Atencao},
		{"12.5001", NaoConforme},
		{"40", NaoConforme},
	}
	for _, tt := range tests {
		t.Run(tt.rate, func(t *testing.T) {
			assert.Equal(t, tt.expected, analyzer.Classify(d(tt.rate), d("12")))
		})
	}
}

func TestZeroMarginSkipsAttention(t *testing.T) {
	analyzer := NewAnalyzerWithMargin(nil, nil, d("-3"))
	assert.True(t, analyzer.AttentionMargin().IsZero())
	assert.Equal(t, NaoConforme, analyzer.Classify(d("12.01"), d("12")))
}

func TestEvaluateMonotonic(t *testing.T) {
	analyzer := NewAnalyzer(nil, nil)

	previous := -1
	for rate := d("0"); rate.LessThanOrEqual(d("20")); rate = rate.Add(d("0.05")) {
		severity := analyzer.Evaluate(rate, RemunerativeCap(), nil).Status.Severity()
		assert.GreaterOrEqual(t, severity, previous, "verdict regressed at %s", rate)
		previous = severity
	}
	assert.Equal(t, NaoConforme.Severity(), previous)
}

func TestExcessNonNegative(t *testing.T) {
	analyzer := NewAnalyzer(nil, nil)

	for _, system := range []financing.System{financing.SystemPrice, financing.SystemSAC, financing.SystemSAF} {
		for _, rate := range []string{"0", "6", "12", "12.3", "18", "30"} {
			verdict := analyzer.Evaluate(d(rate), RemunerativeCap(), schedule(t, system, rate))
			for _, line := range verdict.Lines {
				assert.False(t, line.Legal.Excess.IsNegative(), "%s %s period %d", system, rate, line.Period)
			}
			if d(rate).LessThanOrEqual(RemunerativeCap()) {
				assert.True(t, verdict.TotalExcess.IsZero(), "%s at %s%% should have no excess, got %s",
					system, rate, verdict.TotalExcess)
			} else {
				assert.True(t, verdict.TotalExcess.IsPositive(), "%s at %s%% should have excess", system, rate)
			}
		}
	}
}

func TestClampedLinesFlagged(t *testing.T) {
	analyzer := NewAnalyzer(nil, nil)
	verdict := analyzer.Evaluate(d("6"), RemunerativeCap(), schedule(t, financing.SystemSAC, "6"))

	require.NotEmpty(t, verdict.Lines)
	for _, line := range verdict.Lines {
		assert.True(t, line.Legal.Clamped, "period %d should be clamped", line.Period)
		assert.True(t, line.Legal.Excess.IsZero())
	}
}

func TestEvaluateDoesNotMutateSchedule(t *testing.T) {
	analyzer := NewAnalyzer(nil, nil)
	s := schedule(t, financing.SystemPrice, "18")
	_ = analyzer.Evaluate(d("18"), RemunerativeCap(), s)
	for _, line := range s.Lines {
		assert.Nil(t, line.Legal)
	}
}

func TestEvaluateKind(t *testing.T) {
	analyzer := NewAnalyzer(nil, nil)

	moratory, err := analyzer.EvaluateKind(Moratory, d("12"), nil)
	require.NoError(t, err)
	assert.Equal(t, NaoConforme, moratory.Status)
	assert.True(t, moratory.Cap.Equal(d("1")))
	assert.Contains(t, moratory.Citations[0], "167/1967")

	penalty, err := analyzer.EvaluateKind(Penalty, d("2"), nil)
	require.NoError(t, err)
	assert.Equal(t, Conforme, penalty.Status)

	penalty, err = analyzer.EvaluateKind(Penalty, d("10"), nil)
	require.NoError(t, err)
	assert.Equal(t, NaoConforme, penalty.Status)
	assert.Contains(t, penalty.Citations[0], "CDC")

	_, err = analyzer.EvaluateKind("comissao", d("1"), nil)
	assert.ErrorIs(t, err, financing.ErrInvalidRate)
}

func TestCapConstants(t *testing.T) {
	for kind, expected := range map[CapKind]string{Remunerative: "12", Moratory: "1", Penalty: "2"} {
		value, ok := Cap(kind)
		require.True(t, ok)
		assert.True(t, value.Equal(d(expected)), "%s cap = %s", kind, value)
	}
	_, ok := Cap("other")
	assert.False(t, ok)
}
