package integration

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/rural-credit/internal/analysis"
	"github.com/iwvelando/rural-credit/internal/config"
	"github.com/iwvelando/rural-credit/pkg/amortization"
	"github.com/iwvelando/rural-credit/pkg/compliance"
	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/iwvelando/rural-credit/pkg/mathutil"
	"github.com/iwvelando/rural-credit/pkg/output"
	"github.com/iwvelando/rural-credit/pkg/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	cent        = decimal.RequireFromString("0.01")
	examplePath = filepath.Join("..", "..", constants.ExampleConfigFile)
)

var caseFiles = []string{
	"../test_cases.yaml",
	examplePath,
}

// loadAndRun processes a case file exactly as main() does.
func loadAndRun(t *testing.T, path string) *analysis.Results {
	t.Helper()

	conf, err := config.LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration(%s) error = %v", path, err)
	}
	if err := conf.Validate(); err != nil {
		t.Fatalf("Validate(%s) error = %v", path, err)
	}

	results, err := analysis.Run(zap.NewNop(), *conf)
	if err != nil {
		t.Fatalf("Run(%s) error = %v", path, err)
	}
	return results
}

func TestCaseFilesEndToEnd(t *testing.T) {
	for _, path := range caseFiles {
		t.Run(path, func(t *testing.T) {
			results := loadAndRun(t, path)
			if len(results.Contracts) == 0 || len(results.TCR) == 0 || len(results.Chains) == 0 {
				t.Fatalf("expected contracts, tcr and chains in %s", path)
			}

			for _, contract := range results.Contracts {
				checkSchedule(t, contract.Name, contract.Schedule)
				checkVerdict(t, contract.Name, contract.Verdict)
			}
			for _, ch := range results.Chains {
				for _, link := range ch.Report.Links {
					checkSchedule(t, ch.Name, link.Schedule)
					checkVerdict(t, ch.Name, link.Verdict)
				}
			}
		})
	}
}

// checkSchedule asserts the properties every schedule must hold.
func checkSchedule(t *testing.T, name string, s *amortization.Schedule) {
	t.Helper()

	if len(s.Lines) != s.Terms.Term {
		t.Errorf("%s: expected %d lines, got %d", name, s.Terms.Term, len(s.Lines))
	}
	if !s.Lines[len(s.Lines)-1].Closing.IsZero() {
		t.Errorf("%s: final balance %s, expected 0", name, s.Lines[len(s.Lines)-1].Closing)
	}
	if !s.TotalAmortized().Equal(s.Terms.Principal) {
		t.Errorf("%s: amortized %s, expected principal %s", name, s.TotalAmortized(), s.Terms.Principal)
	}

	for idx, line := range s.Lines {
		if !mathutil.WithinTolerance(line.Payment, line.Interest.Add(line.Amortization), cent) {
			t.Errorf("%s line %d: payment %s != interest %s + amortization %s",
				name, line.Period, line.Payment, line.Interest, line.Amortization)
		}
		if !line.Closing.Equal(line.Opening.Sub(line.Amortization)) {
			t.Errorf("%s line %d: closing %s != opening %s - amortization %s",
				name, line.Period, line.Closing, line.Opening, line.Amortization)
		}
		if idx > 0 && !line.Opening.Equal(s.Lines[idx-1].Closing) {
			t.Errorf("%s line %d: opening %s does not continue closing %s",
				name, line.Period, line.Opening, s.Lines[idx-1].Closing)
		}
		if line.Closing.IsNegative() {
			t.Errorf("%s line %d: negative closing balance %s", name, line.Period, line.Closing)
		}
	}
}

func checkVerdict(t *testing.T, name string, v compliance.Verdict) {
	t.Helper()

	total := decimal.Zero
	for _, line := range v.Lines {
		if line.Legal == nil {
			t.Fatalf("%s line %d: missing legal comparison", name, line.Period)
		}
		if line.Legal.Excess.IsNegative() {
			t.Errorf("%s line %d: negative excess %s", name, line.Period, line.Legal.Excess)
		}
		total = total.Add(line.Legal.Excess)
	}
	if !total.Equal(v.TotalExcess) {
		t.Errorf("%s: line excess sums to %s, verdict says %s", name, total, v.TotalExcess)
	}
	if v.Status == compliance.Conforme && v.TotalExcess.IsPositive() {
		t.Errorf("%s: conforming verdict with excess %s", name, v.TotalExcess)
	}
}

func TestCSVOutputFormat(t *testing.T) {
	results := loadAndRun(t, "../test_cases.yaml")

	var buf bytes.Buffer
	if err := output.CsvFormat(&buf, results); err != nil {
		t.Fatalf("CsvFormat() error = %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("CSV output does not parse: %v", err)
	}

	expectedRows := 1 + len(results.TCR)
	for _, contract := range results.Contracts {
		expectedRows += len(contract.Schedule.Lines)
	}
	for _, ch := range results.Chains {
		for _, link := range ch.Report.Links {
			expectedRows += len(link.Schedule.Lines)
		}
	}
	if len(records) != expectedRows {
		t.Errorf("expected %d CSV rows, got %d", expectedRows, len(records))
	}
}

func TestPrettyOutputFormat(t *testing.T) {
	results := loadAndRun(t, examplePath)

	var buf bytes.Buffer
	output.PrettyFormat(&buf, results)
	out := buf.String()

	for _, want := range []string{
		"--- Contrato custeio safra 2024 (price, 12 parcelas, nominal) ---",
		"--- Contrato investimento trator (sac, 8 parcelas, nominal) ---",
		"--- TCR investimento pos-fixado (pos) ---",
		"--- Cadeia custeio rolado (3 contratos) ---",
		"operacao mata-mata",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("pretty output missing %q", want)
		}
	}
}

func TestExampleFindings(t *testing.T) {
	results := loadAndRun(t, examplePath)

	statuses := map[string]compliance.Status{
		"custeio safra 2024":    compliance.Conforme,
		"investimento trator":   compliance.NaoConforme,
		"pronaf mais alimentos": compliance.Conforme,
	}
	for name, want := range statuses {
		contract := testutil.FindContract(results, name)
		if contract == nil {
			t.Fatalf("contract %s not found", name)
		}
		if contract.Verdict.Status != want {
			t.Errorf("%s: expected %s, got %s", name, want, contract.Verdict.Status)
		}
	}

	rolled := testutil.FindChain(results, "custeio rolado")
	if rolled == nil {
		t.Fatal("chain custeio rolado not found")
	}
	report := rolled.Report
	if !report.MataMataDetected || !report.CapitalizationDetected {
		t.Errorf("expected mata-mata and capitalization in the rolled chain")
	}
	if !report.GrowthPercent.Equal(decimal.NewFromInt(32)) {
		t.Errorf("expected 32%% principal growth, got %s", report.GrowthPercent)
	}
}
