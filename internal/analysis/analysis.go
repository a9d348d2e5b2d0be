// Package analysis runs every case of a configuration through the engine and
// collects the results for output.
package analysis

import (
	"fmt"

	"github.com/iwvelando/rural-credit/internal/config"
	"github.com/iwvelando/rural-credit/pkg/amortization"
	"github.com/iwvelando/rural-credit/pkg/chain"
	"github.com/iwvelando/rural-credit/pkg/compliance"
	"github.com/iwvelando/rural-credit/pkg/engine"
	"github.com/iwvelando/rural-credit/pkg/tcr"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ContractResult holds the schedule and verdicts of one contract.
type ContractResult struct {
	Name     string
	Schedule *amortization.Schedule
	Verdict  compliance.Verdict
	// Moratory and Penalty are nil when the contract does not state them.
	Moratory *compliance.Verdict
	Penalty  *compliance.Verdict
}

// TCRResult holds one TCR and its verdict against the remunerative cap.
type TCRResult struct {
	Name    string
	Result  tcr.Result
	Verdict compliance.Verdict
}

// ChainResult holds the report of one chain.
type ChainResult struct {
	Name   string
	Report *chain.Report
}

// Results holds everything computed for a configuration.
type Results struct {
	Contracts []ContractResult
	TCR       []TCRResult
	Chains    []ChainResult
}

// Run processes all cases of conf. The first failing case aborts the run and
// its error names the case.
func Run(logger *zap.Logger, conf config.Configuration) (*Results, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	e := engine.New(logger, conf.Policy.ToPolicy())
	results := &Results{}

	for _, contract := range conf.Contracts {
		result, err := runContract(e, contract)
		if err != nil {
			return results, fmt.Errorf("contract %s: %w", contract.Name, err)
		}
		logger.Debug(fmt.Sprintf("contract %s is %s", contract.Name, result.Verdict.Status),
			zap.String("op", "analysis.Run"),
		)
		results.Contracts = append(results.Contracts, result)
	}

	for _, tc := range conf.TCR {
		result, err := e.ComputeTCR(tc.ToFactors())
		if err != nil {
			return results, fmt.Errorf("tcr %s: %w", tc.Name, err)
		}
		if result.Notice != nil {
			logger.Warn(fmt.Sprintf("tcr %s: %s", tc.Name, result.Notice),
				zap.String("op", "analysis.Run"),
			)
		}
		results.TCR = append(results.TCR, TCRResult{
			Name:    tc.Name,
			Result:  result,
			Verdict: e.EvaluateCompliance(result.EffectiveAnnualRate, compliance.RemunerativeCap(), nil),
		})
	}

	for _, ch := range conf.Chains {
		report, err := e.AnalyzeChain(ch.ToLinks())
		if err != nil {
			return results, fmt.Errorf("chain %s: %w", ch.Name, err)
		}
		for _, alert := range report.Alerts {
			logger.Info(fmt.Sprintf("chain %s: %s", ch.Name, alert),
				zap.String("op", "analysis.Run"),
			)
		}
		results.Chains = append(results.Chains, ChainResult{Name: ch.Name, Report: report})
	}

	return results, nil
}

func runContract(e *engine.Engine, contract config.Contract) (ContractResult, error) {
	terms := contract.ToTerms()
	schedule, err := e.BuildSchedule(terms)
	if err != nil {
		return ContractResult{}, err
	}

	result := ContractResult{
		Name:     contract.Name,
		Schedule: schedule,
		Verdict:  e.EvaluateCompliance(terms.AnnualRate, compliance.RemunerativeCap(), schedule),
	}

	if contract.MoratoryRate != nil {
		verdict, err := e.EvaluateKind(compliance.Moratory, decimal.NewFromFloat(*contract.MoratoryRate), nil)
		if err != nil {
			return result, err
		}
		result.Moratory = &verdict
	}
	if contract.PenaltyRate != nil {
		verdict, err := e.EvaluateKind(compliance.Penalty, decimal.NewFromFloat(*contract.PenaltyRate), nil)
		if err != nil {
			return result, err
		}
		result.Penalty = &verdict
	}

	return result, nil
}
