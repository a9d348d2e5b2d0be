// Package output provides utilities for formatting and displaying analysis results.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/iwvelando/rural-credit/internal/analysis"
	"github.com/iwvelando/rural-credit/pkg/amortization"
	"github.com/iwvelando/rural-credit/pkg/compliance"
	"github.com/iwvelando/rural-credit/pkg/constants"
	"github.com/iwvelando/rural-credit/pkg/financing"
	"github.com/iwvelando/rural-credit/pkg/format"
	"github.com/iwvelando/rural-credit/pkg/mathutil"
	"github.com/iwvelando/rural-credit/pkg/tcr"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable report rather than a machine-readable table.
func PrettyFormat(w io.Writer, results *analysis.Results) {
	p := message.NewPrinter(language.BrazilianPortuguese)

	for _, contract := range results.Contracts {
		terms := contract.Schedule.Terms
		_, _ = p.Fprintf(w, "--- Contrato %s (%s, %d parcelas, %s) ---\n", contract.Name, terms.System, terms.Term, terms.RateBasis)
		writeVerdict(p, w, "Juros remuneratorios", contract.Verdict)
		if contract.Moratory != nil {
			writeVerdict(p, w, "Juros moratorios", *contract.Moratory)
		}
		if contract.Penalty != nil {
			writeVerdict(p, w, "Multa", *contract.Penalty)
		}
		writeSchedule(p, w, contract.Schedule, contract.Verdict)
		_, _ = fmt.Fprintln(w)
	}

	for _, tc := range results.TCR {
		_, _ = p.Fprintf(w, "--- TCR %s (%s) ---\n", tc.Name, tc.Result.Mode)
		if tc.Result.Mode == tcr.ModePos {
			_, _ = p.Fprintf(w, "FAM: %s\n", tc.Result.FAM.StringFixed(constants.RatePlaces))
			if tc.Result.CorrectedPrincipal.IsPositive() {
				_, _ = p.Fprintf(w, "Principal corrigido: %s\n", format.Currency(tc.Result.CorrectedPrincipal))
			}
		}
		_, _ = p.Fprintf(w, "TCR: %s a.a. | %s a.m.\n", format.Percent(tc.Result.EffectiveAnnualRate), format.Percent(tc.Result.EffectiveMonthlyRate))
		if tc.Result.Notice != nil {
			_, _ = p.Fprintf(w, "Aviso: %s\n", tc.Result.Notice)
		}
		writeVerdict(p, w, "TCR", tc.Verdict)
		_, _ = fmt.Fprintln(w)
	}

	for _, ch := range results.Chains {
		report := ch.Report
		_, _ = p.Fprintf(w, "--- Cadeia %s (%d contratos) ---\n", ch.Name, len(report.Links))
		_, _ = p.Fprintf(w, "Principal original: %s | atual: %s | crescimento: %s\n",
			format.Currency(report.OriginalPrincipal), format.Currency(report.CurrentPrincipal), format.Percent(report.GrowthPercent))
		_, _ = p.Fprintf(w, "Encargos incorporados: %s\n", format.Currency(report.TotalIncorporatedCharges))
		_, _ = p.Fprintf(w, "Contrato | Tipo | Principal | Variacao | Dinheiro novo | Taxa | Situacao\n")
		for _, link := range report.Links {
			_, _ = p.Fprintf(w, "%d | %s | %s | %s | %s | %s | %s\n",
				link.Order, link.Type,
				format.Currency(link.Principal),
				format.Currency(link.PrincipalDelta),
				format.Currency(link.NewMoney),
				format.Percent(link.Verdict.EvaluatedRate),
				link.Verdict.Status)
		}
		for _, alert := range report.Alerts {
			_, _ = p.Fprintf(w, "ALERTA: %s\n", alert)
		}
		_, _ = fmt.Fprintln(w)
	}
}

func writeVerdict(p *message.Printer, w io.Writer, label string, verdict compliance.Verdict) {
	_, _ = p.Fprintf(w, "%s: %s (limite %s, diferenca %s p.p.) -> %s\n",
		label,
		format.Percent(verdict.EvaluatedRate),
		format.Percent(verdict.Cap),
		strings.TrimSuffix(format.Percent(verdict.Difference), "%"),
		verdict.Status)
	if verdict.Status != compliance.Conforme {
		for _, citation := range verdict.Citations {
			_, _ = p.Fprintf(w, "  %s\n", citation)
		}
	}
}

func writeSchedule(p *message.Printer, w io.Writer, schedule *amortization.Schedule, verdict compliance.Verdict) {
	lines := scheduleLines(schedule, verdict)
	_, _ = p.Fprintf(w, "Valores em R$, taxa por periodo %s\n", format.Percent(mathutil.FractionToPercent(schedule.PeriodRate)))
	_, _ = p.Fprintf(w, "Parcela | Saldo inicial | Juros | Amortizacao | Prestacao | Saldo final | Prestacao legal | Excesso\n")
	_, _ = p.Fprintf(w, "_______ | _____________ | _____ | ___________ | _________ | ___________ | _______________ | _______\n")
	for _, line := range lines {
		legalPayment, excess := "-", "-"
		if line.Legal != nil {
			legalPayment = format.NumericCurrency(line.Legal.Payment)
			excess = format.NumericCurrency(line.Legal.Excess)
		}
		marker := ""
		if line.Period <= schedule.Terms.PaidPeriods {
			marker = " (paga)"
		}
		_, _ = p.Fprintf(w, "%d%s | %s | %s | %s | %s | %s | %s | %s\n",
			line.Period, marker,
			format.NumericCurrency(line.Opening),
			format.NumericCurrency(line.Interest),
			format.NumericCurrency(line.Amortization),
			format.NumericCurrency(line.Payment),
			format.NumericCurrency(line.Closing),
			legalPayment, excess)
	}
	outstanding := "quitado"
	if balance := schedule.OutstandingBalance(); !mathutil.IsZero(balance) {
		outstanding = format.Currency(balance)
	}
	_, _ = p.Fprintf(w, "Total pago: %s | juros: %s | saldo devedor: %s",
		format.Currency(schedule.TotalPaid()),
		format.Currency(schedule.TotalInterest()),
		outstanding)
	if verdict.Lines != nil {
		_, _ = p.Fprintf(w, " | total legal: %s | excesso: %s", format.Currency(verdict.LegalTotalPaid), format.Currency(verdict.TotalExcess))
	}
	_, _ = fmt.Fprintln(w)
}

// scheduleLines prefers the verdict's lines, which carry the legal comparison.
func scheduleLines(schedule *amortization.Schedule, verdict compliance.Verdict) []financing.InstallmentLine {
	if verdict.Lines != nil {
		return verdict.Lines
	}
	return schedule.Lines
}

var csvHeader = []string{
	"section", "name", "period", "opening", "interest", "amortization",
	"payment", "closing", "legal_payment", "excess", "rate", "status",
}

// CsvFormat writes one row per installment line and per TCR in
// comma-separated value format.
func CsvFormat(w io.Writer, results *analysis.Results) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, contract := range results.Contracts {
		if err := writeScheduleRows(cw, "contract", contract.Name, contract.Schedule, contract.Verdict); err != nil {
			return err
		}
	}

	for _, tc := range results.TCR {
		row := []string{"tcr", tc.Name, "", "", "", "", "", "", "", "",
			tc.Result.EffectiveAnnualRate.StringFixed(constants.RatePlaces), string(tc.Verdict.Status)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	for _, ch := range results.Chains {
		for _, link := range ch.Report.Links {
			name := ch.Name + "#" + strconv.Itoa(link.Order)
			if err := writeScheduleRows(cw, "chain", name, link.Schedule, link.Verdict); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeScheduleRows(cw *csv.Writer, section, name string, schedule *amortization.Schedule, verdict compliance.Verdict) error {
	rate := verdict.EvaluatedRate.StringFixed(constants.RatePlaces)
	for _, line := range scheduleLines(schedule, verdict) {
		legalPayment, excess := "", ""
		if line.Legal != nil {
			legalPayment = amount(line.Legal.Payment)
			excess = amount(line.Legal.Excess)
		}
		row := []string{
			section, name, strconv.Itoa(line.Period),
			amount(line.Opening), amount(line.Interest), amount(line.Amortization),
			amount(line.Payment), amount(line.Closing),
			legalPayment, excess, rate, string(verdict.Status),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func amount(v decimal.Decimal) string {
	return v.StringFixed(constants.CurrencyPlaces)
}
