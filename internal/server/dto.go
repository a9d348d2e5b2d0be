package server

import (
	"github.com/iwvelando/rural-credit/pkg/amortization"
	"github.com/iwvelando/rural-credit/pkg/chain"
	"github.com/iwvelando/rural-credit/pkg/compliance"
	"github.com/iwvelando/rural-credit/pkg/financing"
	"github.com/iwvelando/rural-credit/pkg/tcr"
	"github.com/shopspring/decimal"
)

// Amounts travel as JSON strings ("8884.88") so no precision is lost in
// either direction; numbers are accepted on input as well.

type termsRequest struct {
	Principal    decimal.Decimal `json:"principal"`
	AnnualRate   decimal.Decimal `json:"annual_rate"`
	RateBasis    string          `json:"rate_basis" validate:"omitempty,oneof=nominal effective"`
	Term         int             `json:"term"`
	System       string          `json:"system" validate:"required,oneof=price sac saf"`
	Granularity  string          `json:"granularity" validate:"omitempty,oneof=monthly annual"`
	PaidPeriods  int             `json:"paid_periods"`
	GracePeriods int             `json:"grace_periods"`
}

func (t termsRequest) toTerms() financing.Terms {
	basis := financing.RateBasis(t.RateBasis)
	if basis == "" {
		basis = financing.BasisNominal
	}
	granularity := financing.Granularity(t.Granularity)
	if granularity == "" {
		granularity = financing.Monthly
	}
	return financing.Terms{
		Principal:    t.Principal,
		AnnualRate:   t.AnnualRate,
		RateBasis:    basis,
		Term:         t.Term,
		System:       financing.System(t.System),
		Granularity:  granularity,
		PaidPeriods:  t.PaidPeriods,
		GracePeriods: t.GracePeriods,
	}
}

type complianceRequest struct {
	// Rate defaults to the terms' annual rate when omitted.
	Rate *decimal.Decimal `json:"rate"`
	Kind string           `json:"kind" validate:"omitempty,oneof=remuneratorios moratorios multa"`
	// Cap overrides the compiled-in cap of Kind.
	Cap   *decimal.Decimal `json:"cap"`
	Terms *termsRequest    `json:"terms" validate:"omitempty"`
}

type tcrRequest struct {
	Mode      string            `json:"mode" validate:"required,oneof=pre pos"`
	Principal decimal.Decimal   `json:"principal"`
	Series    []decimal.Decimal `json:"series"`
	Jm        decimal.Decimal   `json:"jm"`
	FII       decimal.Decimal   `json:"fii"`
	FP        decimal.Decimal   `json:"fp"`
	FA        decimal.Decimal   `json:"fa"`
}

func (r tcrRequest) toFactors() tcr.Factors {
	return tcr.Factors{
		Mode:      tcr.Mode(r.Mode),
		Principal: r.Principal,
		Series:    r.Series,
		Jm:        r.Jm,
		FII:       r.FII,
		FP:        r.FP,
		FA:        r.FA,
	}
}

type linkRequest struct {
	Order                   int             `json:"order"`
	Type                    string          `json:"type" validate:"required"`
	Terms                   termsRequest    `json:"terms"`
	PriorOutstandingBalance decimal.Decimal `json:"prior_outstanding_balance"`
	IncorporatedCharges     decimal.Decimal `json:"incorporated_charges"`
}

type chainRequest struct {
	Links []linkRequest `json:"links" validate:"required,min=1,dive"`
	// IncludeLines adds the per-line legal comparison of every link.
	IncludeLines bool `json:"include_lines"`
}

func (r chainRequest) toLinks() []chain.Link {
	links := make([]chain.Link, 0, len(r.Links))
	for _, link := range r.Links {
		links = append(links, chain.Link{
			Order:                   link.Order,
			Type:                    chain.LinkType(link.Type),
			Terms:                   link.Terms.toTerms(),
			PriorOutstandingBalance: link.PriorOutstandingBalance,
			IncorporatedCharges:     link.IncorporatedCharges,
		})
	}
	return links
}

type errorResponse struct {
	Error      string `json:"error"`
	Field      string `json:"field,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Order      int    `json:"order,omitempty"`
}

type legalDTO struct {
	Interest decimal.Decimal `json:"interest"`
	Payment  decimal.Decimal `json:"payment"`
	Closing  decimal.Decimal `json:"closing"`
	Excess   decimal.Decimal `json:"excess"`
	Clamped  bool            `json:"clamped,omitempty"`
}

type lineDTO struct {
	Period       int             `json:"period"`
	Opening      decimal.Decimal `json:"opening"`
	Interest     decimal.Decimal `json:"interest"`
	Amortization decimal.Decimal `json:"amortization"`
	Payment      decimal.Decimal `json:"payment"`
	Closing      decimal.Decimal `json:"closing"`
	Paid         bool            `json:"paid,omitempty"`
	Legal        *legalDTO       `json:"legal,omitempty"`
}

func toLineDTOs(lines []financing.InstallmentLine, paidPeriods int) []lineDTO {
	dtos := make([]lineDTO, 0, len(lines))
	for _, line := range lines {
		dto := lineDTO{
			Period:       line.Period,
			Opening:      line.Opening,
			Interest:     line.Interest,
			Amortization: line.Amortization,
			Payment:      line.Payment,
			Closing:      line.Closing,
			Paid:         line.Period <= paidPeriods,
		}
		if line.Legal != nil {
			dto.Legal = &legalDTO{
				Interest: line.Legal.Interest,
				Payment:  line.Legal.Payment,
				Closing:  line.Legal.Closing,
				Excess:   line.Legal.Excess,
				Clamped:  line.Legal.Clamped,
			}
		}
		dtos = append(dtos, dto)
	}
	return dtos
}

type scheduleResponse struct {
	System               string          `json:"system"`
	Term                 int             `json:"term"`
	RateBasis            string          `json:"rate_basis"`
	Granularity          string          `json:"granularity"`
	PeriodRate           decimal.Decimal `json:"period_rate"`
	PMT                  decimal.Decimal `json:"pmt"`
	ConstantAmortization decimal.Decimal `json:"constant_amortization"`
	Lines                []lineDTO       `json:"lines"`
	TotalInterest        decimal.Decimal `json:"total_interest"`
	TotalPaid            decimal.Decimal `json:"total_paid"`
	TotalAmortized       decimal.Decimal `json:"total_amortized"`
	OutstandingBalance   decimal.Decimal `json:"outstanding_balance"`
	PaidPeriods          int             `json:"paid_periods"`
	RemainingPeriods     int             `json:"remaining_periods"`
}

func toScheduleResponse(s *amortization.Schedule) scheduleResponse {
	return scheduleResponse{
		System:               string(s.Terms.System),
		Term:                 s.Terms.Term,
		RateBasis:            string(s.Terms.RateBasis),
		Granularity:          string(s.Terms.Granularity),
		PeriodRate:           s.PeriodRate,
		PMT:                  s.PMT,
		ConstantAmortization: s.ConstantAmortization,
		Lines:                toLineDTOs(s.Lines, s.Terms.PaidPeriods),
		TotalInterest:        s.TotalInterest(),
		TotalPaid:            s.TotalPaid(),
		TotalAmortized:       s.TotalAmortized(),
		OutstandingBalance:   s.OutstandingBalance(),
		PaidPeriods:          len(s.Paid()),
		RemainingPeriods:     len(s.Remaining()),
	}
}

type verdictResponse struct {
	Status         string           `json:"status"`
	EvaluatedRate  decimal.Decimal  `json:"evaluated_rate"`
	Cap            decimal.Decimal  `json:"cap"`
	Difference     decimal.Decimal  `json:"difference"`
	Citations      []string         `json:"citations"`
	Lines          []lineDTO        `json:"lines,omitempty"`
	TotalExcess    decimal.Decimal  `json:"total_excess"`
	LegalTotalPaid *decimal.Decimal `json:"legal_total_paid,omitempty"`
}

func toVerdictResponse(v compliance.Verdict, paidPeriods int, withLines bool) verdictResponse {
	resp := verdictResponse{
		Status:        string(v.Status),
		EvaluatedRate: v.EvaluatedRate,
		Cap:           v.Cap,
		Difference:    v.Difference,
		Citations:     v.Citations,
		TotalExcess:   v.TotalExcess,
	}
	if v.Lines != nil {
		legalTotal := v.LegalTotalPaid
		resp.LegalTotalPaid = &legalTotal
		if withLines {
			resp.Lines = toLineDTOs(v.Lines, paidPeriods)
		}
	}
	return resp
}

type tcrResponse struct {
	Mode                 string           `json:"mode"`
	FAM                  *decimal.Decimal `json:"fam,omitempty"`
	CorrectedPrincipal   *decimal.Decimal `json:"corrected_principal,omitempty"`
	Factor               decimal.Decimal  `json:"factor"`
	EffectiveAnnualRate  decimal.Decimal  `json:"effective_annual_rate"`
	EffectiveMonthlyRate decimal.Decimal  `json:"effective_monthly_rate"`
	Notice               string           `json:"notice,omitempty"`
	Verdict              verdictResponse  `json:"verdict"`
}

func toTCRResponse(r tcr.Result, v compliance.Verdict) tcrResponse {
	resp := tcrResponse{
		Mode:                 string(r.Mode),
		Factor:               r.Factor,
		EffectiveAnnualRate:  r.EffectiveAnnualRate,
		EffectiveMonthlyRate: r.EffectiveMonthlyRate,
		Verdict:              toVerdictResponse(v, 0, false),
	}
	if r.Mode == tcr.ModePos {
		fam := r.FAM
		resp.FAM = &fam
		if r.CorrectedPrincipal.IsPositive() {
			corrected := r.CorrectedPrincipal
			resp.CorrectedPrincipal = &corrected
		}
	}
	if r.Notice != nil {
		resp.Notice = r.Notice.Error()
	}
	return resp
}

type linkResponse struct {
	Order                  int             `json:"order"`
	Type                   string          `json:"type"`
	Principal              decimal.Decimal `json:"principal"`
	PrincipalDelta         decimal.Decimal `json:"principal_delta"`
	NewMoney               decimal.Decimal `json:"new_money"`
	IncorporatedCharges    decimal.Decimal `json:"incorporated_charges"`
	CapitalizationDetected bool            `json:"capitalization_detected"`
	PMT                    decimal.Decimal `json:"pmt"`
	TotalPaid              decimal.Decimal `json:"total_paid"`
	Verdict                verdictResponse `json:"verdict"`
	Alerts                 []string        `json:"alerts,omitempty"`
}

type chainResponse struct {
	Links                    []linkResponse  `json:"links"`
	OriginalPrincipal        decimal.Decimal `json:"original_principal"`
	CurrentPrincipal         decimal.Decimal `json:"current_principal"`
	GrowthPercent            decimal.Decimal `json:"growth_percent"`
	TotalIncorporatedCharges decimal.Decimal `json:"total_incorporated_charges"`
	CapitalizationDetected   bool            `json:"capitalization_detected"`
	MataMataDetected         bool            `json:"mata_mata_detected"`
	RateAboveLegalDetected   bool            `json:"rate_above_legal_detected"`
	Alerts                   []string        `json:"alerts"`
}

func toChainResponse(r *chain.Report, withLines bool) chainResponse {
	resp := chainResponse{
		Links:                    make([]linkResponse, 0, len(r.Links)),
		OriginalPrincipal:        r.OriginalPrincipal,
		CurrentPrincipal:         r.CurrentPrincipal,
		GrowthPercent:            r.GrowthPercent,
		TotalIncorporatedCharges: r.TotalIncorporatedCharges,
		CapitalizationDetected:   r.CapitalizationDetected,
		MataMataDetected:         r.MataMataDetected,
		RateAboveLegalDetected:   r.RateAboveLegalDetected,
		Alerts:                   r.Alerts,
	}
	if resp.Alerts == nil {
		resp.Alerts = []string{}
	}
	for _, link := range r.Links {
		resp.Links = append(resp.Links, linkResponse{
			Order:                  link.Order,
			Type:                   string(link.Type),
			Principal:              link.Principal,
			PrincipalDelta:         link.PrincipalDelta,
			NewMoney:               link.NewMoney,
			IncorporatedCharges:    link.IncorporatedCharges,
			CapitalizationDetected: link.CapitalizationDetected,
			PMT:                    link.Schedule.PMT,
			TotalPaid:              link.Schedule.TotalPaid(),
			Verdict:                toVerdictResponse(link.Verdict, link.Schedule.Terms.PaidPeriods, withLines),
			Alerts:                 link.Alerts,
		})
	}
	return resp
}
