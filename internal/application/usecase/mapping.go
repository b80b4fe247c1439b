package usecase

import (
	"strings"
	"time"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}

func toLoanRequest(r dto.LoanRequest, defaultCurrency money.Currency) (model.LoanRequest, error) {
	loanType, err := vo.NewLoanType(r.LoanType)
	if err != nil {
		return model.LoanRequest{}, model.NewInputError("loan_type", "must be PERSONAL or AUTO, got %q", r.LoanType)
	}
	vehicle, err := vo.NewVehicleType(r.VehicleType)
	if err != nil {
		return model.LoanRequest{}, model.NewInputError("vehicle_type", "must be NEW or USED, got %q", r.VehicleType)
	}
	currency := defaultCurrency
	if c := strings.TrimSpace(r.Currency); c != "" {
		currency, err = money.NewCurrency(strings.ToUpper(c))
		if err != nil {
			return model.LoanRequest{}, model.NewInputError("currency", "%v", err)
		}
	}

	return model.LoanRequest{
		LoanType:         loanType,
		Principal:        r.Amount,
		TermMonths:       r.TermMonths,
		MonthlyIncome:    r.MonthlyIncome,
		ApplicantAge:     r.ApplicantAge,
		EmploymentMonths: r.EmploymentMonths,
		CreditScore:      r.CreditScore,
		VehicleType:      vehicle,
		VehiclePrice:     r.VehiclePrice,
		DownPayment:      r.DownPayment,
		VehicleYear:      r.VehicleYear,
		CustomerID:       r.CustomerID,
		Purpose:          r.Purpose,
		Currency:         currency,
	}, nil
}

// parseDate accepts YYYY-MM-DD or RFC 3339 and returns midnight UTC of
// that calendar day. Empty input yields fallback.
func parseDate(field, s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return truncateDay(fallback), nil
	}
	if t, err := time.Parse(dto.DateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, model.NewInputError(field, "must be YYYY-MM-DD, got %q", s)
	}
	return truncateDay(t), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func toSimulationResponse(r model.SimulationResult) dto.SimulationResponse {
	return dto.SimulationResponse{
		Product:        r.Product.String(),
		Currency:       r.Currency.Code(),
		Principal:      r.Principal,
		TermMonths:     r.TermMonths,
		AnnualRate:     r.AnnualRate,
		MonthlyPayment: r.MonthlyPayment,
		TotalPayment:   r.TotalPayment,
		TotalInterest:  r.TotalInterest,
	}
}

func toIssues(in []model.Issue) []dto.IssueResponse {
	out := make([]dto.IssueResponse, 0, len(in))
	for _, i := range in {
		out = append(out, dto.IssueResponse{Code: i.Code, Field: i.Field, Message: i.Message})
	}
	return out
}

func issueCodes(in []model.Issue) []string {
	out := make([]string, 0, len(in))
	for _, i := range in {
		out = append(out, i.Code)
	}
	return out
}

func toValidationResponse(r model.ValidationResult) dto.ValidationResponse {
	return dto.ValidationResponse{
		Eligible:       r.Eligible,
		Errors:         toIssues(r.Errors),
		Warnings:       toIssues(r.Warnings),
		AnnualRate:     r.AnnualRate,
		MonthlyPayment: r.MonthlyPayment,
		PaymentRatio:   r.PaymentRatio,
	}
}

// ToScheduleResponse maps a schedule view into its wire form.
func ToScheduleResponse(s model.PaymentSchedule, asOf time.Time) dto.ScheduleResponse {
	payments := make([]dto.PaymentResponse, 0, len(s.Payments))
	for _, p := range s.Payments {
		payments = append(payments, dto.PaymentResponse{
			PaymentNumber:    p.Number,
			DueDate:          p.DueDate.Format(dto.DateLayout),
			Principal:        p.Principal,
			Interest:         p.Interest,
			Tax:              p.Tax,
			Total:            p.Total,
			RemainingBalance: p.RemainingBalance,
			Status:           p.Status.String(),
			PaidAt:           p.PaidAt,
		})
	}

	sum := s.Summary
	next := ""
	if sum.NextPaymentDate != nil {
		next = sum.NextPaymentDate.Format(dto.DateLayout)
	}

	return dto.ScheduleResponse{
		ScheduleID:     s.ID,
		LoanID:         s.LoanID,
		CustomerID:     s.CustomerID,
		Currency:       s.Currency.Code(),
		Principal:      s.Principal,
		AnnualRate:     s.AnnualRate,
		TaxRate:        s.TaxRate,
		TermMonths:     s.TermMonths,
		MonthlyPayment: s.MonthlyPayment,
		StartDate:      s.StartDate.Format(dto.DateLayout),
		GeneratedAt:    s.GeneratedAt,
		AsOf:           asOf.Format(dto.DateLayout),
		Payments:       payments,
		Summary: dto.SummaryResponse{
			TotalPayments:     sum.TotalPayments,
			PaymentsMade:      sum.PaymentsMade,
			PaymentsPending:   sum.PaymentsPending,
			PaymentsOverdue:   sum.PaymentsOverdue,
			TotalPrincipal:    sum.TotalPrincipal,
			TotalInterest:     sum.TotalInterest,
			TotalTax:          sum.TotalTax,
			TotalAmount:       sum.TotalAmount,
			AmountPaid:        sum.AmountPaid,
			AmountRemaining:   sum.AmountRemaining,
			NextPaymentDate:   next,
			NextPaymentAmount: sum.NextPaymentAmount,
		},
	}
}
