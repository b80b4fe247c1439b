package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// LoanRequest is the wire form of an application. Amount is used for
// PERSONAL loans; AUTO loans send VehiclePrice and DownPayment, or a bare
// Amount when only simulating.
type LoanRequest struct {
	LoanType         string          `json:"loan_type"`
	Amount           decimal.Decimal `json:"amount"`
	TermMonths       int             `json:"term_months"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	ApplicantAge     int             `json:"applicant_age"`
	EmploymentMonths int             `json:"employment_months"`
	CreditScore      *int            `json:"credit_score,omitempty"`
	VehicleType      string          `json:"vehicle_type,omitempty"`
	VehiclePrice     decimal.Decimal `json:"vehicle_price"`
	DownPayment      decimal.Decimal `json:"down_payment"`
	VehicleYear      int             `json:"vehicle_year,omitempty"`
	CustomerID       string          `json:"customer_id,omitempty"`
	Purpose          string          `json:"purpose,omitempty"`
	Currency         string          `json:"currency,omitempty"`
}

// ConfirmRequest turns an eligible application into a persisted schedule.
type ConfirmRequest struct {
	Request LoanRequest `json:"request"`
	// LoanID is assigned by the booking system; generated when empty.
	LoanID string `json:"loan_id,omitempty"`
	// AnnualRate overrides the resolved rate, e.g. a negotiated rate.
	AnnualRate *decimal.Decimal `json:"annual_rate,omitempty"`
	// StartDate is YYYY-MM-DD; today when empty.
	StartDate      string `json:"start_date,omitempty"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// GetScheduleRequest reads a schedule as of a date (YYYY-MM-DD, today when
// empty).
type GetScheduleRequest struct {
	LoanID string `json:"loan_id"`
	AsOf   string `json:"as_of,omitempty"`
}

// SettlementRequest is a settlement notice from the core banking system.
type SettlementRequest struct {
	LoanID        string    `json:"loan_id"`
	PaymentNumber int       `json:"payment_number"`
	PaidAt        time.Time `json:"paid_at"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// SimulationResponse is the wire form of a simulation.
type SimulationResponse struct {
	Product        string          `json:"product"`
	Currency       string          `json:"currency"`
	Principal      decimal.Decimal `json:"principal"`
	TermMonths     int             `json:"term_months"`
	AnnualRate     decimal.Decimal `json:"annual_rate"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalPayment   decimal.Decimal `json:"total_payment"`
	TotalInterest  decimal.Decimal `json:"total_interest"`
}

// IssueResponse is one failed or flagged eligibility rule.
type IssueResponse struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResponse is the wire form of a validation result.
type ValidationResponse struct {
	Eligible       bool            `json:"eligible"`
	Errors         []IssueResponse `json:"errors"`
	Warnings       []IssueResponse `json:"warnings"`
	AnnualRate     decimal.Decimal `json:"annual_rate"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	PaymentRatio   decimal.Decimal `json:"payment_ratio"`
}

// PaymentResponse is one schedule row.
type PaymentResponse struct {
	PaymentNumber    int             `json:"payment_number"`
	DueDate          string          `json:"due_date"`
	Principal        decimal.Decimal `json:"principal"`
	Interest         decimal.Decimal `json:"interest"`
	Tax              decimal.Decimal `json:"tax"`
	Total            decimal.Decimal `json:"total"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Status           string          `json:"status"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
}

// SummaryResponse aggregates a schedule as of a date.
type SummaryResponse struct {
	TotalPayments     int             `json:"total_payments"`
	PaymentsMade      int             `json:"payments_made"`
	PaymentsPending   int             `json:"payments_pending"`
	PaymentsOverdue   int             `json:"payments_overdue"`
	TotalPrincipal    decimal.Decimal `json:"total_principal"`
	TotalInterest     decimal.Decimal `json:"total_interest"`
	TotalTax          decimal.Decimal `json:"total_tax"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	AmountPaid        decimal.Decimal `json:"amount_paid"`
	AmountRemaining   decimal.Decimal `json:"amount_remaining"`
	NextPaymentDate   string          `json:"next_payment_date,omitempty"`
	NextPaymentAmount decimal.Decimal `json:"next_payment_amount"`
}

// ScheduleResponse is the wire form of a payment schedule.
type ScheduleResponse struct {
	ScheduleID     string            `json:"schedule_id"`
	LoanID         string            `json:"loan_id"`
	CustomerID     string            `json:"customer_id,omitempty"`
	Currency       string            `json:"currency"`
	Principal      decimal.Decimal   `json:"principal"`
	AnnualRate     decimal.Decimal   `json:"annual_rate"`
	TaxRate        decimal.Decimal   `json:"tax_rate"`
	TermMonths     int               `json:"term_months"`
	MonthlyPayment decimal.Decimal   `json:"monthly_payment"`
	StartDate      string            `json:"start_date"`
	GeneratedAt    time.Time         `json:"generated_at"`
	AsOf           string            `json:"as_of"`
	Payments       []PaymentResponse `json:"payments"`
	Summary        SummaryResponse   `json:"summary"`
}

// DateLayout is the wire layout of calendar dates.
const DateLayout = "2006-01-02"
