package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/bib/services/origination-service/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// Event type names published on the origination topic.
const (
	TypeScheduleGenerated    = "origination.schedule.generated"
	TypeEligibilityEvaluated = "origination.eligibility.evaluated"
	TypePaymentSettled       = "origination.payment.settled"
)

// ScheduleGenerated is raised when a confirmed loan receives its schedule.
type ScheduleGenerated struct {
	events.BaseEvent
	LoanID         string          `json:"loan_id"`
	CustomerID     string          `json:"customer_id,omitempty"`
	Currency       string          `json:"currency"`
	Principal      decimal.Decimal `json:"principal"`
	AnnualRate     decimal.Decimal `json:"annual_rate"`
	TermMonths     int             `json:"term_months"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	FirstDueDate   time.Time       `json:"first_due_date"`
}

func NewScheduleGenerated(
	scheduleID, loanID, customerID, currency string,
	principal, annualRate decimal.Decimal, termMonths int,
	monthlyPayment, totalAmount decimal.Decimal,
	firstDue, at time.Time,
) ScheduleGenerated {
	return ScheduleGenerated{
		BaseEvent:      events.NewBaseEvent(TypeScheduleGenerated, scheduleID, "PaymentSchedule", at),
		LoanID:         loanID,
		CustomerID:     customerID,
		Currency:       currency,
		Principal:      principal,
		AnnualRate:     annualRate,
		TermMonths:     termMonths,
		MonthlyPayment: monthlyPayment,
		TotalAmount:    totalAmount,
		FirstDueDate:   firstDue,
	}
}

// EligibilityEvaluated is raised after every validation, eligible or not.
type EligibilityEvaluated struct {
	events.BaseEvent
	CustomerID   string          `json:"customer_id,omitempty"`
	Product      string          `json:"product"`
	Eligible     bool            `json:"eligible"`
	ErrorCodes   []string        `json:"error_codes"`
	WarningCodes []string        `json:"warning_codes"`
	PaymentRatio decimal.Decimal `json:"payment_ratio"`
}

func NewEligibilityEvaluated(
	evaluationID, customerID, product string,
	eligible bool, errorCodes, warningCodes []string,
	paymentRatio decimal.Decimal, at time.Time,
) EligibilityEvaluated {
	return EligibilityEvaluated{
		BaseEvent:    events.NewBaseEvent(TypeEligibilityEvaluated, evaluationID, "LoanRequest", at),
		CustomerID:   customerID,
		Product:      product,
		Eligible:     eligible,
		ErrorCodes:   errorCodes,
		WarningCodes: warningCodes,
		PaymentRatio: paymentRatio,
	}
}

// PaymentSettled is raised when a settlement from the core banking system
// is applied to a schedule row.
type PaymentSettled struct {
	events.BaseEvent
	LoanID        string    `json:"loan_id"`
	PaymentNumber int       `json:"payment_number"`
	PaidAt        time.Time `json:"paid_at"`
}

func NewPaymentSettled(scheduleID, loanID string, number int, paidAt, at time.Time) PaymentSettled {
	return PaymentSettled{
		BaseEvent:     events.NewBaseEvent(TypePaymentSettled, scheduleID, "PaymentSchedule", at),
		LoanID:        loanID,
		PaymentNumber: number,
		PaidAt:        paidAt.UTC(),
	}
}
