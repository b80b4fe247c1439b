package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

// ---------------------------------------------------------------------------
// PaymentSchedule – generated once at confirmation, read many times
// ---------------------------------------------------------------------------

// PaymentSchedule is the amortization plan of one confirmed loan. Row
// amounts never change after generation; statuses and the summary are
// derived for a given as-of date by AsOf.
type PaymentSchedule struct {
	ID             string
	LoanID         string
	CustomerID     string
	Currency       money.Currency
	Principal      decimal.Decimal
	AnnualRate     decimal.Decimal
	TaxRate        decimal.Decimal
	TermMonths     int
	MonthlyPayment decimal.Decimal
	StartDate      time.Time
	GeneratedAt    time.Time
	Payments       []Payment
	Summary        ScheduleSummary
}

// ScheduleSummary aggregates a schedule as of one date.
type ScheduleSummary struct {
	TotalPayments   int
	PaymentsMade    int
	PaymentsPending int
	PaymentsOverdue int

	TotalPrincipal  decimal.Decimal
	TotalInterest   decimal.Decimal
	TotalTax        decimal.Decimal
	TotalAmount     decimal.Decimal
	AmountPaid      decimal.Decimal
	AmountRemaining decimal.Decimal

	// NextPaymentDate is nil once every payment is settled.
	NextPaymentDate   *time.Time
	NextPaymentAmount decimal.Decimal
}

// ScheduleParams are the inputs of a new schedule.
type ScheduleParams struct {
	ID          string
	LoanID      string
	CustomerID  string
	Currency    money.Currency
	Principal   decimal.Decimal
	AnnualRate  decimal.Decimal
	TaxRate     decimal.Decimal
	TermMonths  int
	StartDate   time.Time
	GeneratedAt time.Time
}

// NewPaymentSchedule builds and verifies the rows of a new schedule.
func NewPaymentSchedule(p ScheduleParams) (PaymentSchedule, error) {
	if p.LoanID == "" {
		return PaymentSchedule{}, inputErr("loan_id", "is required")
	}
	if p.Currency.IsZero() {
		return PaymentSchedule{}, inputErr("currency", "is required")
	}
	rows, err := BuildSchedule(p.Principal, p.AnnualRate, p.TermMonths, p.StartDate, p.TaxRate)
	if err != nil {
		return PaymentSchedule{}, err
	}
	payment, err := ComputeMonthlyPayment(p.Principal, p.AnnualRate, p.TermMonths)
	if err != nil {
		return PaymentSchedule{}, err
	}
	s := PaymentSchedule{
		ID:             p.ID,
		LoanID:         p.LoanID,
		CustomerID:     p.CustomerID,
		Currency:       p.Currency,
		Principal:      p.Principal,
		AnnualRate:     p.AnnualRate,
		TaxRate:        p.TaxRate,
		TermMonths:     p.TermMonths,
		MonthlyPayment: payment,
		StartDate:      p.StartDate,
		GeneratedAt:    p.GeneratedAt.UTC(),
		Payments:       rows,
	}
	return s.AsOf(p.StartDate), nil
}

// AsOf returns a copy with every row's status and the summary derived for
// asOf. The receiver is not modified.
func (s PaymentSchedule) AsOf(asOf time.Time) PaymentSchedule {
	out := s
	out.Payments = make([]Payment, len(s.Payments))
	copy(out.Payments, s.Payments)
	for i := range out.Payments {
		p := &out.Payments[i]
		p.Status = DerivePaymentStatus(p.DueDate, asOf, p.Paid)
	}
	out.Summary = summarize(out.Payments)
	return out
}

// Settle returns a copy with payment number marked paid at paidAt.
// Settling an already paid row keeps the original settlement time.
func (s PaymentSchedule) Settle(number int, paidAt time.Time) (PaymentSchedule, error) {
	if number < 1 || number > len(s.Payments) {
		return PaymentSchedule{}, fmt.Errorf("%w: %d of %d", ErrPaymentNotFound, number, len(s.Payments))
	}
	out := s
	out.Payments = make([]Payment, len(s.Payments))
	copy(out.Payments, s.Payments)

	p := &out.Payments[number-1]
	if !p.Paid {
		at := paidAt.UTC()
		p.Paid = true
		p.PaidAt = &at
	}
	return out, nil
}

func summarize(rows []Payment) ScheduleSummary {
	sum := ScheduleSummary{
		TotalPayments:     len(rows),
		TotalPrincipal:    decimal.Zero,
		TotalInterest:     decimal.Zero,
		TotalTax:          decimal.Zero,
		TotalAmount:       decimal.Zero,
		AmountPaid:        decimal.Zero,
		AmountRemaining:   decimal.Zero,
		NextPaymentAmount: decimal.Zero,
	}
	for _, p := range rows {
		sum.TotalPrincipal = sum.TotalPrincipal.Add(p.Principal)
		sum.TotalInterest = sum.TotalInterest.Add(p.Interest)
		sum.TotalTax = sum.TotalTax.Add(p.Tax)
		sum.TotalAmount = sum.TotalAmount.Add(p.Total)

		switch p.Status {
		case vo.PaymentStatusPaid:
			sum.PaymentsMade++
			sum.AmountPaid = sum.AmountPaid.Add(p.Total)
			continue
		case vo.PaymentStatusOverdue:
			sum.PaymentsOverdue++
		default:
			sum.PaymentsPending++
		}
		sum.AmountRemaining = sum.AmountRemaining.Add(p.Total)
		if sum.NextPaymentDate == nil {
			due := p.DueDate
			sum.NextPaymentDate = &due
			sum.NextPaymentAmount = p.Total
		}
	}
	return sum
}

// DerivePaymentStatus is PAID when settled, OVERDUE when the due date is
// before asOf, PENDING otherwise. Dates are compared by UTC calendar day.
func DerivePaymentStatus(due, asOf time.Time, paid bool) vo.PaymentStatus {
	switch {
	case paid:
		return vo.PaymentStatusPaid
	case utcDay(due).Before(utcDay(asOf)):
		return vo.PaymentStatusOverdue
	default:
		return vo.PaymentStatusPending
	}
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
