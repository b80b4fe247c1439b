package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

// Payment is one row of an amortization schedule.
type Payment struct {
	Number           int
	DueDate          time.Time
	Principal        decimal.Decimal
	Interest         decimal.Decimal
	Tax              decimal.Decimal
	Total            decimal.Decimal
	RemainingBalance decimal.Decimal

	// Status is derived on read; see DerivePaymentStatus.
	Status vo.PaymentStatus
	// Paid is the settlement flag supplied by the core banking system.
	Paid   bool
	PaidAt *time.Time
}

// amortizer walks the schedule one period at a time. Interest is rounded
// to cents per period, the final period absorbs whatever balance remains.
type amortizer struct {
	balance decimal.Decimal
	rate    decimal.Decimal
	payment decimal.Decimal
	term    int
}

func (a *amortizer) step(period int) (principal, interest decimal.Decimal) {
	interest = money.RoundCents(a.balance.Mul(a.rate))
	if period == a.term {
		principal = a.balance
	} else {
		principal = a.payment.Sub(interest)
	}
	a.balance = a.balance.Sub(principal)
	return principal, interest
}

// BuildSchedule generates the full schedule for a fixed-rate loan.
//
// Each row's interest is round(balance × r, 2), tax is levied on interest
// only and the final row's principal is forced to the outstanding balance.
// A principal too small to repay some of it every month over termMonths is
// an InputError. The result is verified: the balance must fall strictly
// every row and close at exactly zero, and the principal components must
// sum to principal, otherwise ErrScheduleInvariant is returned. Every row
// starts PENDING.
func BuildSchedule(
	principal, annualRatePercent decimal.Decimal,
	termMonths int,
	start time.Time,
	taxRatePercent decimal.Decimal,
) ([]Payment, error) {
	if err := checkLoanTerms(principal, annualRatePercent, termMonths); err != nil {
		return nil, err
	}
	if taxRatePercent.IsNegative() {
		return nil, inputErr("tax_rate", "must not be negative, got %s", taxRatePercent)
	}

	r := MonthlyRate(annualRatePercent)
	payment, err := monthlyPayment(principal, r, termMonths)
	if err != nil {
		return nil, err
	}

	if err := checkAmortizable(principal, r, payment, termMonths); err != nil {
		return nil, err
	}

	a := amortizer{balance: principal, rate: r, payment: payment, term: termMonths}
	rows := make([]Payment, 0, termMonths)

	for n := 1; n <= termMonths; n++ {
		p, i := a.step(n)
		tax := money.RoundCents(i.Mul(taxRatePercent).Div(hundred))

		rows = append(rows, Payment{
			Number:           n,
			DueDate:          AddMonthsClamped(start, n),
			Principal:        p,
			Interest:         i,
			Tax:              tax,
			Total:            p.Add(i).Add(tax),
			RemainingBalance: a.balance,
			Status:           vo.PaymentStatusPending,
		})
	}

	if err := verifySchedule(principal, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// checkAmortizable rejects a principal whose rounded payment cannot carry
// it over n months: every row but the last must repay a positive amount
// and leave a positive balance.
func checkAmortizable(principal, r, payment decimal.Decimal, n int) error {
	a := amortizer{balance: principal, rate: r, payment: payment, term: n}
	for period := 1; period < n; period++ {
		p, _ := a.step(period)
		if !p.IsPositive() || !a.balance.IsPositive() {
			return inputErr("principal", "%s is too small to amortize over %d months", principal, n)
		}
	}
	return nil
}

// verifySchedule checks the reconciliation of built rows.
func verifySchedule(principal decimal.Decimal, rows []Payment) error {
	prev := principal
	sum := decimal.Zero
	for _, row := range rows {
		if !row.RemainingBalance.LessThan(prev) {
			return fmt.Errorf("%w: balance %s after payment %d does not decrease", ErrScheduleInvariant, row.RemainingBalance, row.Number)
		}
		if row.RemainingBalance.IsNegative() {
			return fmt.Errorf("%w: balance %s after payment %d", ErrScheduleInvariant, row.RemainingBalance, row.Number)
		}
		prev = row.RemainingBalance
		sum = sum.Add(row.Principal)
	}
	if !prev.IsZero() {
		return fmt.Errorf("%w: closing balance %s", ErrScheduleInvariant, prev)
	}
	if !sum.Equal(principal) {
		return fmt.Errorf("%w: principal sum %s != %s", ErrScheduleInvariant, sum, principal)
	}
	return nil
}

// AmortizationTotals returns Σ(principal + interest) and Σ interest of the
// schedule BuildSchedule would produce, without materialising rows.
func AmortizationTotals(principal, annualRatePercent decimal.Decimal, termMonths int) (total, interest decimal.Decimal, err error) {
	if err := checkLoanTerms(principal, annualRatePercent, termMonths); err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	r := MonthlyRate(annualRatePercent)
	payment, err := monthlyPayment(principal, r, termMonths)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	if err := checkAmortizable(principal, r, payment, termMonths); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	a := amortizer{balance: principal, rate: r, payment: payment, term: termMonths}
	interest = decimal.Zero
	for n := 1; n <= termMonths; n++ {
		_, i := a.step(n)
		interest = interest.Add(i)
	}
	if !a.balance.IsZero() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: closing balance %s", ErrScheduleInvariant, a.balance)
	}
	return principal.Add(interest), interest, nil
}

// AddMonthsClamped returns t moved n calendar months forward, clamping the
// day to the end of the target month: Jan 31 + 1 month is Feb 28 (or 29).
func AddMonthsClamped(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := first.AddDate(0, 1, -1).Day()
	if d > last {
		d = last
	}
	return first.AddDate(0, 0, d-1)
}
