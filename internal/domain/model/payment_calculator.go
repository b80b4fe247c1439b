package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

// MaxTermMonths bounds the term accepted by the calculator (50 years).
const MaxTermMonths = 600

const (
	// rateScale is the number of decimal places kept for the monthly rate.
	rateScale int32 = 20
	// divisionScale is the precision of the annuity division.
	divisionScale int32 = 16
)

var (
	hundred     = decimal.NewFromInt(100)
	monthsInYr  = decimal.NewFromInt(12)
	ratePerYear = hundred.Mul(monthsInYr)
)

// MonthlyRate converts an annual percentage into a monthly fraction:
// 14.5 becomes 0.0120833….
func MonthlyRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.DivRound(ratePerYear, rateScale)
}

// ComputeMonthlyPayment returns the constant annuity payment
//
//	payment = P·r·(1+r)^n / ((1+r)^n − 1)
//
// rounded half-up to cents. A zero rate divides the principal evenly.
// Intermediate values are never rounded to cents.
func ComputeMonthlyPayment(principal, annualRatePercent decimal.Decimal, termMonths int) (decimal.Decimal, error) {
	if err := checkLoanTerms(principal, annualRatePercent, termMonths); err != nil {
		return decimal.Zero, err
	}
	return monthlyPayment(principal, MonthlyRate(annualRatePercent), termMonths)
}

func monthlyPayment(principal, r decimal.Decimal, n int) (decimal.Decimal, error) {
	if r.IsZero() {
		return money.RoundCents(principal.DivRound(decimal.NewFromInt(int64(n)), divisionScale)), nil
	}
	one := decimal.NewFromInt(1)
	factor, err := one.Add(r).PowInt32(int32(n))
	if err != nil {
		return decimal.Zero, fmt.Errorf("compound factor: %w", err)
	}
	payment := principal.Mul(r).Mul(factor).DivRound(factor.Sub(one), divisionScale)
	return money.RoundCents(payment), nil
}

func checkLoanTerms(principal, annualRatePercent decimal.Decimal, termMonths int) error {
	if !principal.IsPositive() {
		return inputErr("principal", "must be positive, got %s", principal)
	}
	if termMonths <= 0 || termMonths > MaxTermMonths {
		return inputErr("term_months", "must be between 1 and %d, got %d", MaxTermMonths, termMonths)
	}
	if annualRatePercent.IsNegative() {
		return inputErr("annual_rate", "must not be negative, got %s", annualRatePercent)
	}
	return nil
}
