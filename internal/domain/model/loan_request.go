package model

import (
	"strings"

	"github.com/shopspring/decimal"

	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

// LoanRequest is everything branch staff capture for one application.
// For AUTO loans the principal is the financed amount, derived from
// VehiclePrice and DownPayment; Principal is ignored.
type LoanRequest struct {
	LoanType   vo.LoanType
	Principal  decimal.Decimal
	TermMonths int

	MonthlyIncome    decimal.Decimal
	ApplicantAge     int
	EmploymentMonths int
	// CreditScore is nil when no bureau score is on file.
	CreditScore *int

	VehicleType  vo.VehicleType
	VehiclePrice decimal.Decimal
	DownPayment  decimal.Decimal
	VehicleYear  int

	CustomerID string
	Purpose    string
	Currency   money.Currency
}

// Product returns the priced product the request falls under.
func (r LoanRequest) Product() vo.Product {
	return vo.ProductFor(r.LoanType, r.VehicleType)
}

// FinancedAmount is the principal that will be amortized. An AUTO request
// without a vehicle price is a plain amount, as quick simulations send.
func (r LoanRequest) FinancedAmount() decimal.Decimal {
	if r.LoanType.IsAuto() && !r.VehiclePrice.IsZero() {
		return r.VehiclePrice.Sub(r.DownPayment)
	}
	return r.Principal
}

// CheckShape rejects requests that cannot be evaluated at all. Business
// rules (bounds, affordability, age) are eligibility, not shape.
func (r LoanRequest) CheckShape() error {
	if r.LoanType.IsZero() {
		return inputErr("loan_type", "is required")
	}
	if r.TermMonths <= 0 || r.TermMonths > MaxTermMonths {
		return inputErr("term_months", "must be between 1 and %d, got %d", MaxTermMonths, r.TermMonths)
	}
	if r.LoanType.IsAuto() {
		if r.VehicleType.IsZero() {
			return inputErr("vehicle_type", "is required for AUTO loans")
		}
		if !r.VehiclePrice.IsPositive() {
			return inputErr("vehicle_price", "must be positive")
		}
		if r.DownPayment.IsNegative() {
			return inputErr("down_payment", "must not be negative")
		}
	} else if !r.Principal.IsPositive() {
		return inputErr("principal", "must be positive")
	}
	if r.MonthlyIncome.IsNegative() {
		return inputErr("monthly_income", "must not be negative")
	}
	if r.ApplicantAge < 0 {
		return inputErr("applicant_age", "must not be negative")
	}
	if r.EmploymentMonths < 0 {
		return inputErr("employment_months", "must not be negative")
	}
	if r.CreditScore != nil && (*r.CreditScore < 300 || *r.CreditScore > 850) {
		return inputErr("credit_score", "must be between 300 and 850, got %d", *r.CreditScore)
	}
	if len(strings.TrimSpace(r.Purpose)) > 500 {
		return inputErr("purpose", "must be at most 500 characters")
	}
	return nil
}
