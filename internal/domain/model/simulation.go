package model

import (
	"github.com/shopspring/decimal"

	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

// SimulationResult is a priced preview of a loan. It has no identity.
type SimulationResult struct {
	Product        vo.Product
	Currency       money.Currency
	Principal      decimal.Decimal
	TermMonths     int
	AnnualRate     decimal.Decimal
	MonthlyPayment decimal.Decimal
	// TotalPayment equals the schedule's Σ(principal + interest), so the
	// last-row rounding adjustment is included.
	TotalPayment  decimal.Decimal
	TotalInterest decimal.Decimal
}
