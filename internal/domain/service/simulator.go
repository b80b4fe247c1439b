package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/policy"
	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

// Simulator produces the quick preview shown while staff fill in a request.
// It prices the loan without building the row-by-row schedule.
type Simulator struct {
	policy policy.LendingPolicy
	rates  *RateResolver
}

// NewSimulator returns a Simulator sharing the resolver's policy.
func NewSimulator(p policy.LendingPolicy, rates *RateResolver) *Simulator {
	return &Simulator{policy: p, rates: rates}
}

// Simulate prices req. The amount is req.Principal, or vehicle price minus
// down payment for AUTO requests that carry a price. The requested term is
// kept; only the rate lookup snaps to the nearest bucket. Amounts outside
// the product's bounds are rejected as input errors.
func (s *Simulator) Simulate(req model.LoanRequest) (model.SimulationResult, error) {
	if req.LoanType.IsZero() {
		return model.SimulationResult{}, model.NewInputError("loan_type", "is required")
	}
	if req.TermMonths <= 0 || req.TermMonths > model.MaxTermMonths {
		return model.SimulationResult{}, model.NewInputError("term_months",
			"must be between 1 and %d, got %d", model.MaxTermMonths, req.TermMonths)
	}
	product := req.Product()
	amount := req.FinancedAmount()
	if err := CheckPrincipal(s.policy, product, amount); err != nil {
		return model.SimulationResult{}, err
	}

	rate := s.rates.Resolve(product, req.TermMonths)
	payment, err := model.ComputeMonthlyPayment(amount, rate, req.TermMonths)
	if err != nil {
		return model.SimulationResult{}, err
	}
	total, interest, err := model.AmortizationTotals(amount, rate, req.TermMonths)
	if err != nil {
		return model.SimulationResult{}, fmt.Errorf("simulate %s: %w", product, err)
	}

	currency := req.Currency
	if currency.IsZero() {
		currency = defaultCurrency(s.policy)
	}

	return model.SimulationResult{
		Product:        product,
		Currency:       currency,
		Principal:      amount,
		TermMonths:     req.TermMonths,
		AnnualRate:     rate,
		MonthlyPayment: payment,
		TotalPayment:   total,
		TotalInterest:  interest,
	}, nil
}

// CheckPrincipal rejects an amount outside the product's principal bounds.
func CheckPrincipal(p policy.LendingPolicy, product vo.Product, amount decimal.Decimal) error {
	field := "principal"
	if product.IsAuto() {
		field = "financed_amount"
	}
	if !amount.IsPositive() {
		return model.NewInputError(field, "must be positive, got %s", amount)
	}
	b := p.For(product).Principal
	if !b.Contains(amount) {
		return model.NewInputError(field, "%s is outside [%s, %s] for %s",
			amount.StringFixed(2), b.Min.StringFixed(2), b.Max.StringFixed(2), product)
	}
	return nil
}

func defaultCurrency(p policy.LendingPolicy) money.Currency {
	if c, err := money.NewCurrency(p.Currency); err == nil {
		return c
	}
	return money.MXN
}
