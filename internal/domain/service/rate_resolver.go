package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/bib/services/origination-service/internal/domain/policy"
	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// RateResolver – pure lookup against the lending policy
// ---------------------------------------------------------------------------

// RateResolver prices a product for a term.
type RateResolver struct {
	policy policy.LendingPolicy
}

// NewRateResolver returns a resolver over p. Rate tables are sorted on the
// way in, so callers may pass them in any order.
func NewRateResolver(p policy.LendingPolicy) *RateResolver {
	return &RateResolver{policy: p.Normalize()}
}

// Resolve returns the annual percentage rate for product and term. A term
// between buckets takes the nearest bucket (the shorter one on a tie); an
// empty table falls back to the policy default rate. It never fails.
func (r *RateResolver) Resolve(product vo.Product, termMonths int) decimal.Decimal {
	if b, ok := r.policy.For(product).Rates.Nearest(termMonths); ok {
		return b.Rate
	}
	return r.policy.DefaultRate
}

// ResolveFor is Resolve keyed by loan and vehicle type.
func (r *RateResolver) ResolveFor(loanType vo.LoanType, vehicle vo.VehicleType, termMonths int) decimal.Decimal {
	return r.Resolve(vo.ProductFor(loanType, vehicle), termMonths)
}

// AllowedTerms lists the terms product may be booked for.
func (r *RateResolver) AllowedTerms(product vo.Product) []int {
	return r.policy.For(product).Rates.Terms()
}

// Table returns the product's rate table, ascending by term.
func (r *RateResolver) Table(product vo.Product) policy.RateTable {
	out := make(policy.RateTable, len(r.policy.For(product).Rates))
	copy(out, r.policy.For(product).Rates)
	return out
}
