// Package policy holds the lending policy: rate curves, principal bounds and
// the thresholds used by eligibility rules. Every product is an explicit
// field so adding one is a compile-time change, never a map lookup miss.
package policy

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
)

// RateBucket is the rate of one bookable term. A requested term is priced by
// the bucket nearest to it, ties going to the shorter term.
type RateBucket struct {
	MaxTerm int
	Rate    decimal.Decimal // annual percent, e.g. 14.50
}

// RateTable is an ordered list of buckets, ascending by MaxTerm.
type RateTable []RateBucket

// Terms returns the bucket terms in ascending order. They are also the
// terms a product may be booked for.
func (t RateTable) Terms() []int {
	terms := make([]int, len(t))
	for i, b := range t {
		terms[i] = b.MaxTerm
	}
	return terms
}

// Allows reports whether term is one of the table's terms.
func (t RateTable) Allows(term int) bool {
	for _, b := range t {
		if b.MaxTerm == term {
			return true
		}
	}
	return false
}

// Nearest returns the bucket whose term is closest to term. Ties go to the
// shorter bucket. ok is false only for an empty table.
func (t RateTable) Nearest(term int) (bucket RateBucket, ok bool) {
	best := -1
	for i, b := range t {
		if best < 0 || absInt(b.MaxTerm-term) < absInt(t[best].MaxTerm-term) {
			best = i
		}
	}
	if best < 0 {
		return RateBucket{}, false
	}
	return t[best], true
}

func (t RateTable) sorted() RateTable {
	out := make(RateTable, len(t))
	copy(out, t)
	sort.SliceStable(out, func(i, j int) bool { return out[i].MaxTerm < out[j].MaxTerm })
	return out
}

// Bounds is an inclusive decimal range.
type Bounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Contains reports whether Min <= d <= Max.
func (b Bounds) Contains(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(b.Min) && d.LessThanOrEqual(b.Max)
}

// ProductPolicy is the pricing and sizing of one product.
type ProductPolicy struct {
	Rates     RateTable
	Principal Bounds
}

// LendingPolicy is the complete, validated configuration of the engine.
type LendingPolicy struct {
	Personal ProductPolicy
	AutoNew  ProductPolicy
	AutoUsed ProductPolicy

	// DefaultRate applies when a product's rate table is empty.
	DefaultRate decimal.Decimal
	// TaxRate is the percent levied on the interest component (IVA).
	TaxRate  decimal.Decimal
	Currency string

	MaxPaymentRatio     decimal.Decimal
	WarnPaymentRatio    decimal.Decimal
	MinDownPaymentRatio decimal.Decimal

	MinAge              int
	MaxAgeAtMaturity    int
	MinEmploymentMonths int

	MinCreditScore  int
	WarnCreditScore int

	UsedVehicleWarnAge int
	UsedVehicleMaxAge  int
}

// For returns the product policy of p.
func (lp LendingPolicy) For(p vo.Product) ProductPolicy {
	switch p {
	case vo.ProductAutoNew:
		return lp.AutoNew
	case vo.ProductAutoUsed:
		return lp.AutoUsed
	default:
		return lp.Personal
	}
}

// Normalize returns a copy with every rate table sorted by term.
func (lp LendingPolicy) Normalize() LendingPolicy {
	lp.Personal.Rates = lp.Personal.Rates.sorted()
	lp.AutoNew.Rates = lp.AutoNew.Rates.sorted()
	lp.AutoUsed.Rates = lp.AutoUsed.Rates.sorted()
	return lp
}

// Validate checks the policy is internally consistent.
func (lp LendingPolicy) Validate() error {
	var errs []error
	for _, p := range vo.Products() {
		pp := lp.For(p)
		seen := make(map[int]bool, len(pp.Rates))
		for _, b := range pp.Rates {
			if b.MaxTerm <= 0 {
				errs = append(errs, fmt.Errorf("%s: term %d must be positive", p, b.MaxTerm))
			}
			if seen[b.MaxTerm] {
				errs = append(errs, fmt.Errorf("%s: duplicate term %d", p, b.MaxTerm))
			}
			seen[b.MaxTerm] = true
			if b.Rate.IsNegative() {
				errs = append(errs, fmt.Errorf("%s: rate for term %d is negative", p, b.MaxTerm))
			}
		}
		if !pp.Principal.Min.IsPositive() || pp.Principal.Max.LessThan(pp.Principal.Min) {
			errs = append(errs, fmt.Errorf("%s: principal bounds [%s, %s] are invalid", p, pp.Principal.Min, pp.Principal.Max))
		}
	}
	if lp.DefaultRate.IsNegative() {
		errs = append(errs, errors.New("default rate is negative"))
	}
	if lp.TaxRate.IsNegative() {
		errs = append(errs, errors.New("tax rate is negative"))
	}
	if !lp.MaxPaymentRatio.IsPositive() || lp.WarnPaymentRatio.GreaterThan(lp.MaxPaymentRatio) {
		errs = append(errs, fmt.Errorf("payment ratio band [%s, %s] is invalid", lp.WarnPaymentRatio, lp.MaxPaymentRatio))
	}
	if lp.MinDownPaymentRatio.IsNegative() || lp.MinDownPaymentRatio.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		errs = append(errs, fmt.Errorf("down payment ratio %s must be in [0, 1)", lp.MinDownPaymentRatio))
	}
	if lp.MinAge <= 0 || lp.MaxAgeAtMaturity <= lp.MinAge {
		errs = append(errs, fmt.Errorf("age limits [%d, %d] are invalid", lp.MinAge, lp.MaxAgeAtMaturity))
	}
	if lp.WarnCreditScore < lp.MinCreditScore {
		errs = append(errs, fmt.Errorf("credit score warning %d is below minimum %d", lp.WarnCreditScore, lp.MinCreditScore))
	}
	if lp.UsedVehicleMaxAge < lp.UsedVehicleWarnAge {
		errs = append(errs, fmt.Errorf("used vehicle max age %d is below warning age %d", lp.UsedVehicleMaxAge, lp.UsedVehicleWarnAge))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid lending policy: %w", errors.Join(errs...))
	}
	return nil
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
