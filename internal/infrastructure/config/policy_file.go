package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/bibbank/bib/services/origination-service/internal/domain/policy"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

// PolicyFile is the TOML form of a lending policy. Every field is optional;
// absent fields keep the built-in value. Decimal values are quoted strings
// so no rate or amount passes through a float.
type PolicyFile struct {
	Currency    *string `toml:"currency"`
	DefaultRate *string `toml:"default_rate"`
	TaxRate     *string `toml:"tax_rate"`

	MaxPaymentRatio     *string `toml:"max_payment_ratio"`
	WarnPaymentRatio    *string `toml:"warn_payment_ratio"`
	MinDownPaymentRatio *string `toml:"min_down_payment_ratio"`

	MinAge              *int `toml:"min_age"`
	MaxAgeAtMaturity    *int `toml:"max_age_at_maturity"`
	MinEmploymentMonths *int `toml:"min_employment_months"`
	MinCreditScore      *int `toml:"min_credit_score"`
	WarnCreditScore     *int `toml:"warn_credit_score"`
	UsedVehicleWarnAge  *int `toml:"used_vehicle_warn_age"`
	UsedVehicleMaxAge   *int `toml:"used_vehicle_max_age"`

	Personal *ProductFile `toml:"personal"`
	AutoNew  *ProductFile `toml:"auto_new"`
	AutoUsed *ProductFile `toml:"auto_used"`
}

// ProductFile overrides one product. A non-empty Rates list replaces the
// whole table.
type ProductFile struct {
	MinPrincipal *string    `toml:"min_principal"`
	MaxPrincipal *string    `toml:"max_principal"`
	Rates        []RateFile `toml:"rates"`
}

type RateFile struct {
	Term int    `toml:"term"`
	Rate string `toml:"rate"`
}

// LoadPolicy returns policy.Default() overlaid with the file at path. An
// empty path yields the defaults. Unknown keys are rejected so a typo never
// silently keeps a default.
func LoadPolicy(path string) (policy.LendingPolicy, error) {
	p := policy.Default()
	if path == "" {
		return p, nil
	}

	var f PolicyFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return policy.LendingPolicy{}, fmt.Errorf("parse policy file: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return policy.LendingPolicy{}, fmt.Errorf("parse policy file: unknown keys %v", undecoded)
	}

	p, err = f.apply(p)
	if err != nil {
		return policy.LendingPolicy{}, fmt.Errorf("apply policy file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return policy.LendingPolicy{}, err
	}
	return p.Normalize(), nil
}

func (f PolicyFile) apply(p policy.LendingPolicy) (policy.LendingPolicy, error) {
	if f.Currency != nil {
		c, err := money.NewCurrency(*f.Currency)
		if err != nil {
			return p, fmt.Errorf("currency: %w", err)
		}
		p.Currency = c.Code()
	}
	for _, o := range []struct {
		name string
		src  *string
		dst  *decimal.Decimal
	}{
		{"default_rate", f.DefaultRate, &p.DefaultRate},
		{"tax_rate", f.TaxRate, &p.TaxRate},
		{"max_payment_ratio", f.MaxPaymentRatio, &p.MaxPaymentRatio},
		{"warn_payment_ratio", f.WarnPaymentRatio, &p.WarnPaymentRatio},
		{"min_down_payment_ratio", f.MinDownPaymentRatio, &p.MinDownPaymentRatio},
	} {
		if err := setDecimal(o.name, o.src, o.dst); err != nil {
			return p, err
		}
	}
	for _, o := range []struct {
		src *int
		dst *int
	}{
		{f.MinAge, &p.MinAge},
		{f.MaxAgeAtMaturity, &p.MaxAgeAtMaturity},
		{f.MinEmploymentMonths, &p.MinEmploymentMonths},
		{f.MinCreditScore, &p.MinCreditScore},
		{f.WarnCreditScore, &p.WarnCreditScore},
		{f.UsedVehicleWarnAge, &p.UsedVehicleWarnAge},
		{f.UsedVehicleMaxAge, &p.UsedVehicleMaxAge},
	} {
		if o.src != nil {
			*o.dst = *o.src
		}
	}

	var err error
	if p.Personal, err = f.Personal.apply("personal", p.Personal); err != nil {
		return p, err
	}
	if p.AutoNew, err = f.AutoNew.apply("auto_new", p.AutoNew); err != nil {
		return p, err
	}
	if p.AutoUsed, err = f.AutoUsed.apply("auto_used", p.AutoUsed); err != nil {
		return p, err
	}
	return p, nil
}

func (f *ProductFile) apply(name string, pp policy.ProductPolicy) (policy.ProductPolicy, error) {
	if f == nil {
		return pp, nil
	}
	if err := setDecimal(name+".min_principal", f.MinPrincipal, &pp.Principal.Min); err != nil {
		return pp, err
	}
	if err := setDecimal(name+".max_principal", f.MaxPrincipal, &pp.Principal.Max); err != nil {
		return pp, err
	}
	if len(f.Rates) == 0 {
		return pp, nil
	}
	table := make(policy.RateTable, 0, len(f.Rates))
	for _, r := range f.Rates {
		rate, err := decimal.NewFromString(r.Rate)
		if err != nil {
			return pp, fmt.Errorf("%s.rates term %d: rate %q: %w", name, r.Term, r.Rate, err)
		}
		table = append(table, policy.RateBucket{MaxTerm: r.Term, Rate: rate})
	}
	pp.Rates = table
	return pp, nil
}

func setDecimal(name string, src *string, dst *decimal.Decimal) error {
	if src == nil {
		return nil
	}
	d, err := decimal.NewFromString(*src)
	if err != nil {
		return fmt.Errorf("%s: %q: %w", name, *src, err)
	}
	*dst = d
	return nil
}
