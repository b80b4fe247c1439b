package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/policy"
	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
)

// ratioScale is the precision of the payment-to-income ratio; it is never
// rounded to cents.
const ratioScale int32 = 16

// ---------------------------------------------------------------------------
// EligibilityValidator – evaluates every rule, never short-circuits
// ---------------------------------------------------------------------------

// EligibilityValidator decides whether an applicant qualifies.
type EligibilityValidator struct {
	policy policy.LendingPolicy
	rates  *RateResolver
}

// NewEligibilityValidator builds a validator sharing the resolver's policy.
func NewEligibilityValidator(p policy.LendingPolicy, rates *RateResolver) *EligibilityValidator {
	return &EligibilityValidator{policy: p.Normalize(), rates: rates}
}

// Validate runs every eligibility rule against req as of asOf (used for
// vehicle age). Only a structurally unusable request returns an error;
// failed rules are reported in the result.
func (v *EligibilityValidator) Validate(req model.LoanRequest, asOf time.Time) (model.ValidationResult, error) {
	if err := req.CheckShape(); err != nil {
		return model.ValidationResult{}, err
	}

	c := &collector{}
	product := req.Product()
	pp := v.policy.For(product)
	financed := req.FinancedAmount()

	v.checkIncome(c, req)
	if product.IsAuto() {
		v.checkDownPayment(c, req, financed)
	}
	v.checkPrincipal(c, req, pp, financed)
	v.checkTerm(c, req, product, pp)
	rate, payment, ratio := v.checkAffordability(c, req, product, financed)
	v.checkAge(c, req)
	if !product.IsAuto() {
		v.checkEmployment(c, req)
	}
	v.checkCreditScore(c, req)
	if product == vo.ProductAutoUsed {
		v.checkVehicleAge(c, req, asOf)
	}

	return model.ValidationResult{
		Eligible:       len(c.errors) == 0,
		Errors:         c.errors,
		Warnings:       c.warnings,
		AnnualRate:     rate,
		MonthlyPayment: payment,
		PaymentRatio:   ratio,
	}, nil
}

type collector struct {
	errors   []model.Issue
	warnings []model.Issue
}

func (c *collector) fail(code, field, format string, args ...any) {
	c.errors = append(c.errors, model.Issue{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (c *collector) warn(code, field, format string, args ...any) {
	c.warnings = append(c.warnings, model.Issue{Code: code, Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *EligibilityValidator) checkIncome(c *collector, req model.LoanRequest) {
	if !req.MonthlyIncome.IsPositive() {
		c.fail(model.CodeIncomeNotPositive, "monthly_income", "monthly income must be greater than zero")
	}
}

func (v *EligibilityValidator) checkDownPayment(c *collector, req model.LoanRequest, financed decimal.Decimal) {
	minDown := req.VehiclePrice.Mul(v.policy.MinDownPaymentRatio)
	if req.DownPayment.LessThan(minDown) {
		c.fail(model.CodeDownPaymentTooLow, "down_payment",
			"down payment must be at least %s%% of the vehicle price (%s)",
			v.policy.MinDownPaymentRatio.Mul(decimal.NewFromInt(100)).String(), minDown.StringFixed(2))
	}
	if !financed.IsPositive() {
		c.fail(model.CodeFinancedNotPositive, "down_payment", "financed amount must be greater than zero")
	}
}

func (v *EligibilityValidator) checkPrincipal(c *collector, req model.LoanRequest, pp policy.ProductPolicy, financed decimal.Decimal) {
	if !financed.IsPositive() {
		return
	}
	if !pp.Principal.Contains(financed) {
		field := "principal"
		if req.LoanType.IsAuto() {
			field = "vehicle_price"
		}
		c.fail(model.CodePrincipalOutOfRange, field, "amount %s is outside [%s, %s]",
			financed.StringFixed(2), pp.Principal.Min.StringFixed(2), pp.Principal.Max.StringFixed(2))
	}
}

func (v *EligibilityValidator) checkTerm(c *collector, req model.LoanRequest, product vo.Product, pp policy.ProductPolicy) {
	if !pp.Rates.Allows(req.TermMonths) {
		c.fail(model.CodeTermNotAllowed, "term_months", "term of %d months is not offered for %s; allowed: %v",
			req.TermMonths, product, pp.Rates.Terms())
	}
}

// checkAffordability compares the payment at the resolved rate against
// income. Ratios inside the warning band are flagged but stay eligible.
func (v *EligibilityValidator) checkAffordability(
	c *collector, req model.LoanRequest, product vo.Product, financed decimal.Decimal,
) (rate, payment, ratio decimal.Decimal) {
	rate = v.rates.Resolve(product, req.TermMonths)
	if !financed.IsPositive() || !req.MonthlyIncome.IsPositive() {
		return rate, decimal.Zero, decimal.Zero
	}
	payment, err := model.ComputeMonthlyPayment(financed, rate, req.TermMonths)
	if err != nil {
		// Shape was checked; only an unusable rate table can land here.
		c.fail(model.CodePaymentRatioExceeded, "term_months", "monthly payment cannot be computed: %v", err)
		return rate, decimal.Zero, decimal.Zero
	}
	ratio = payment.DivRound(req.MonthlyIncome, ratioScale)

	switch {
	case ratio.GreaterThan(v.policy.MaxPaymentRatio):
		c.fail(model.CodePaymentRatioExceeded, "monthly_income",
			"monthly payment %s exceeds %s%% of monthly income",
			payment.StringFixed(2), percent(v.policy.MaxPaymentRatio))
	case ratio.GreaterThanOrEqual(v.policy.WarnPaymentRatio) && ratio.LessThan(v.policy.MaxPaymentRatio):
		c.warn(model.CodePaymentRatioHigh, "monthly_income",
			"monthly payment %s is %s%% of monthly income",
			payment.StringFixed(2), percent(ratio.Round(4)))
	}
	return rate, payment, ratio
}

func (v *EligibilityValidator) checkAge(c *collector, req model.LoanRequest) {
	if req.ApplicantAge < v.policy.MinAge {
		c.fail(model.CodeApplicantTooYoung, "applicant_age", "applicant must be at least %d years old", v.policy.MinAge)
	}
	atMaturity := req.ApplicantAge + (req.TermMonths+11)/12
	if atMaturity > v.policy.MaxAgeAtMaturity {
		c.fail(model.CodeAgeAtMaturity, "applicant_age",
			"applicant would be %d at maturity; the limit is %d", atMaturity, v.policy.MaxAgeAtMaturity)
	}
}

func (v *EligibilityValidator) checkEmployment(c *collector, req model.LoanRequest) {
	if req.EmploymentMonths < v.policy.MinEmploymentMonths {
		c.warn(model.CodeShortEmployment, "employment_months",
			"employment of %d months is below the recommended %d", req.EmploymentMonths, v.policy.MinEmploymentMonths)
	}
}

func (v *EligibilityValidator) checkCreditScore(c *collector, req model.LoanRequest) {
	if req.CreditScore == nil {
		return
	}
	switch score := *req.CreditScore; {
	case score < v.policy.MinCreditScore:
		c.fail(model.CodeCreditScoreTooLow, "credit_score", "credit score %d is below the minimum %d", score, v.policy.MinCreditScore)
	case score < v.policy.WarnCreditScore:
		c.warn(model.CodeCreditScoreLow, "credit_score", "credit score %d may require additional review", score)
	}
}

func (v *EligibilityValidator) checkVehicleAge(c *collector, req model.LoanRequest, asOf time.Time) {
	if req.VehicleYear <= 0 {
		return
	}
	age := asOf.Year() - req.VehicleYear
	switch {
	case age > v.policy.UsedVehicleMaxAge:
		c.fail(model.CodeVehicleTooOld, "vehicle_year", "vehicles older than %d years are not financed", v.policy.UsedVehicleMaxAge)
	case age > v.policy.UsedVehicleWarnAge:
		c.warn(model.CodeVehicleAged, "vehicle_year", "vehicle is %d years old; terms may be affected", age)
	}
}

func percent(ratio decimal.Decimal) string {
	return ratio.Mul(decimal.NewFromInt(100)).String()
}
