package model

import "github.com/shopspring/decimal"

// Issue codes reported by eligibility validation.
const (
	CodePrincipalOutOfRange  = "PRINCIPAL_OUT_OF_RANGE"
	CodeTermNotAllowed       = "TERM_NOT_ALLOWED"
	CodeDownPaymentTooLow    = "DOWN_PAYMENT_TOO_LOW"
	CodeFinancedNotPositive  = "FINANCED_AMOUNT_NOT_POSITIVE"
	CodeIncomeNotPositive    = "INCOME_NOT_POSITIVE"
	CodePaymentRatioExceeded = "PAYMENT_RATIO_EXCEEDED"
	CodePaymentRatioHigh     = "PAYMENT_RATIO_HIGH"
	CodeApplicantTooYoung    = "APPLICANT_UNDER_MIN_AGE"
	CodeAgeAtMaturity        = "AGE_AT_MATURITY_EXCEEDED"
	CodeShortEmployment      = "SHORT_EMPLOYMENT"
	CodeCreditScoreTooLow    = "CREDIT_SCORE_TOO_LOW"
	CodeCreditScoreLow       = "CREDIT_SCORE_LOW"
	CodeVehicleTooOld        = "VEHICLE_TOO_OLD"
	CodeVehicleAged          = "VEHICLE_AGED"
)

// Issue is one failed or flagged rule.
type Issue struct {
	Code    string
	Field   string
	Message string
}

// ValidationResult is the outcome of evaluating every eligibility rule.
// Eligible is true exactly when Errors is empty.
type ValidationResult struct {
	Eligible bool
	Errors   []Issue
	Warnings []Issue

	// Figures the affordability rule was evaluated with. PaymentRatio is
	// zero when income is not positive.
	AnnualRate     decimal.Decimal
	MonthlyPayment decimal.Decimal
	PaymentRatio   decimal.Decimal
}

// HasError reports whether an error with code was raised.
func (r ValidationResult) HasError(code string) bool { return hasCode(r.Errors, code) }

// HasWarning reports whether a warning with code was raised.
func (r ValidationResult) HasWarning(code string) bool { return hasCode(r.Warnings, code) }

func hasCode(issues []Issue, code string) bool {
	for _, i := range issues {
		if i.Code == code {
			return true
		}
	}
	return false
}
