package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
	"github.com/bibbank/bib/services/origination-service/pkg/testutil"
)

func personalRequest() model.LoanRequest {
	return model.LoanRequest{
		LoanType:         vo.LoanTypePersonal,
		Principal:        testutil.Dec("50000"),
		TermMonths:       24,
		MonthlyIncome:    testutil.Dec("20000"),
		ApplicantAge:     35,
		EmploymentMonths: 24,
		Currency:         money.MXN,
	}
}

func autoRequest() model.LoanRequest {
	return model.LoanRequest{
		LoanType:         vo.LoanTypeAuto,
		TermMonths:       48,
		MonthlyIncome:    testutil.Dec("40000"),
		ApplicantAge:     40,
		EmploymentMonths: 60,
		VehicleType:      vo.VehicleTypeNew,
		VehiclePrice:     testutil.Dec("350000"),
		DownPayment:      testutil.Dec("70000"),
		VehicleYear:      2025,
		Currency:         money.MXN,
	}
}

func TestLoanRequest_FinancedAmount(t *testing.T) {
	testutil.AssertDecimal(t, "50000", personalRequest().FinancedAmount())
	testutil.AssertDecimal(t, "280000", autoRequest().FinancedAmount())
	assert.Equal(t, vo.ProductAutoNew, autoRequest().Product())
	assert.Equal(t, vo.ProductPersonal, personalRequest().Product())
}

func TestLoanRequest_CheckShape(t *testing.T) {
	score := func(n int) *int { return &n }

	tests := []struct {
		name   string
		mutate func(r *model.LoanRequest)
		base   func() model.LoanRequest
		field  string
	}{
		{"missing loan type", func(r *model.LoanRequest) { r.LoanType = vo.LoanType{} }, personalRequest, "loan_type"},
		{"zero term", func(r *model.LoanRequest) { r.TermMonths = 0 }, personalRequest, "term_months"},
		{"negative principal", func(r *model.LoanRequest) { r.Principal = testutil.Dec("-5") }, personalRequest, "principal"},
		{"negative income", func(r *model.LoanRequest) { r.MonthlyIncome = testutil.Dec("-1") }, personalRequest, "monthly_income"},
		{"credit score out of range", func(r *model.LoanRequest) { r.CreditScore = score(900) }, personalRequest, "credit_score"},
		{"auto without vehicle type", func(r *model.LoanRequest) { r.VehicleType = vo.VehicleType{} }, autoRequest, "vehicle_type"},
		{"auto without price", func(r *model.LoanRequest) { r.VehiclePrice = testutil.Dec("0") }, autoRequest, "vehicle_price"},
		{"auto negative down payment", func(r *model.LoanRequest) { r.DownPayment = testutil.Dec("-1") }, autoRequest, "down_payment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.base()
			tt.mutate(&r)
			err := r.CheckShape()
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidInput))
			var inErr *model.InputError
			require.ErrorAs(t, err, &inErr)
			assert.Equal(t, tt.field, inErr.Field)
		})
	}

	assert.NoError(t, personalRequest().CheckShape())
	assert.NoError(t, autoRequest().CheckShape())
}

func TestNotEligibleError(t *testing.T) {
	err := error(&model.NotEligibleError{Result: model.ValidationResult{
		Errors: []model.Issue{{Code: model.CodePaymentRatioExceeded, Field: "monthly_income"}},
	}})
	assert.ErrorIs(t, err, model.ErrNotEligible)
	assert.Contains(t, err.Error(), model.CodePaymentRatioExceeded)
}
