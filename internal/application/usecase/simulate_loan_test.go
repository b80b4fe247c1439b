package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/application/usecase"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
	"github.com/bibbank/bib/services/origination-service/pkg/observability"
	"github.com/bibbank/bib/services/origination-service/pkg/testutil"
)

func newSimulateUseCase(t *testing.T) *usecase.SimulateLoanUseCase {
	t.Helper()
	metrics, err := usecase.NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	_, _, _, sim := domainServices()
	return usecase.NewSimulateLoanUseCase(sim, money.MXN, metrics, observability.Discard())
}

func TestSimulateLoan_Execute(t *testing.T) {
	t.Run("prices a personal loan", func(t *testing.T) {
		uc := newSimulateUseCase(t)
		resp, err := uc.Execute(context.Background(), dto.LoanRequest{
			LoanType:   "personal",
			Amount:     testutil.Dec("50000"),
			TermMonths: 24,
		})
		require.NoError(t, err)

		assert.Equal(t, "PERSONAL", resp.Product)
		assert.Equal(t, "MXN", resp.Currency)
		testutil.AssertDecimal(t, "14.50", resp.AnnualRate)
		testutil.AssertDecimal(t, "2412.47", resp.MonthlyPayment)
		testutil.AssertDecimal(t, "57899.33", resp.TotalPayment)
		testutil.AssertDecimal(t, "7899.33", resp.TotalInterest)
	})

	t.Run("prices an auto loan from vehicle price", func(t *testing.T) {
		uc := newSimulateUseCase(t)
		resp, err := uc.Execute(context.Background(), dto.LoanRequest{
			LoanType:     "AUTO",
			VehicleType:  "NEW",
			VehiclePrice: testutil.Dec("350000"),
			DownPayment:  testutil.Dec("70000"),
			TermMonths:   48,
			Currency:     "usd",
		})
		require.NoError(t, err)
		assert.Equal(t, "AUTO_NEW", resp.Product)
		assert.Equal(t, "USD", resp.Currency)
		testutil.AssertDecimal(t, "280000", resp.Principal)
	})

	t.Run("nil metrics are allowed", func(t *testing.T) {
		_, _, _, sim := domainServices()
		uc := usecase.NewSimulateLoanUseCase(sim, money.MXN, nil, observability.Discard())
		_, err := uc.Execute(context.Background(), dto.LoanRequest{
			LoanType: "PERSONAL", Amount: testutil.Dec("10000"), TermMonths: 12,
		})
		require.NoError(t, err)
	})

	t.Run("input errors carry the field", func(t *testing.T) {
		tests := []struct {
			name  string
			req   dto.LoanRequest
			field string
		}{
			{"unknown loan type", dto.LoanRequest{LoanType: "BOAT", Amount: testutil.Dec("10000"), TermMonths: 12}, "loan_type"},
			{"unknown vehicle", dto.LoanRequest{LoanType: "AUTO", VehicleType: "LEASED", Amount: testutil.Dec("10000"), TermMonths: 12}, "vehicle_type"},
			{"below minimum", dto.LoanRequest{LoanType: "PERSONAL", Amount: testutil.Dec("4999.99"), TermMonths: 12}, "principal"},
			{"above maximum", dto.LoanRequest{LoanType: "PERSONAL", Amount: testutil.Dec("500000.01"), TermMonths: 12}, "principal"},
			{"zero term", dto.LoanRequest{LoanType: "PERSONAL", Amount: testutil.Dec("10000")}, "term_months"},
			{"bad currency", dto.LoanRequest{LoanType: "PERSONAL", Amount: testutil.Dec("10000"), TermMonths: 12, Currency: "PESO"}, "currency"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := newSimulateUseCase(t).Execute(context.Background(), tt.req)
				require.ErrorIs(t, err, model.ErrInvalidInput)
				var inErr *model.InputError
				require.ErrorAs(t, err, &inErr)
				assert.Equal(t, tt.field, inErr.Field)
			})
		}
	})
}
