package service_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/policy"
	"github.com/bibbank/bib/services/origination-service/internal/domain/service"
	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
	"github.com/bibbank/bib/services/origination-service/pkg/testutil"
)

func newSimulator() *service.Simulator {
	p := policy.Default()
	return service.NewSimulator(p, service.NewRateResolver(p))
}

func simRequest(amount string, term int) model.LoanRequest {
	return model.LoanRequest{LoanType: vo.LoanTypePersonal, Principal: testutil.Dec(amount), TermMonths: term}
}

func TestSimulate_Personal(t *testing.T) {
	res, err := newSimulator().Simulate(simRequest("50000", 24))
	require.NoError(t, err)

	assert.Equal(t, vo.ProductPersonal, res.Product)
	assert.Equal(t, money.MXN, res.Currency)
	assert.Equal(t, 24, res.TermMonths)
	testutil.AssertDecimal(t, "14.50", res.AnnualRate)
	testutil.AssertDecimal(t, "2412.47", res.MonthlyPayment)
	testutil.AssertDecimal(t, "57899.33", res.TotalPayment)
	testutil.AssertDecimal(t, "7899.33", res.TotalInterest)
	assert.True(t, res.TotalInterest.Equal(res.TotalPayment.Sub(res.Principal)))
}

func TestSimulate_AutoFromPriceAndDownPayment(t *testing.T) {
	res, err := newSimulator().Simulate(model.LoanRequest{
		LoanType:     vo.LoanTypeAuto,
		VehicleType:  vo.VehicleTypeNew,
		VehiclePrice: testutil.Dec("350000"),
		DownPayment:  testutil.Dec("70000"),
		TermMonths:   48,
	})
	require.NoError(t, err)

	assert.Equal(t, vo.ProductAutoNew, res.Product)
	testutil.AssertDecimal(t, "280000", res.Principal)
	testutil.AssertDecimal(t, "9.50", res.AnnualRate)
	testutil.AssertDecimal(t, "7034.48", res.MonthlyPayment)
	testutil.AssertDecimal(t, "57654.93", res.TotalInterest)
}

func TestSimulate_PrincipalBoundaries(t *testing.T) {
	tests := []struct {
		amount  string
		wantErr bool
	}{
		{"5000", false},
		{"4999.99", true},
		{"500000", false},
		{"500000.01", true},
		{"0", true},
		{"-100", true},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			_, err := newSimulator().Simulate(simRequest(tt.amount, 12))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, model.ErrInvalidInput)
			var inErr *model.InputError
			require.ErrorAs(t, err, &inErr)
			assert.Equal(t, "principal", inErr.Field)
		})
	}
}

func TestSimulate_TermErrors(t *testing.T) {
	_, err := newSimulator().Simulate(simRequest("50000", 0))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	// A term between buckets keeps the requested length and borrows the
	// nearest bucket's rate.
	res, err := newSimulator().Simulate(simRequest("50000", 30))
	require.NoError(t, err)
	assert.Equal(t, 30, res.TermMonths)
	testutil.AssertDecimal(t, "14.50", res.AnnualRate)
}

func TestSimulate_ZeroRate(t *testing.T) {
	p := policy.Default()
	p.Personal.Rates = policy.RateTable{{MaxTerm: 12, Rate: testutil.Dec("0")}}
	sim := service.NewSimulator(p, service.NewRateResolver(p))

	res, err := sim.Simulate(simRequest("12000", 12))
	require.NoError(t, err)
	testutil.AssertDecimal(t, "1000.00", res.MonthlyPayment)
	assert.True(t, res.TotalInterest.IsZero())
	testutil.AssertDecimal(t, "12000", res.TotalPayment)
}

func TestSimulate_DeterministicAndConcurrent(t *testing.T) {
	sim := newSimulator()
	want, err := sim.Simulate(simRequest("123456.78", 36))
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]model.SimulationResult, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = sim.Simulate(simRequest("123456.78", 36))
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}
