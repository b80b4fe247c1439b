package model_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	vo "github.com/bibbank/bib/services/origination-service/internal/domain/valueobject"
	"github.com/bibbank/bib/services/origination-service/pkg/testutil"
)

var tax16 = testutil.Dec("16")

func TestBuildSchedule_EndToEnd(t *testing.T) {
	rows, err := model.BuildSchedule(testutil.Dec("50000"), testutil.Dec("14.5"), 24, testutil.StartDate, tax16)
	require.NoError(t, err)
	require.Len(t, rows, 24)

	first := rows[0]
	assert.Equal(t, 1, first.Number)
	testutil.AssertDecimal(t, "604.17", first.Interest)
	testutil.AssertDecimal(t, "1808.30", first.Principal)
	testutil.AssertDecimal(t, "96.67", first.Tax)
	testutil.AssertDecimal(t, "2509.14", first.Total)
	testutil.AssertDecimal(t, "48191.70", first.RemainingBalance)

	last := rows[23]
	assert.Equal(t, 24, last.Number)
	testutil.AssertDecimal(t, "2383.72", last.Principal)
	testutil.AssertDecimal(t, "28.80", last.Interest)
	testutil.AssertDecimal(t, "4.61", last.Tax)
	testutil.AssertDecimal(t, "2417.13", last.Total)
	assert.Equal(t, "0.00", last.RemainingBalance.StringFixed(2))
}

func TestBuildSchedule_Invariants(t *testing.T) {
	cases := []struct {
		principal string
		rate      string
		term      int
	}{
		{"50000", "14.5", 24},
		{"5000", "18", 6},
		{"500000", "12.5", 60},
		{"10000", "8.5", 72},
		{"2000000", "10.5", 72},
		{"12345.67", "13.5", 36},
		{"7777.77", "16.5", 12},
		{"12000", "0", 12},
		{"100", "0", 7},
		{"99999.99", "15.5", 18},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("%s@%s/%d", c.principal, c.rate, c.term), func(t *testing.T) {
			principal := testutil.Dec(c.principal)
			rows, err := model.BuildSchedule(principal, testutil.Dec(c.rate), c.term, testutil.StartDate, tax16)
			require.NoError(t, err)
			require.Len(t, rows, c.term)

			payment, err := model.ComputeMonthlyPayment(principal, testutil.Dec(c.rate), c.term)
			require.NoError(t, err)

			sum := decimal.Zero
			prev := principal
			for i, r := range rows {
				assert.Equal(t, i+1, r.Number, "contiguous numbering")
				assert.True(t, r.RemainingBalance.LessThan(prev), "balance strictly decreases at row %d", r.Number)
				assert.True(t, r.Total.Equal(r.Principal.Add(r.Interest).Add(r.Tax)))
				assert.Equal(t, vo.PaymentStatusPending, r.Status)
				if r.Number < c.term {
					assert.True(t, r.Principal.Add(r.Interest).Equal(payment), "constant payment at row %d", r.Number)
				}
				sum = sum.Add(r.Principal)
				prev = r.RemainingBalance
			}
			assert.True(t, sum.Equal(principal), "Σ principal %s != %s", sum, principal)
			assert.True(t, rows[c.term-1].RemainingBalance.IsZero())
		})
	}
}

func TestBuildSchedule_ZeroRate(t *testing.T) {
	rows, err := model.BuildSchedule(testutil.Dec("12000"), decimal.Zero, 12, testutil.StartDate, tax16)
	require.NoError(t, err)
	for _, r := range rows {
		testutil.AssertDecimal(t, "1000", r.Principal)
		assert.True(t, r.Interest.IsZero())
		assert.True(t, r.Tax.IsZero())
	}
}

func TestBuildSchedule_TaxOnInterestOnly(t *testing.T) {
	rows, err := model.BuildSchedule(testutil.Dec("5000"), testutil.Dec("18"), 6, testutil.StartDate, tax16)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "75.00", rows[0].Interest)
	testutil.AssertDecimal(t, "12.00", rows[0].Tax)

	untaxed, err := model.BuildSchedule(testutil.Dec("5000"), testutil.Dec("18"), 6, testutil.StartDate, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, untaxed[0].Tax.IsZero())
	assert.True(t, untaxed[0].Principal.Equal(rows[0].Principal))
}

func TestBuildSchedule_Deterministic(t *testing.T) {
	a, err := model.BuildSchedule(testutil.Dec("75000"), testutil.Dec("13"), 48, testutil.StartDate, tax16)
	require.NoError(t, err)
	b, err := model.BuildSchedule(testutil.Dec("75000"), testutil.Dec("13"), 48, testutil.StartDate, tax16)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildSchedule_InputErrors(t *testing.T) {
	_, err := model.BuildSchedule(decimal.Zero, testutil.Dec("10"), 12, testutil.StartDate, tax16)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = model.BuildSchedule(testutil.Dec("1000"), testutil.Dec("10"), 0, testutil.StartDate, tax16)
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = model.BuildSchedule(testutil.Dec("1000"), testutil.Dec("10"), 12, testutil.StartDate, testutil.Dec("-1"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestBuildSchedule_PrincipalTooSmallForTerm(t *testing.T) {
	cases := []struct {
		principal string
		rate      string
		term      int
	}{
		// 0.01 a month closes the balance at row 500 of 600.
		{"5", "0", 600},
		// The payment rounds to 0.00 and nothing is ever repaid.
		{"0.01", "14.5", 12},
		{"0.05", "0", 12},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%s@%s/%d", c.principal, c.rate, c.term), func(t *testing.T) {
			_, err := model.BuildSchedule(testutil.Dec(c.principal), testutil.Dec(c.rate), c.term, testutil.StartDate, tax16)
			require.Error(t, err)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
			assert.NotErrorIs(t, err, model.ErrScheduleInvariant)

			var inErr *model.InputError
			require.ErrorAs(t, err, &inErr)
			assert.Equal(t, "principal", inErr.Field)

			_, _, err = model.AmortizationTotals(testutil.Dec(c.principal), testutil.Dec(c.rate), c.term)
			assert.ErrorIs(t, err, model.ErrInvalidInput)
		})
	}

	t.Run("one cent per month is enough", func(t *testing.T) {
		rows, err := model.BuildSchedule(testutil.Dec("6"), decimal.Zero, 600, testutil.StartDate, tax16)
		require.NoError(t, err)
		testutil.AssertDecimal(t, "0.01", rows[0].Principal)
		assert.True(t, rows[599].RemainingBalance.IsZero())
	})
}

func TestBuildSchedule_DueDatesClampToMonthEnd(t *testing.T) {
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	rows, err := model.BuildSchedule(testutil.Dec("6000"), testutil.Dec("12"), 4, start, tax16)
	require.NoError(t, err)

	want := []time.Time{
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.April, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC),
	}
	for i, r := range rows {
		assert.True(t, want[i].Equal(r.DueDate), "row %d due %s, want %s", r.Number, r.DueDate, want[i])
	}
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{"plain", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), 1, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC)},
		{"non-leap february", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), 1, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"year rollover", time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC), 3, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
		{"keeps time of day", time.Date(2025, 5, 31, 9, 30, 0, 0, time.UTC), 1, time.Date(2025, 6, 30, 9, 30, 0, 0, time.UTC)},
		{"many months", time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), 13, time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.want.Equal(model.AddMonthsClamped(tt.start, tt.n)))
		})
	}
}

func TestAmortizationTotals(t *testing.T) {
	total, interest, err := model.AmortizationTotals(testutil.Dec("50000"), testutil.Dec("14.5"), 24)
	require.NoError(t, err)
	testutil.AssertDecimal(t, "57899.33", total)
	testutil.AssertDecimal(t, "7899.33", interest)

	rows, err := model.BuildSchedule(testutil.Dec("50000"), testutil.Dec("14.5"), 24, testutil.StartDate, tax16)
	require.NoError(t, err)
	sum := decimal.Zero
	for _, r := range rows {
		sum = sum.Add(r.Principal).Add(r.Interest)
	}
	assert.True(t, sum.Equal(total))
}
