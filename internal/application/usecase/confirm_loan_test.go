package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/application/usecase"
	"github.com/bibbank/bib/services/origination-service/internal/domain/event"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/port"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
	"github.com/bibbank/bib/services/origination-service/pkg/observability"
	"github.com/bibbank/bib/services/origination-service/pkg/testutil"
)

type confirmFixture struct {
	repo      *mockScheduleRepository
	publisher *mockEventPublisher
	idem      *mockIdempotencyStore
	uc        *usecase.ConfirmLoanUseCase
}

func newConfirmFixture() *confirmFixture {
	f := &confirmFixture{
		repo:      newMockRepo(),
		publisher: &mockEventPublisher{},
		idem:      newMockIdem(),
	}
	p, _, validator, _ := domainServices()
	f.uc = usecase.NewConfirmLoanUseCase(p, validator, f.repo, f.publisher, f.idem,
		money.MXN, fixedClock, nil, observability.Discard())
	return f
}

func confirmRequest() dto.ConfirmRequest {
	return dto.ConfirmRequest{
		Request:   validPersonalRequest(),
		LoanID:    testutil.LoanID,
		StartDate: "2025-01-31",
	}
}

func TestConfirmLoan_Execute(t *testing.T) {
	t.Run("generates, persists and publishes the schedule", func(t *testing.T) {
		f := newConfirmFixture()

		resp, err := f.uc.Execute(context.Background(), confirmRequest())
		require.NoError(t, err)

		assert.Equal(t, testutil.LoanID, resp.LoanID)
		assert.NotEmpty(t, resp.ScheduleID)
		assert.Equal(t, "MXN", resp.Currency)
		assert.Equal(t, 24, resp.TermMonths)
		testutil.AssertDecimal(t, "14.50", resp.AnnualRate)
		testutil.AssertDecimal(t, "16", resp.TaxRate)
		testutil.AssertDecimal(t, "2412.47", resp.MonthlyPayment)
		assert.Equal(t, "2025-01-31", resp.StartDate)
		assert.Equal(t, "2025-03-10", resp.AsOf)

		require.Len(t, resp.Payments, 24)
		first := resp.Payments[0]
		assert.Equal(t, "2025-02-28", first.DueDate)
		testutil.AssertDecimal(t, "1808.30", first.Principal)
		testutil.AssertDecimal(t, "604.17", first.Interest)
		testutil.AssertDecimal(t, "96.67", first.Tax)
		testutil.AssertDecimal(t, "2509.14", first.Total)
		assert.Equal(t, "OVERDUE", first.Status)
		assert.Equal(t, "2025-03-31", resp.Payments[1].DueDate)
		assert.Equal(t, "PENDING", resp.Payments[1].Status)
		testutil.AssertDecimal(t, "0", resp.Payments[23].RemainingBalance)

		assert.Equal(t, 1, resp.Summary.PaymentsOverdue)
		assert.Equal(t, 23, resp.Summary.PaymentsPending)
		testutil.AssertDecimal(t, "50000", resp.Summary.TotalPrincipal)
		testutil.AssertDecimal(t, "7899.33", resp.Summary.TotalInterest)
		testutil.AssertDecimal(t, "1263.91", resp.Summary.TotalTax)
		testutil.AssertDecimal(t, "59163.24", resp.Summary.TotalAmount)

		assert.Equal(t, 1, f.repo.saveCalls)
		stored, err := f.repo.FindByLoanID(context.Background(), testutil.LoanID)
		require.NoError(t, err)
		assert.Equal(t, resp.ScheduleID, stored.ID)
		assert.Equal(t, testutil.CustomerID, stored.CustomerID)

		require.Len(t, f.publisher.publishedEvents, 1)
		evt, ok := f.publisher.publishedEvents[0].(event.ScheduleGenerated)
		require.True(t, ok)
		assert.Equal(t, event.TypeScheduleGenerated, evt.EventType())
		assert.Equal(t, resp.ScheduleID, evt.AggregateID())
		assert.Equal(t, testutil.LoanID, evt.LoanID)
		testutil.AssertDecimal(t, "59163.24", evt.TotalAmount)
	})

	t.Run("generates a loan id when none is given", func(t *testing.T) {
		f := newConfirmFixture()
		req := confirmRequest()
		req.LoanID = ""

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.LoanID)
		_, err = f.repo.FindByLoanID(context.Background(), resp.LoanID)
		assert.NoError(t, err)
	})

	t.Run("rate override replaces the catalog rate", func(t *testing.T) {
		f := newConfirmFixture()
		req := confirmRequest()
		zero := testutil.Dec("0")
		req.AnnualRate = &zero

		resp, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		testutil.AssertDecimal(t, "0", resp.AnnualRate)
		testutil.AssertDecimal(t, "2083.33", resp.MonthlyPayment)
		testutil.AssertDecimal(t, "0", resp.Summary.TotalInterest)
		testutil.AssertDecimal(t, "50000", resp.Summary.TotalPrincipal)
	})

	t.Run("negative rate override is an input error", func(t *testing.T) {
		f := newConfirmFixture()
		req := confirmRequest()
		neg := testutil.Dec("-1")
		req.AnnualRate = &neg

		_, err := f.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
		assert.Zero(t, f.repo.saveCalls)
	})

	t.Run("principal below the minimum is an input error", func(t *testing.T) {
		f := newConfirmFixture()
		req := confirmRequest()
		req.Request.Amount = testutil.Dec("4999.99")

		_, err := f.uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, model.ErrInvalidInput)
		var inErr *model.InputError
		require.ErrorAs(t, err, &inErr)
		assert.Equal(t, "principal", inErr.Field)
		assert.Zero(t, f.repo.saveCalls)
	})

	t.Run("malformed start date is an input error", func(t *testing.T) {
		f := newConfirmFixture()
		req := confirmRequest()
		req.StartDate = "31/01/2025"

		_, err := f.uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("ineligible applicant is rejected with the result", func(t *testing.T) {
		f := newConfirmFixture()
		req := confirmRequest()
		req.Request.MonthlyIncome = testutil.Dec("5000")

		_, err := f.uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, model.ErrNotEligible)
		var ne *model.NotEligibleError
		require.ErrorAs(t, err, &ne)
		assert.True(t, ne.Result.HasError(model.CodePaymentRatioExceeded))

		assert.Zero(t, f.repo.saveCalls)
		assert.Empty(t, f.publisher.publishedEvents)
	})

	t.Run("disallowed term is not eligible", func(t *testing.T) {
		f := newConfirmFixture()
		req := confirmRequest()
		req.Request.TermMonths = 30

		_, err := f.uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, model.ErrNotEligible)
		var ne *model.NotEligibleError
		require.ErrorAs(t, err, &ne)
		assert.True(t, ne.Result.HasError(model.CodeTermNotAllowed))
	})

	t.Run("save failure is wrapped", func(t *testing.T) {
		f := newConfirmFixture()
		f.repo.saveFunc = func(context.Context, model.PaymentSchedule) error { return errors.New("db down") }

		_, err := f.uc.Execute(context.Background(), confirmRequest())
		testutil.AssertErrorContains(t, err, "save schedule")
		assert.Empty(t, f.publisher.publishedEvents)
	})

	t.Run("publish failure is reported after the schedule is stored", func(t *testing.T) {
		f := newConfirmFixture()
		f.publisher.publishFunc = func(context.Context, ...event.DomainEvent) error { return errors.New("broker down") }

		_, err := f.uc.Execute(context.Background(), confirmRequest())
		testutil.AssertErrorContains(t, err, "publish events")
		assert.Equal(t, 1, f.repo.saveCalls)
	})
}

func TestConfirmLoan_Idempotency(t *testing.T) {
	t.Run("repeated key replays the first schedule", func(t *testing.T) {
		f := newConfirmFixture()
		req := confirmRequest()
		req.IdempotencyKey = "branch-7:req-1"

		first, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)
		second, err := f.uc.Execute(context.Background(), req)
		require.NoError(t, err)

		assert.Equal(t, first.ScheduleID, second.ScheduleID)
		assert.Equal(t, 1, f.repo.saveCalls)
		assert.Len(t, f.publisher.publishedEvents, 1)
		assert.Equal(t, testutil.LoanID, f.idem.completed[req.IdempotencyKey])
		assert.Empty(t, f.idem.released)
	})

	t.Run("in-flight key is refused", func(t *testing.T) {
		f := newConfirmFixture()
		f.idem.acquireFunc = func(context.Context, string) (string, bool, error) {
			return "", false, port.ErrIdempotencyInFlight
		}
		req := confirmRequest()
		req.IdempotencyKey = "branch-7:req-2"

		_, err := f.uc.Execute(context.Background(), req)
		require.ErrorIs(t, err, port.ErrIdempotencyInFlight)
		assert.Zero(t, f.repo.saveCalls)
		assert.Empty(t, f.idem.released)
	})

	t.Run("key is released when confirmation fails", func(t *testing.T) {
		tests := []struct {
			name  string
			setup func(f *confirmFixture, req *dto.ConfirmRequest)
		}{
			{"not eligible", func(_ *confirmFixture, req *dto.ConfirmRequest) {
				req.Request.MonthlyIncome = testutil.Dec("5000")
			}},
			{"save fails", func(f *confirmFixture, _ *dto.ConfirmRequest) {
				f.repo.saveFunc = func(context.Context, model.PaymentSchedule) error { return errors.New("db down") }
			}},
		}
		for i, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newConfirmFixture()
				req := confirmRequest()
				req.IdempotencyKey = fmt.Sprintf("branch-7:fail-%d", i)
				tt.setup(f, &req)

				_, err := f.uc.Execute(context.Background(), req)
				require.Error(t, err)
				assert.Equal(t, []string{req.IdempotencyKey}, f.idem.released)
				assert.NotContains(t, f.idem.completed, req.IdempotencyKey)
			})
		}
	})

	t.Run("key is kept when only publishing fails", func(t *testing.T) {
		f := newConfirmFixture()
		f.publisher.publishFunc = func(context.Context, ...event.DomainEvent) error { return errors.New("broker down") }
		req := confirmRequest()
		req.IdempotencyKey = "branch-7:req-3"

		_, err := f.uc.Execute(context.Background(), req)
		require.Error(t, err)
		assert.Empty(t, f.idem.released)
		assert.Equal(t, testutil.LoanID, f.idem.completed[req.IdempotencyKey])
	})

	t.Run("key is kept when completing it fails after the save", func(t *testing.T) {
		f := newConfirmFixture()
		f.idem.completeFunc = func(context.Context, string, string) error { return errors.New("redis down") }
		req := confirmRequest()
		req.IdempotencyKey = "branch-7:req-4"

		_, err := f.uc.Execute(context.Background(), req)
		require.Error(t, err)
		assert.ErrorContains(t, err, "complete idempotency key")
		assert.Empty(t, f.idem.released)
		_, findErr := f.repo.FindByLoanID(context.Background(), testutil.LoanID)
		assert.NoError(t, findErr)
	})

	t.Run("nil store ignores keys", func(t *testing.T) {
		repo := newMockRepo()
		p, _, validator, _ := domainServices()
		uc := usecase.NewConfirmLoanUseCase(p, validator, repo, &mockEventPublisher{}, nil,
			money.MXN, fixedClock, nil, observability.Discard())
		req := confirmRequest()
		req.IdempotencyKey = "ignored"

		_, err := uc.Execute(context.Background(), req)
		require.NoError(t, err)
	})
}
