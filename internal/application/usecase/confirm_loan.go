package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/domain/event"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/policy"
	"github.com/bibbank/bib/services/origination-service/internal/domain/port"
	"github.com/bibbank/bib/services/origination-service/internal/domain/service"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

var tracer = otel.Tracer("github.com/bibbank/bib/services/origination-service/internal/application/usecase")

// ConfirmLoanUseCase generates, persists and announces the payment schedule
// of an eligible loan.
type ConfirmLoanUseCase struct {
	policy    policy.LendingPolicy
	validator *service.EligibilityValidator
	repo      port.ScheduleRepository
	publisher port.EventPublisher
	idem      port.IdempotencyStore
	currency  money.Currency
	clock     Clock
	metrics   *Metrics
	logger    *slog.Logger
}

// NewConfirmLoanUseCase wires dependencies. idem may be nil, in which case
// idempotency keys are ignored.
func NewConfirmLoanUseCase(
	p policy.LendingPolicy,
	validator *service.EligibilityValidator,
	repo port.ScheduleRepository,
	publisher port.EventPublisher,
	idem port.IdempotencyStore,
	currency money.Currency,
	clock Clock,
	metrics *Metrics,
	logger *slog.Logger,
) *ConfirmLoanUseCase {
	return &ConfirmLoanUseCase{
		policy:    p,
		validator: validator,
		repo:      repo,
		publisher: publisher,
		idem:      idem,
		currency:  currency,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute confirms req. Validation is re-run here: an ineligible applicant
// yields a *model.NotEligibleError. A repeated idempotency key returns the
// schedule produced the first time; a key is released again if the request
// fails before the schedule is stored.
func (uc *ConfirmLoanUseCase) Execute(ctx context.Context, req dto.ConfirmRequest) (resp dto.ScheduleResponse, err error) {
	ctx, span := tracer.Start(ctx, "ConfirmLoan")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	now := uc.clock.now()

	// 1. Map and check the request before touching any port.
	lr, err := toLoanRequest(req.Request, uc.currency)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	if err := lr.CheckShape(); err != nil {
		return dto.ScheduleResponse{}, err
	}
	product := lr.Product()
	if err := service.CheckPrincipal(uc.policy, product, lr.FinancedAmount()); err != nil {
		return dto.ScheduleResponse{}, err
	}
	if req.AnnualRate != nil && req.AnnualRate.IsNegative() {
		return dto.ScheduleResponse{}, model.NewInputError("annual_rate", "must not be negative")
	}
	start, err := parseDate("start_date", req.StartDate, now)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	span.SetAttributes(attribute.String("product", product.String()))

	// 2. Idempotency: replay a completed key, refuse a concurrent one.
	key := req.IdempotencyKey
	saved := false
	if key != "" && uc.idem != nil {
		loanID, done, acqErr := uc.idem.Acquire(ctx, key)
		if acqErr != nil {
			return dto.ScheduleResponse{}, fmt.Errorf("acquire idempotency key: %w", acqErr)
		}
		if done {
			uc.logger.InfoContext(ctx, "confirm replayed", "idempotency_key", key, "loan_id", loanID)
			s, findErr := uc.repo.FindByLoanID(ctx, loanID)
			if findErr != nil {
				return dto.ScheduleResponse{}, fmt.Errorf("load replayed schedule: %w", findErr)
			}
			return ToScheduleResponse(s.AsOf(now), now), nil
		}
		defer func() {
			// Once the schedule is stored the key must not be freed, or a
			// retry would book a second loan.
			if err != nil && !saved {
				if relErr := uc.idem.Release(context.WithoutCancel(ctx), key); relErr != nil {
					uc.logger.WarnContext(ctx, "release idempotency key failed", "idempotency_key", key, "error", relErr)
				}
			}
		}()
	}

	// 3. Eligibility.
	result, err := uc.validator.Validate(lr, now)
	if err != nil {
		return dto.ScheduleResponse{}, err
	}
	if !result.Eligible {
		return dto.ScheduleResponse{}, &model.NotEligibleError{Result: result}
	}

	// 4. Generate.
	rate := result.AnnualRate
	if req.AnnualRate != nil {
		rate = *req.AnnualRate
	}
	loanID := req.LoanID
	if loanID == "" {
		loanID = uuid.NewString()
	}
	schedule, err := model.NewPaymentSchedule(model.ScheduleParams{
		ID:          uuid.NewString(),
		LoanID:      loanID,
		CustomerID:  lr.CustomerID,
		Currency:    lr.Currency,
		Principal:   lr.FinancedAmount(),
		AnnualRate:  rate,
		TaxRate:     uc.policy.TaxRate,
		TermMonths:  lr.TermMonths,
		StartDate:   start,
		GeneratedAt: now,
	})
	if err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("generate schedule: %w", err)
	}

	// 5. Persist.
	if err := uc.repo.Save(ctx, schedule); err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("save schedule: %w", err)
	}
	saved = true
	if key != "" && uc.idem != nil {
		if err := uc.idem.Complete(ctx, key, loanID); err != nil {
			return dto.ScheduleResponse{}, fmt.Errorf("complete idempotency key: %w", err)
		}
	}
	uc.metrics.scheduleConfirmed(ctx, product.String())
	uc.logger.InfoContext(ctx, "schedule generated",
		"loan_id", loanID,
		"schedule_id", schedule.ID,
		"product", product.String(),
		"monthly_payment", schedule.MonthlyPayment.String(),
	)

	// 6. Publish.
	view := schedule.AsOf(now)
	evt := event.NewScheduleGenerated(
		schedule.ID, loanID, schedule.CustomerID, schedule.Currency.Code(),
		schedule.Principal, schedule.AnnualRate, schedule.TermMonths,
		schedule.MonthlyPayment, view.Summary.TotalAmount,
		schedule.Payments[0].DueDate, now,
	)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return dto.ScheduleResponse{}, fmt.Errorf("publish events: %w", err)
	}

	return ToScheduleResponse(view, now), nil
}
