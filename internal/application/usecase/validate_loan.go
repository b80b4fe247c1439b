package usecase

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/domain/event"
	"github.com/bibbank/bib/services/origination-service/internal/domain/port"
	"github.com/bibbank/bib/services/origination-service/internal/domain/service"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
)

// ValidateLoanUseCase evaluates eligibility and announces the outcome.
type ValidateLoanUseCase struct {
	validator *service.EligibilityValidator
	publisher port.EventPublisher
	currency  money.Currency
	clock     Clock
	metrics   *Metrics
	logger    *slog.Logger
}

// NewValidateLoanUseCase wires dependencies. publisher may be nil.
func NewValidateLoanUseCase(
	validator *service.EligibilityValidator,
	publisher port.EventPublisher,
	currency money.Currency,
	clock Clock,
	metrics *Metrics,
	logger *slog.Logger,
) *ValidateLoanUseCase {
	return &ValidateLoanUseCase{
		validator: validator,
		publisher: publisher,
		currency:  currency,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute validates req. An ineligible applicant is a normal result, not an
// error. The evaluation event is best effort.
func (uc *ValidateLoanUseCase) Execute(ctx context.Context, req dto.LoanRequest) (dto.ValidationResponse, error) {
	lr, err := toLoanRequest(req, uc.currency)
	if err != nil {
		return dto.ValidationResponse{}, err
	}

	now := uc.clock.now()
	res, err := uc.validator.Validate(lr, now)
	if err != nil {
		return dto.ValidationResponse{}, err
	}

	product := lr.Product().String()
	uc.metrics.validated(ctx, product, res.Eligible)
	uc.logger.InfoContext(ctx, "eligibility evaluated",
		"product", product,
		"eligible", res.Eligible,
		"errors", len(res.Errors),
		"warnings", len(res.Warnings),
	)

	if uc.publisher != nil {
		evt := event.NewEligibilityEvaluated(
			uuid.NewString(), lr.CustomerID, product,
			res.Eligible, issueCodes(res.Errors), issueCodes(res.Warnings),
			res.PaymentRatio, now,
		)
		if err := uc.publisher.Publish(ctx, evt); err != nil {
			uc.logger.WarnContext(ctx, "publish eligibility event failed", "error", err)
		}
	}

	return toValidationResponse(res), nil
}
