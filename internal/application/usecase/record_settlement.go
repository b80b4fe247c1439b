package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/domain/event"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/port"
)

// RecordSettlementUseCase applies a settlement notice from the core banking
// system. Settlement bookkeeping lives there; this only flips the flag the
// status derivation reads.
type RecordSettlementUseCase struct {
	repo      port.ScheduleRepository
	publisher port.EventPublisher
	clock     Clock
	metrics   *Metrics
	logger    *slog.Logger
}

// NewRecordSettlementUseCase wires dependencies.
func NewRecordSettlementUseCase(
	repo port.ScheduleRepository,
	publisher port.EventPublisher,
	clock Clock,
	metrics *Metrics,
	logger *slog.Logger,
) *RecordSettlementUseCase {
	return &RecordSettlementUseCase{repo: repo, publisher: publisher, clock: clock, metrics: metrics, logger: logger}
}

// Execute marks one payment as paid. Re-applying the same notice is a no-op.
func (uc *RecordSettlementUseCase) Execute(ctx context.Context, req dto.SettlementRequest) error {
	if req.LoanID == "" {
		return model.NewInputError("loan_id", "is required")
	}
	now := uc.clock.now()
	paidAt := req.PaidAt
	if paidAt.IsZero() {
		paidAt = now
	}

	s, err := uc.repo.FindByLoanID(ctx, req.LoanID)
	if err != nil {
		return fmt.Errorf("find schedule: %w", err)
	}
	if req.PaymentNumber < 1 || req.PaymentNumber > len(s.Payments) {
		return fmt.Errorf("%w: %d of %d", model.ErrPaymentNotFound, req.PaymentNumber, len(s.Payments))
	}
	if s.Payments[req.PaymentNumber-1].Paid {
		uc.logger.DebugContext(ctx, "settlement already applied", "loan_id", req.LoanID, "payment_number", req.PaymentNumber)
		return nil
	}

	if err := uc.repo.MarkPaid(ctx, req.LoanID, req.PaymentNumber, paidAt); err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	uc.metrics.settled(ctx)
	uc.logger.InfoContext(ctx, "payment settled", "loan_id", req.LoanID, "payment_number", req.PaymentNumber)

	evt := event.NewPaymentSettled(s.ID, req.LoanID, req.PaymentNumber, paidAt, now)
	if err := uc.publisher.Publish(ctx, evt); err != nil {
		return fmt.Errorf("publish events: %w", err)
	}
	return nil
}
