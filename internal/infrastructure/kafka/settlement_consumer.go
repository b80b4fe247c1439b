package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/bibbank/bib/services/origination-service/internal/application/dto"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/port"
	pkgkafka "github.com/bibbank/bib/services/origination-service/pkg/kafka"
)

// SettlementRecorder is satisfied by *usecase.RecordSettlementUseCase.
type SettlementRecorder interface {
	Execute(ctx context.Context, req dto.SettlementRequest) error
}

// settlementMessage is the payload the core banking system writes to the
// settlements topic.
type settlementMessage struct {
	LoanID        string    `json:"loan_id"`
	PaymentNumber int       `json:"payment_number"`
	PaidAt        time.Time `json:"paid_at"`
}

// SettlementHandler applies settlement notices to stored schedules.
type SettlementHandler struct {
	recorder SettlementRecorder
	logger   *slog.Logger
}

func NewSettlementHandler(recorder SettlementRecorder, logger *slog.Logger) *SettlementHandler {
	return &SettlementHandler{recorder: recorder, logger: logger}
}

// Handle is a pkgkafka.Handler. Messages that can never succeed (bad JSON,
// unknown loan or payment) are logged and acknowledged; anything else is
// returned and the consumer retries the same message.
func (h *SettlementHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var m settlementMessage
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		h.logger.WarnContext(ctx, "dropping malformed settlement",
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	}

	err := h.recorder.Execute(ctx, dto.SettlementRequest{
		LoanID:        m.LoanID,
		PaymentNumber: m.PaymentNumber,
		PaidAt:        m.PaidAt,
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, model.ErrPaymentNotFound),
		errors.Is(err, port.ErrScheduleNotFound):
		h.logger.WarnContext(ctx, "dropping unusable settlement",
			"loan_id", m.LoanID,
			"payment_number", m.PaymentNumber,
			"offset", msg.Offset,
			"error", err,
		)
		return nil
	default:
		return err
	}
}
