package port

import (
	"context"
	"errors"
	"time"

	"github.com/bibbank/bib/services/origination-service/internal/domain/event"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
)

// ErrScheduleNotFound is returned by repositories when no schedule exists
// for the requested loan.
var ErrScheduleNotFound = errors.New("payment schedule not found")

// ErrScheduleExists is returned by Save when the loan already has a schedule.
var ErrScheduleExists = errors.New("payment schedule already exists for loan")

// ErrIdempotencyInFlight is returned when another request holding the same
// idempotency key has not finished yet.
var ErrIdempotencyInFlight = errors.New("request with this idempotency key is in progress")

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// ScheduleRepository persists generated schedules and settlement flags.
type ScheduleRepository interface {
	Save(ctx context.Context, s model.PaymentSchedule) error
	FindByLoanID(ctx context.Context, loanID string) (model.PaymentSchedule, error)
	MarkPaid(ctx context.Context, loanID string, paymentNumber int, paidAt time.Time) error
}

// ---------------------------------------------------------------------------
// Event publisher port
// ---------------------------------------------------------------------------

// EventPublisher publishes domain events to external consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...event.DomainEvent) error
}

// ---------------------------------------------------------------------------
// Idempotency port
// ---------------------------------------------------------------------------

// IdempotencyStore remembers which loan a Confirm idempotency key produced.
type IdempotencyStore interface {
	// Acquire reserves key. It returns the stored loan ID and done=true when
	// the key already completed, or ErrIdempotencyInFlight while another
	// holder is still working.
	Acquire(ctx context.Context, key string) (loanID string, done bool, err error)
	// Complete records the loan ID for key.
	Complete(ctx context.Context, key, loanID string) error
	// Release drops a reservation whose request failed.
	Release(ctx context.Context, key string) error
}
