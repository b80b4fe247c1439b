// Package memory holds process-local adapters used by the loancalc CLI and
// by tests that do not need a database.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/bibbank/bib/services/origination-service/internal/domain/event"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/port"
	"github.com/bibbank/bib/services/origination-service/pkg/events"
)

// ScheduleRepo is a map-backed port.ScheduleRepository.
type ScheduleRepo struct {
	mu        sync.RWMutex
	schedules map[string]model.PaymentSchedule
}

// NewScheduleRepo returns an empty repository.
func NewScheduleRepo() *ScheduleRepo {
	return &ScheduleRepo{schedules: make(map[string]model.PaymentSchedule)}
}

// Save stores s. A second schedule for the same loan is rejected.
func (r *ScheduleRepo) Save(_ context.Context, s model.PaymentSchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[s.LoanID]; ok {
		return port.ErrScheduleExists
	}
	r.schedules[s.LoanID] = s
	return nil
}

// FindByLoanID returns the schedule with statuses derived as of its
// generation time, like the postgres adapter.
func (r *ScheduleRepo) FindByLoanID(_ context.Context, loanID string) (model.PaymentSchedule, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schedules[loanID]
	if !ok {
		return model.PaymentSchedule{}, port.ErrScheduleNotFound
	}
	return s.AsOf(s.GeneratedAt), nil
}

// MarkPaid flags one payment. Already-paid rows keep their first paidAt.
func (r *ScheduleRepo) MarkPaid(_ context.Context, loanID string, paymentNumber int, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[loanID]
	if !ok {
		return port.ErrScheduleNotFound
	}
	settled, err := s.Settle(paymentNumber, paidAt)
	if err != nil {
		return err
	}
	r.schedules[loanID] = settled
	return nil
}

// EventRecorder is a port.EventPublisher that keeps events in memory.
type EventRecorder struct {
	mu    sync.Mutex
	batch events.Batch
}

// Publish appends evts.
func (p *EventRecorder) Publish(_ context.Context, evts ...event.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batch.Add(evts...)
	return nil
}

// Drain returns everything published since the last call.
func (p *EventRecorder) Drain() []event.DomainEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batch.Drain()
}
