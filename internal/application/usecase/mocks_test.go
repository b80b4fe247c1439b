package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/bibbank/bib/services/origination-service/internal/domain/event"
	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/policy"
	"github.com/bibbank/bib/services/origination-service/internal/domain/port"
	"github.com/bibbank/bib/services/origination-service/internal/domain/service"
)

// --- Mock implementations ---

type mockScheduleRepository struct {
	mu           sync.Mutex
	saveFunc     func(ctx context.Context, s model.PaymentSchedule) error
	markPaidFunc func(ctx context.Context, loanID string, n int, paidAt time.Time) error
	schedules    map[string]model.PaymentSchedule
	saveCalls    int
}

func newMockRepo() *mockScheduleRepository {
	return &mockScheduleRepository{schedules: map[string]model.PaymentSchedule{}}
}

func (m *mockScheduleRepository) Save(ctx context.Context, s model.PaymentSchedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.saveFunc != nil {
		return m.saveFunc(ctx, s)
	}
	m.schedules[s.LoanID] = s
	return nil
}

func (m *mockScheduleRepository) FindByLoanID(_ context.Context, loanID string) (model.PaymentSchedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[loanID]
	if !ok {
		return model.PaymentSchedule{}, port.ErrScheduleNotFound
	}
	return s, nil
}

func (m *mockScheduleRepository) MarkPaid(ctx context.Context, loanID string, n int, paidAt time.Time) error {
	if m.markPaidFunc != nil {
		return m.markPaidFunc(ctx, loanID, n, paidAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[loanID]
	if !ok {
		return port.ErrScheduleNotFound
	}
	settled, err := s.Settle(n, paidAt)
	if err != nil {
		return err
	}
	m.schedules[loanID] = settled
	return nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, evts ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, evts...)
	}
	m.publishedEvents = append(m.publishedEvents, evts...)
	return nil
}

type mockIdempotencyStore struct {
	acquireFunc  func(ctx context.Context, key string) (string, bool, error)
	completeFunc func(ctx context.Context, key, loanID string) error
	completed    map[string]string
	released     []string
}

func newMockIdem() *mockIdempotencyStore {
	return &mockIdempotencyStore{completed: map[string]string{}}
}

func (m *mockIdempotencyStore) Acquire(ctx context.Context, key string) (string, bool, error) {
	if m.acquireFunc != nil {
		return m.acquireFunc(ctx, key)
	}
	if v, ok := m.completed[key]; ok {
		return v, true, nil
	}
	return "", false, nil
}

func (m *mockIdempotencyStore) Complete(ctx context.Context, key, loanID string) error {
	if m.completeFunc != nil {
		return m.completeFunc(ctx, key, loanID)
	}
	m.completed[key] = loanID
	return nil
}

func (m *mockIdempotencyStore) Release(_ context.Context, key string) error {
	m.released = append(m.released, key)
	return nil
}

// --- Shared fixtures ---

var fixedNow = time.Date(2025, time.March, 10, 14, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func domainServices() (policy.LendingPolicy, *service.RateResolver, *service.EligibilityValidator, *service.Simulator) {
	p := policy.Default()
	rates := service.NewRateResolver(p)
	return p, rates, service.NewEligibilityValidator(p, rates), service.NewSimulator(p, rates)
}
