package usecase

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics counts use-case outcomes. A nil *Metrics records nothing.
type Metrics struct {
	simulations metric.Int64Counter
	validations metric.Int64Counter
	confirmed   metric.Int64Counter
	settlements metric.Int64Counter
}

// NewMetrics registers the origination counters on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	if m.simulations, err = meter.Int64Counter("origination_simulations_total",
		metric.WithDescription("Loan simulations served, by product.")); err != nil {
		return nil, err
	}
	if m.validations, err = meter.Int64Counter("origination_validations_total",
		metric.WithDescription("Eligibility validations, by product and outcome.")); err != nil {
		return nil, err
	}
	if m.confirmed, err = meter.Int64Counter("origination_schedules_confirmed_total",
		metric.WithDescription("Payment schedules generated and persisted.")); err != nil {
		return nil, err
	}
	if m.settlements, err = meter.Int64Counter("origination_settlements_total",
		metric.WithDescription("Settlement notices applied to schedules.")); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Metrics) simulated(ctx context.Context, product string) {
	if m == nil {
		return
	}
	m.simulations.Add(ctx, 1, metric.WithAttributes(attribute.String("product", product)))
}

func (m *Metrics) validated(ctx context.Context, product string, eligible bool) {
	if m == nil {
		return
	}
	m.validations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("product", product),
		attribute.Bool("eligible", eligible),
	))
}

func (m *Metrics) scheduleConfirmed(ctx context.Context, product string) {
	if m == nil {
		return
	}
	m.confirmed.Add(ctx, 1, metric.WithAttributes(attribute.String("product", product)))
}

func (m *Metrics) settled(ctx context.Context) {
	if m == nil {
		return
	}
	m.settlements.Add(ctx, 1)
}
