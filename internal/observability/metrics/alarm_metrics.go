package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AlarmMetrics counts reconciliation and firing activity. A nil receiver is a no-op.
type AlarmMetrics struct {
	syncs     metric.Int64Counter
	fired     metric.Int64Counter
	delivered metric.Int64Counter
	failed    metric.Int64Counter
}

func NewAlarmMetrics(meter metric.Meter) (*AlarmMetrics, error) {
	syncs, err := meter.Int64Counter(
		"alarm.sync.total",
		metric.WithDescription("Number of task alarm synchronisations"),
		metric.WithUnit("{sync}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create alarm.sync.total counter: %w", err)
	}

	fired, err := meter.Int64Counter(
		"alarm.fired.total",
		metric.WithDescription("Number of alarms moved to fired"),
		metric.WithUnit("{alarm}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create alarm.fired.total counter: %w", err)
	}

	delivered, err := meter.Int64Counter(
		"alarm.notification.delivered.total",
		metric.WithDescription("Number of alarm notifications handed to the publisher"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create alarm.notification.delivered.total counter: %w", err)
	}

	failed, err := meter.Int64Counter(
		"alarm.notification.failed.total",
		metric.WithDescription("Number of alarm notifications the publisher rejected"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create alarm.notification.failed.total counter: %w", err)
	}

	return &AlarmMetrics{
		syncs:     syncs,
		fired:     fired,
		delivered: delivered,
		failed:    failed,
	}, nil
}

func (m *AlarmMetrics) RecordSync(ctx context.Context, workspaces int) {
	if m == nil {
		return
	}

	m.syncs.Add(ctx, 1, metric.WithAttributes(attribute.Int("workspaces", workspaces)))
}

func (m *AlarmMetrics) RecordFired(ctx context.Context, count int) {
	if m == nil || count <= 0 {
		return
	}

	m.fired.Add(ctx, int64(count))
}

func (m *AlarmMetrics) RecordDelivered(ctx context.Context) {
	if m == nil {
		return
	}

	m.delivered.Add(ctx, 1)
}

func (m *AlarmMetrics) RecordDeliveryFailed(ctx context.Context) {
	if m == nil {
		return
	}

	m.failed.Add(ctx, 1)
}
