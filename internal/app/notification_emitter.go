package app

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-task-alarm/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-task-alarm/internal/observability/metrics"
)

// NotificationEmitter delivers one alarm-fired event per fired alarm.
// Delivery is best effort: failures are logged and never retried.
type NotificationEmitter struct {
	publisher pubsub.Publisher
	metrics   *metrics.AlarmMetrics
}

func NewNotificationEmitter(publisher pubsub.Publisher, m *metrics.AlarmMetrics) *NotificationEmitter {
	return &NotificationEmitter{
		publisher: publisher,
		metrics:   m,
	}
}

// Emit returns the number of events the publisher accepted.
func (e *NotificationEmitter) Emit(ctx context.Context, fired []AlarmFiredOutput) int {
	if e.publisher == nil {
		if len(fired) > 0 {
			slog.WarnContext(ctx, "no publisher configured, dropping alarm notifications",
				"count", len(fired),
			)
		}

		return 0
	}

	delivered := 0

	for _, f := range fired {
		event := &pubsub.AlarmFiredEvent{
			AlarmID:          f.AlarmID,
			TaskID:           f.TaskID,
			WorkspaceID:      f.WorkspaceID,
			Title:            f.Title,
			Message:          f.Message,
			ScheduledStartAt: f.ScheduledStartAt.Unix(),
		}

		if err := e.publisher.PublishAlarmFired(ctx, event); err != nil {
			e.metrics.RecordDeliveryFailed(ctx)
			slog.ErrorContext(ctx, "failed to deliver alarm notification",
				"alarm_id", f.AlarmID,
				"task_id", f.TaskID,
				"error", err,
			)

			continue
		}

		e.metrics.RecordDelivered(ctx)
		delivered++
	}

	return delivered
}
