package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/KasumiMercury/primind-task-alarm/internal/observability/tracing"
)

const (
	TopicAlarmFired     = "alarm-fired"
	EventTypeAlarmFired = "alarm.fired"
)

// AlarmFiredEvent is the payload delivered to the UI boundary for one fired alarm.
type AlarmFiredEvent struct {
	AlarmID          string `json:"alarm_id"`
	TaskID           int64  `json:"task_id"`
	WorkspaceID      int64  `json:"workspace_id"`
	Title            string `json:"title"`
	Message          string `json:"message"`
	ScheduledStartAt int64  `json:"scheduled_start_at"`
}

func newAlarmFiredMessage(ctx context.Context, event *AlarmFiredEvent) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_type", EventTypeAlarmFired)
	msg.Metadata.Set("alarm_id", event.AlarmID)
	msg.Metadata.Set("workspace_id", fmt.Sprintf("%d", event.WorkspaceID))

	carrier := make(map[string]string)
	tracing.InjectToMap(ctx, carrier)

	for k, v := range carrier {
		msg.Metadata.Set(k, v)
	}

	msg.SetContext(ctx)

	return msg, nil
}

// DecodeAlarmFiredEvent reads the payload back from a delivered message.
func DecodeAlarmFiredEvent(msg *message.Message) (*AlarmFiredEvent, error) {
	var event AlarmFiredEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	return &event, nil
}

func publishAlarmFired(ctx context.Context, publisher message.Publisher, event *AlarmFiredEvent) error {
	msg, err := newAlarmFiredMessage(ctx, event)
	if err != nil {
		return err
	}

	if err := publisher.Publish(TopicAlarmFired, msg); err != nil {
		slog.ErrorContext(ctx, "failed to publish alarm fired event",
			slog.String("alarm_id", event.AlarmID),
			slog.String("error", err.Error()),
		)

		return fmt.Errorf("failed to publish event: %w", err)
	}

	slog.DebugContext(ctx, "published alarm fired event",
		slog.String("alarm_id", event.AlarmID),
		slog.String("message_id", msg.UUID),
	)

	return nil
}
