package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-task-alarm/internal/domain"
	"github.com/KasumiMercury/primind-task-alarm/internal/observability/metrics"
)

type Option func(*alarmUseCaseImpl)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(uc *alarmUseCaseImpl) {
		uc.now = now
	}
}

func WithMetrics(m *metrics.AlarmMetrics) Option {
	return func(uc *alarmUseCaseImpl) {
		uc.metrics = m
	}
}

type alarmUseCaseImpl struct {
	store   *AlarmStore
	now     func() time.Time
	metrics *metrics.AlarmMetrics
}

func NewAlarmUseCase(store *AlarmStore, opts ...Option) AlarmUseCase {
	uc := &alarmUseCaseImpl{
		store: store,
		now:   time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *alarmUseCaseImpl) GetAlarmManagerState(ctx context.Context) (AlarmManagerStateOutput, error) {
	state := uc.store.Snapshot()

	slog.DebugContext(ctx, "alarm state retrieved",
		"alarm_count", state.Len(),
		"notifications_enabled", state.NotificationsEnabled(),
	)

	return FromState(state), nil
}

func (uc *alarmUseCaseImpl) SetNotificationsEnabled(ctx context.Context, input SetNotificationsEnabledInput) error {
	slog.DebugContext(ctx, "setting notifications enabled",
		"enabled", input.Enabled,
	)

	if err := uc.store.Update(ctx, func(state *domain.AlarmManagerState) (bool, error) {
		return state.SetNotificationsEnabled(input.Enabled), nil
	}); err != nil {
		return err
	}

	slog.InfoContext(ctx, "notifications toggled",
		"enabled", input.Enabled,
	)

	return nil
}

func (uc *alarmUseCaseImpl) SyncTaskAlarms(ctx context.Context, input SyncTaskAlarmsInput) (SyncTaskAlarmsOutput, error) {
	slog.DebugContext(ctx, "syncing task alarms",
		"input_count", len(input.Alarms),
	)

	specs := make([]domain.TaskAlarmSpec, 0, len(input.Alarms))
	workspaces := make(map[int64]struct{})

	for i, in := range input.Alarms {
		spec, err := toTaskAlarmSpec(i, in)
		if err != nil {
			return SyncTaskAlarmsOutput{}, err
		}

		specs = append(specs, spec)
		workspaces[in.WorkspaceID] = struct{}{}
	}

	now := uc.now()

	var count int

	if err := uc.store.Update(ctx, func(state *domain.AlarmManagerState) (bool, error) {
		count = state.Reconcile(now, specs)

		return true, nil
	}); err != nil {
		return SyncTaskAlarmsOutput{}, err
	}

	uc.metrics.RecordSync(ctx, len(workspaces))

	slog.InfoContext(ctx, "task alarms synced",
		"input_count", len(specs),
		"workspace_count", len(workspaces),
		"alarm_count", count,
	)

	return SyncTaskAlarmsOutput{Count: count}, nil
}

func (uc *alarmUseCaseImpl) SnoozeAlarm(ctx context.Context, input SnoozeAlarmInput) error {
	slog.DebugContext(ctx, "snoozing alarm",
		"alarm_id", input.ID,
		"minutes", input.Minutes,
	)

	id, err := domain.AlarmIDFromString(input.ID)
	if err != nil {
		return NewValidationError("alarm_id", err.Error())
	}

	now := uc.now()

	if err := uc.store.Update(ctx, func(state *domain.AlarmManagerState) (bool, error) {
		if err := state.Snooze(id, now, input.Minutes); err != nil {
			return false, err
		}

		return true, nil
	}); err != nil {
		return uc.lifecycleError(ctx, "snooze", input.ID, err)
	}

	slog.InfoContext(ctx, "alarm snoozed",
		"alarm_id", input.ID,
		"minutes", max(input.Minutes, domain.MinSnoozeMinutes),
	)

	return nil
}

func (uc *alarmUseCaseImpl) DismissAlarm(ctx context.Context, input DismissAlarmInput) error {
	slog.DebugContext(ctx, "dismissing alarm",
		"alarm_id", input.ID,
	)

	id, err := domain.AlarmIDFromString(input.ID)
	if err != nil {
		return NewValidationError("alarm_id", err.Error())
	}

	now := uc.now()

	if err := uc.store.Update(ctx, func(state *domain.AlarmManagerState) (bool, error) {
		if err := state.Dismiss(id, now); err != nil {
			return false, err
		}

		return true, nil
	}); err != nil {
		return uc.lifecycleError(ctx, "dismiss", input.ID, err)
	}

	slog.InfoContext(ctx, "alarm dismissed",
		"alarm_id", input.ID,
	)

	return nil
}

func (uc *alarmUseCaseImpl) ClearWorkspaceTaskAlarms(ctx context.Context, input ClearWorkspaceTaskAlarmsInput) (ClearWorkspaceTaskAlarmsOutput, error) {
	slog.DebugContext(ctx, "clearing workspace task alarms",
		"workspace_id", input.WorkspaceID,
	)

	workspaceID, err := domain.WorkspaceIDFromInt64(input.WorkspaceID)
	if err != nil {
		return ClearWorkspaceTaskAlarmsOutput{}, NewValidationError("workspace_id", err.Error())
	}

	var removed int

	if err := uc.store.Update(ctx, func(state *domain.AlarmManagerState) (bool, error) {
		removed = state.ClearWorkspaceTaskAlarms(workspaceID)

		return removed > 0, nil
	}); err != nil {
		return ClearWorkspaceTaskAlarmsOutput{}, err
	}

	slog.InfoContext(ctx, "workspace task alarms cleared",
		"workspace_id", input.WorkspaceID,
		"removed", removed,
	)

	return ClearWorkspaceTaskAlarmsOutput{Removed: removed}, nil
}

func (uc *alarmUseCaseImpl) FireDueAlarms(ctx context.Context) ([]AlarmFiredOutput, error) {
	now := uc.now()

	var fired []*domain.Alarm

	err := uc.store.Update(ctx, func(state *domain.AlarmManagerState) (bool, error) {
		fired = state.FireDue(now)

		return len(fired) > 0, nil
	})

	outputs := make([]AlarmFiredOutput, 0, len(fired))
	for _, a := range fired {
		outputs = append(outputs, FromFired(a))
	}

	if len(outputs) > 0 {
		uc.metrics.RecordFired(ctx, len(outputs))
		slog.InfoContext(ctx, "due alarms fired",
			"count", len(outputs),
		)
	}

	// The transitions are committed in memory even when the save failed, so the
	// fired alarms are still returned for notification.
	return outputs, err
}

func (uc *alarmUseCaseImpl) lifecycleError(ctx context.Context, op, alarmID string, err error) error {
	if errors.Is(err, domain.ErrAlarmNotFound) {
		slog.WarnContext(ctx, "alarm not found",
			"operation", op,
			"alarm_id", alarmID,
		)

		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return err
}

func toTaskAlarmSpec(index int, in TaskAlarmInput) (domain.TaskAlarmSpec, error) {
	taskID, err := domain.TaskIDFromInt64(in.TaskID)
	if err != nil {
		return domain.TaskAlarmSpec{}, NewValidationError(fmt.Sprintf("alarms[%d].task_id", index), err.Error())
	}

	workspaceID, err := domain.WorkspaceIDFromInt64(in.WorkspaceID)
	if err != nil {
		return domain.TaskAlarmSpec{}, NewValidationError(fmt.Sprintf("alarms[%d].workspace_id", index), err.Error())
	}

	if in.StartAt.IsZero() {
		return domain.TaskAlarmSpec{}, NewValidationError(fmt.Sprintf("alarms[%d].start_at", index), "start time is required")
	}

	return domain.TaskAlarmSpec{
		TaskID:                taskID,
		WorkspaceID:           workspaceID,
		Title:                 in.Title,
		StartAt:               in.StartAt,
		ReminderMinutesBefore: in.ReminderMinutesBefore,
		Enabled:               in.IsEnabled,
	}, nil
}
