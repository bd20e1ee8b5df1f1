package app

import (
	"context"
)

type AlarmUseCase interface {
	GetAlarmManagerState(ctx context.Context) (AlarmManagerStateOutput, error)
	SetNotificationsEnabled(ctx context.Context, input SetNotificationsEnabledInput) error
	SyncTaskAlarms(ctx context.Context, input SyncTaskAlarmsInput) (SyncTaskAlarmsOutput, error)
	SnoozeAlarm(ctx context.Context, input SnoozeAlarmInput) error
	DismissAlarm(ctx context.Context, input DismissAlarmInput) error
	ClearWorkspaceTaskAlarms(ctx context.Context, input ClearWorkspaceTaskAlarmsInput) (ClearWorkspaceTaskAlarmsOutput, error)
	// FireDueAlarms moves every due alarm to fired and returns them for notification.
	FireDueAlarms(ctx context.Context) ([]AlarmFiredOutput, error)
}
