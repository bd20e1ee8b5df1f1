package app

import "time"

type TaskAlarmInput struct {
	TaskID                int64
	WorkspaceID           int64
	Title                 string
	StartAt               time.Time
	ReminderMinutesBefore *int
	IsEnabled             *bool
}

type SyncTaskAlarmsInput struct {
	Alarms []TaskAlarmInput
}

type SetNotificationsEnabledInput struct {
	Enabled bool
}

type SnoozeAlarmInput struct {
	ID      string
	Minutes int
}

type DismissAlarmInput struct {
	ID string
}

type ClearWorkspaceTaskAlarmsInput struct {
	WorkspaceID int64
}
