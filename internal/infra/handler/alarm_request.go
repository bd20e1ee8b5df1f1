package handler

import "time"

type SetNotificationsEnabledRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

type SyncTaskAlarmsRequest struct {
	Alarms []TaskAlarmRequest `json:"alarms" binding:"omitempty,dive"`
}

type TaskAlarmRequest struct {
	TaskID                int64     `json:"task_id" binding:"required,gt=0"`
	WorkspaceID           int64     `json:"workspace_id" binding:"required,gt=0"`
	Title                 string    `json:"title"`
	StartAt               time.Time `json:"start_at" binding:"required"`
	ReminderMinutesBefore *int      `json:"reminder_minutes_before"`
	IsEnabled             *bool     `json:"is_enabled"`
}

type SnoozeAlarmRequest struct {
	Minutes int `json:"minutes"`
}

type ClearWorkspaceTaskAlarmsRequest struct {
	WorkspaceID int64 `uri:"workspace_id" binding:"required,gt=0"`
}
