package handler

import (
	"time"

	"github.com/KasumiMercury/primind-task-alarm/internal/app"
)

type AlarmResponse struct {
	ID                    string     `json:"alarm_id"`
	TaskID                int64      `json:"task_id"`
	WorkspaceID           int64      `json:"workspace_id"`
	Title                 string     `json:"title"`
	StartAt               time.Time  `json:"start_at"`
	TriggerAt             time.Time  `json:"trigger_at"`
	NextTriggerAt         *time.Time `json:"next_trigger_at"`
	Status                string     `json:"status"`
	IsEnabled             bool       `json:"is_enabled"`
	ReminderMinutesBefore int        `json:"reminder_minutes_before"`
	LastTriggeredAt       *time.Time `json:"last_triggered_at"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

type AlarmManagerStateResponse struct {
	NotificationsEnabled bool            `json:"notifications_enabled"`
	Alarms               []AlarmResponse `json:"alarms"`
}

type SyncTaskAlarmsResponse struct {
	Count int `json:"count"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func FromDTO(output app.AlarmOutput) AlarmResponse {
	return AlarmResponse{
		ID:                    output.ID,
		TaskID:                output.TaskID,
		WorkspaceID:           output.WorkspaceID,
		Title:                 output.Title,
		StartAt:               output.StartAt,
		TriggerAt:             output.TriggerAt,
		NextTriggerAt:         output.NextTriggerAt,
		Status:                output.Status,
		IsEnabled:             output.IsEnabled,
		ReminderMinutesBefore: output.ReminderMinutesBefore,
		LastTriggeredAt:       output.LastTriggeredAt,
		CreatedAt:             output.CreatedAt,
		UpdatedAt:             output.UpdatedAt,
	}
}

func FromStateDTO(output app.AlarmManagerStateOutput) AlarmManagerStateResponse {
	alarms := make([]AlarmResponse, 0, len(output.Alarms))
	for _, a := range output.Alarms {
		alarms = append(alarms, FromDTO(a))
	}

	return AlarmManagerStateResponse{
		NotificationsEnabled: output.NotificationsEnabled,
		Alarms:               alarms,
	}
}
