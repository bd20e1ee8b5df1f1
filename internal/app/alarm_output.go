package app

import (
	"fmt"
	"time"

	"github.com/KasumiMercury/primind-task-alarm/internal/domain"
)

type AlarmOutput struct {
	ID                    string
	TaskID                int64
	WorkspaceID           int64
	Title                 string
	StartAt               time.Time
	TriggerAt             time.Time
	NextTriggerAt         *time.Time
	Status                string
	IsEnabled             bool
	ReminderMinutesBefore int
	LastTriggeredAt       *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type AlarmManagerStateOutput struct {
	NotificationsEnabled bool
	Alarms               []AlarmOutput
}

type SyncTaskAlarmsOutput struct {
	Count int
}

type ClearWorkspaceTaskAlarmsOutput struct {
	Removed int
}

type AlarmFiredOutput struct {
	AlarmID          string
	TaskID           int64
	WorkspaceID      int64
	Title            string
	Message          string
	ScheduledStartAt time.Time
	FiredAt          time.Time
}

func FromEntity(alarm *domain.Alarm) AlarmOutput {
	return AlarmOutput{
		ID:                    alarm.ID().String(),
		TaskID:                alarm.TaskID().Int64(),
		WorkspaceID:           alarm.WorkspaceID().Int64(),
		Title:                 alarm.Title(),
		StartAt:               alarm.StartAt(),
		TriggerAt:             alarm.TriggerAt(),
		NextTriggerAt:         alarm.NextTriggerAt(),
		Status:                alarm.Status().String(),
		IsEnabled:             alarm.IsEnabled(),
		ReminderMinutesBefore: alarm.ReminderMinutesBefore(),
		LastTriggeredAt:       alarm.LastTriggeredAt(),
		CreatedAt:             alarm.CreatedAt(),
		UpdatedAt:             alarm.UpdatedAt(),
	}
}

func FromState(state *domain.AlarmManagerState) AlarmManagerStateOutput {
	alarms := state.Alarms()

	outputs := make([]AlarmOutput, 0, len(alarms))
	for _, a := range alarms {
		outputs = append(outputs, FromEntity(a))
	}

	return AlarmManagerStateOutput{
		NotificationsEnabled: state.NotificationsEnabled(),
		Alarms:               outputs,
	}
}

// AlarmMessage is the user-facing notification text for a fired alarm.
func AlarmMessage(title string) string {
	return fmt.Sprintf("%s 일정 시간이 되었습니다.", title)
}

func FromFired(alarm *domain.Alarm) AlarmFiredOutput {
	var firedAt time.Time
	if last := alarm.LastTriggeredAt(); last != nil {
		firedAt = *last
	}

	return AlarmFiredOutput{
		AlarmID:          alarm.ID().String(),
		TaskID:           alarm.TaskID().Int64(),
		WorkspaceID:      alarm.WorkspaceID().Int64(),
		Title:            alarm.Title(),
		Message:          AlarmMessage(alarm.Title()),
		ScheduledStartAt: alarm.StartAt(),
		FiredAt:          firedAt,
	}
}
