package repository

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"

	"github.com/KasumiMercury/primind-task-alarm/internal/domain"
)

// AlarmDocument is the persisted JSON shape of the whole alarm state.
type AlarmDocument struct {
	NotificationsEnabled *bool         `json:"notifications_enabled"`
	Alarms               []AlarmRecord `json:"alarms"`
}

type AlarmRecord struct {
	AlarmID               string `json:"alarm_id"`
	TaskID                int64  `json:"task_id"`
	WorkspaceID           int64  `json:"workspace_id"`
	Title                 string `json:"title"`
	StartAtUnix           int64  `json:"start_at_unix"`
	TriggerAtUnix         *int64 `json:"trigger_at_unix"`
	NextTriggerAtUnix     *int64 `json:"next_trigger_at_unix"`
	Status                string `json:"status"`
	IsEnabled             *bool  `json:"is_enabled"`
	ReminderMinutesBefore *int   `json:"reminder_minutes_before"`
	LastTriggeredAtUnix   *int64 `json:"last_triggered_at_unix"`
	CreatedAtUnix         int64  `json:"created_at_unix"`
	UpdatedAtUnix         int64  `json:"updated_at_unix"`
}

// DecodeDocument parses a persisted document. Missing fields take their
// defaults; records that cannot be reconstituted are skipped with a warning.
func DecodeDocument(data []byte) (*domain.AlarmManagerState, error) {
	var doc AlarmDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode alarm document: %w", err)
	}

	return doc.ToState(), nil
}

func EncodeDocument(state *domain.AlarmManagerState) ([]byte, error) {
	data, err := json.MarshalIndent(FromState(state), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode alarm document: %w", err)
	}

	return data, nil
}

func (d *AlarmDocument) ToState() *domain.AlarmManagerState {
	enabled := true
	if d.NotificationsEnabled != nil {
		enabled = *d.NotificationsEnabled
	}

	seen := make(map[string]struct{}, len(d.Alarms))
	alarms := make([]*domain.Alarm, 0, len(d.Alarms))

	for i, r := range d.Alarms {
		alarm, err := r.ToEntity()
		if err != nil {
			slog.Warn("skipping unreadable alarm record",
				"index", i,
				"alarm_id", r.AlarmID,
				"error", err,
			)

			continue
		}

		if _, dup := seen[r.AlarmID]; dup {
			slog.Warn("skipping duplicate alarm record",
				"index", i,
				"alarm_id", r.AlarmID,
			)

			continue
		}

		seen[r.AlarmID] = struct{}{}
		alarms = append(alarms, alarm)
	}

	return domain.ReconstituteAlarmManagerState(enabled, alarms)
}

func (r *AlarmRecord) ToEntity() (*domain.Alarm, error) {
	id, err := domain.AlarmIDFromString(r.AlarmID)
	if err != nil {
		return nil, err
	}

	taskID, err := domain.TaskIDFromInt64(r.TaskID)
	if err != nil {
		return nil, err
	}

	workspaceID, err := domain.WorkspaceIDFromInt64(r.WorkspaceID)
	if err != nil {
		return nil, err
	}

	status := domain.AlarmStatusPending
	if r.Status != "" {
		status, err = domain.NewAlarmStatus(r.Status)
		if err != nil {
			return nil, err
		}
	}

	reminder := domain.DefaultReminderMinutesBefore
	if r.ReminderMinutesBefore != nil {
		reminder = domain.ClampReminderMinutes(*r.ReminderMinutesBefore)
	}

	enabled := true
	if r.IsEnabled != nil {
		enabled = *r.IsEnabled
	}

	startAt := fromUnix(r.StartAtUnix)

	triggerAt := domain.ShiftMinutes(startAt, -reminder)
	if r.TriggerAtUnix != nil {
		triggerAt = fromUnix(*r.TriggerAtUnix)
	}

	return domain.Reconstitute(
		id,
		taskID,
		workspaceID,
		r.Title,
		startAt,
		triggerAt,
		fromUnixPtr(r.NextTriggerAtUnix),
		status,
		enabled,
		reminder,
		fromUnixPtr(r.LastTriggeredAtUnix),
		fromUnix(r.CreatedAtUnix),
		fromUnix(r.UpdatedAtUnix),
	), nil
}

func FromState(state *domain.AlarmManagerState) *AlarmDocument {
	enabled := state.NotificationsEnabled()
	alarms := state.Alarms()

	records := make([]AlarmRecord, 0, len(alarms))
	for _, a := range alarms {
		records = append(records, FromEntity(a))
	}

	return &AlarmDocument{
		NotificationsEnabled: &enabled,
		Alarms:               records,
	}
}

func FromEntity(a *domain.Alarm) AlarmRecord {
	trigger := a.TriggerAt().Unix()
	enabled := a.IsEnabled()
	reminder := a.ReminderMinutesBefore()

	return AlarmRecord{
		AlarmID:               a.ID().String(),
		TaskID:                a.TaskID().Int64(),
		WorkspaceID:           a.WorkspaceID().Int64(),
		Title:                 a.Title(),
		StartAtUnix:           a.StartAt().Unix(),
		TriggerAtUnix:         &trigger,
		NextTriggerAtUnix:     toUnixPtr(a.NextTriggerAt()),
		Status:                a.Status().String(),
		IsEnabled:             &enabled,
		ReminderMinutesBefore: &reminder,
		LastTriggeredAtUnix:   toUnixPtr(a.LastTriggeredAt()),
		CreatedAtUnix:         a.CreatedAt().Unix(),
		UpdatedAtUnix:         a.UpdatedAt().Unix(),
	}
}

func fromUnix(v int64) time.Time {
	return time.Unix(v, 0).UTC()
}

func fromUnixPtr(v *int64) *time.Time {
	if v == nil {
		return nil
	}

	t := fromUnix(*v)

	return &t
}

func toUnixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}

	v := t.Unix()

	return &v
}
