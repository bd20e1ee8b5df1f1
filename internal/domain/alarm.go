package domain

import (
	"math"
	"time"
)

const (
	DefaultReminderMinutesBefore = 10
	MinSnoozeMinutes             = 1
	// MaxOffsetMinutes bounds reminder and snooze offsets.
	MaxOffsetMinutes = math.MaxInt32
)

// ClampReminderMinutes limits a reminder offset to [0, MaxOffsetMinutes].
func ClampReminderMinutes(minutes int) int {
	return min(max(minutes, 0), MaxOffsetMinutes)
}

// ShiftMinutes moves t by minutes in whole seconds. The offset saturates at
// MaxOffsetMinutes in either direction.
func ShiftMinutes(t time.Time, minutes int) time.Time {
	minutes = min(max(minutes, -MaxOffsetMinutes), MaxOffsetMinutes)

	return time.Unix(t.Unix()+int64(minutes)*60, 0).UTC()
}

// TaskAlarmSpec is the desired state of the alarm for one task, as declared by the caller of a sync.
type TaskAlarmSpec struct {
	TaskID                TaskID
	WorkspaceID           WorkspaceID
	Title                 string
	StartAt               time.Time
	ReminderMinutesBefore *int
	Enabled               *bool
}

type Alarm struct {
	id                    AlarmID
	taskID                TaskID
	workspaceID           WorkspaceID
	title                 string
	startAt               time.Time
	triggerAt             time.Time
	nextTriggerAt         *time.Time
	status                AlarmStatus
	enabled               bool
	reminderMinutesBefore int
	lastTriggeredAt       *time.Time
	createdAt             time.Time
	updatedAt             time.Time
}

// NewTaskAlarm builds the candidate alarm for spec at instant now.
// Disabled specs and specs whose start is not in the future are built dismissed.
func NewTaskAlarm(spec TaskAlarmSpec, now time.Time) *Alarm {
	now = truncateToSecond(now)
	startAt := truncateToSecond(spec.StartAt)

	reminder := DefaultReminderMinutesBefore
	if spec.ReminderMinutesBefore != nil {
		reminder = ClampReminderMinutes(*spec.ReminderMinutesBefore)
	}

	enabled := true
	if spec.Enabled != nil {
		enabled = *spec.Enabled
	}

	triggerAt := ShiftMinutes(startAt, -reminder)

	alarm := &Alarm{
		id:                    TaskAlarmID(spec.WorkspaceID, spec.TaskID, startAt),
		taskID:                spec.TaskID,
		workspaceID:           spec.WorkspaceID,
		title:                 spec.Title,
		startAt:               startAt,
		triggerAt:             triggerAt,
		reminderMinutesBefore: reminder,
		createdAt:             now,
		updatedAt:             now,
	}

	if !enabled || !startAt.After(now) {
		alarm.status = AlarmStatusDismissed
		alarm.enabled = false

		return alarm
	}

	next := triggerAt
	if next.Before(now) {
		next = now
	}

	alarm.status = AlarmStatusPending
	alarm.enabled = true
	alarm.nextTriggerAt = &next

	return alarm
}

func Reconstitute(
	id AlarmID,
	taskID TaskID,
	workspaceID WorkspaceID,
	title string,
	startAt time.Time,
	triggerAt time.Time,
	nextTriggerAt *time.Time,
	status AlarmStatus,
	enabled bool,
	reminderMinutesBefore int,
	lastTriggeredAt *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) *Alarm {
	return &Alarm{
		id:                    id,
		taskID:                taskID,
		workspaceID:           workspaceID,
		title:                 title,
		startAt:               truncateToSecond(startAt),
		triggerAt:             truncateToSecond(triggerAt),
		nextTriggerAt:         truncateOptional(nextTriggerAt),
		status:                status,
		enabled:               enabled,
		reminderMinutesBefore: reminderMinutesBefore,
		lastTriggeredAt:       truncateOptional(lastTriggeredAt),
		createdAt:             truncateToSecond(createdAt),
		updatedAt:             truncateToSecond(updatedAt),
	}
}

// Snooze defers the alarm by minutes (at least MinSnoozeMinutes) and re-arms it.
func (a *Alarm) Snooze(now time.Time, minutes int) {
	now = truncateToSecond(now)
	minutes = min(max(minutes, MinSnoozeMinutes), MaxOffsetMinutes)

	next := ShiftMinutes(now, minutes)

	a.status = AlarmStatusSnoozed
	a.nextTriggerAt = &next
	a.enabled = true
	a.updatedAt = now
}

func (a *Alarm) Dismiss(now time.Time) {
	a.status = AlarmStatusDismissed
	a.nextTriggerAt = nil
	a.enabled = false
	a.updatedAt = truncateToSecond(now)
}

// DueAt is the instant the scheduler compares against the clock.
func (a *Alarm) DueAt() time.Time {
	if a.nextTriggerAt != nil {
		return *a.nextTriggerAt
	}

	return a.triggerAt
}

func (a *Alarm) IsDue(now time.Time) bool {
	if !a.enabled || !a.status.IsSchedulable() {
		return false
	}

	return !a.DueAt().After(now)
}

func (a *Alarm) Fire(now time.Time) {
	now = truncateToSecond(now)

	a.status = AlarmStatusFired
	a.nextTriggerAt = nil
	a.lastTriggeredAt = &now
	a.updatedAt = now
}

// inheritFrom carries state owned by this process over from the stored alarm
// with the same identity. Scheduling decisions survive only for an unchanged start.
func (a *Alarm) inheritFrom(existing *Alarm) {
	if !existing.startAt.Equal(a.startAt) {
		return
	}

	a.createdAt = existing.createdAt

	if existing.status.IsUserDecision() {
		a.status = existing.status
		a.nextTriggerAt = copyTime(existing.nextTriggerAt)
		a.lastTriggeredAt = copyTime(existing.lastTriggeredAt)

		if a.status == AlarmStatusDismissed {
			a.enabled = false
		}

		if !a.enabled {
			a.nextTriggerAt = nil
		}
	}
}

func (a *Alarm) clone() *Alarm {
	c := *a
	c.nextTriggerAt = copyTime(a.nextTriggerAt)
	c.lastTriggeredAt = copyTime(a.lastTriggeredAt)

	return &c
}

func (a *Alarm) ID() AlarmID {
	return a.id
}

func (a *Alarm) TaskID() TaskID {
	return a.taskID
}

func (a *Alarm) WorkspaceID() WorkspaceID {
	return a.workspaceID
}

func (a *Alarm) Title() string {
	return a.title
}

func (a *Alarm) StartAt() time.Time {
	return a.startAt
}

func (a *Alarm) TriggerAt() time.Time {
	return a.triggerAt
}

func (a *Alarm) NextTriggerAt() *time.Time {
	return copyTime(a.nextTriggerAt)
}

func (a *Alarm) Status() AlarmStatus {
	return a.status
}

func (a *Alarm) IsEnabled() bool {
	return a.enabled
}

func (a *Alarm) ReminderMinutesBefore() int {
	return a.reminderMinutesBefore
}

func (a *Alarm) LastTriggeredAt() *time.Time {
	return copyTime(a.lastTriggeredAt)
}

func (a *Alarm) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Alarm) UpdatedAt() time.Time {
	return a.updatedAt
}

// Alarm instants are kept at second precision in UTC, matching the persisted form.
func truncateToSecond(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}

	return time.Unix(t.Unix(), 0).UTC()
}

func truncateOptional(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := truncateToSecond(*t)

	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	v := *t

	return &v
}
