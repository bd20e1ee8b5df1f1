package domain

import "fmt"

type AlarmStatus string

const (
	AlarmStatusPending   AlarmStatus = "pending"
	AlarmStatusSnoozed   AlarmStatus = "snoozed"
	AlarmStatusFired     AlarmStatus = "fired"
	AlarmStatusDismissed AlarmStatus = "dismissed"
)

func NewAlarmStatus(s string) (AlarmStatus, error) {
	switch s {
	case string(AlarmStatusPending), string(AlarmStatusSnoozed), string(AlarmStatusFired), string(AlarmStatusDismissed):
		return AlarmStatus(s), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidAlarmStatus, s)
	}
}

// IsSchedulable reports whether the scheduler may still fire an alarm in this status.
func (s AlarmStatus) IsSchedulable() bool {
	return s == AlarmStatusPending || s == AlarmStatusSnoozed
}

// IsUserDecision reports whether the status records a local snooze or dismiss
// that a resync of the same schedule must keep.
func (s AlarmStatus) IsUserDecision() bool {
	return s == AlarmStatusSnoozed || s == AlarmStatusDismissed
}

func (s AlarmStatus) String() string {
	return string(s)
}
