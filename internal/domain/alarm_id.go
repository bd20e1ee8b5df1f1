package domain

import (
	"fmt"
	"strings"
	"time"
)

const taskAlarmPrefix = "task:"

type AlarmID struct {
	value string
}

// TaskAlarmID derives the identity of the alarm for one task occurrence.
// The same (workspace, task, start) always yields the same ID.
func TaskAlarmID(workspaceID WorkspaceID, taskID TaskID, startAt time.Time) AlarmID {
	return AlarmID{
		value: fmt.Sprintf("%s%d:%d:%d", taskAlarmPrefix, workspaceID.Int64(), taskID.Int64(), startAt.Unix()),
	}
}

func AlarmIDFromString(s string) (AlarmID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return AlarmID{}, ErrInvalidAlarmID
	}

	return AlarmID{value: s}, nil
}

func (a AlarmID) String() string {
	return a.value
}

func (a AlarmID) IsZero() bool {
	return a.value == ""
}

func (a AlarmID) Equals(other AlarmID) bool {
	return a.value == other.value
}

// IsTaskAlarm reports whether the alarm was derived from a task by TaskAlarmID.
func (a AlarmID) IsTaskAlarm() bool {
	return strings.HasPrefix(a.value, taskAlarmPrefix)
}
