package domain

import (
	"time"
)

// AlarmManagerState is the aggregate root persisted as one unit: the global
// notification switch and the alarms in insertion order.
type AlarmManagerState struct {
	notificationsEnabled bool
	alarms               []*Alarm
}

func NewAlarmManagerState() *AlarmManagerState {
	return &AlarmManagerState{
		notificationsEnabled: true,
		alarms:               make([]*Alarm, 0),
	}
}

func ReconstituteAlarmManagerState(notificationsEnabled bool, alarms []*Alarm) *AlarmManagerState {
	if alarms == nil {
		alarms = make([]*Alarm, 0)
	}

	return &AlarmManagerState{
		notificationsEnabled: notificationsEnabled,
		alarms:               alarms,
	}
}

func (s *AlarmManagerState) NotificationsEnabled() bool {
	return s.notificationsEnabled
}

// SetNotificationsEnabled toggles the global switch and reports whether it changed.
func (s *AlarmManagerState) SetNotificationsEnabled(enabled bool) bool {
	if s.notificationsEnabled == enabled {
		return false
	}

	s.notificationsEnabled = enabled

	return true
}

func (s *AlarmManagerState) Alarms() []*Alarm {
	out := make([]*Alarm, len(s.alarms))
	copy(out, s.alarms)

	return out
}

func (s *AlarmManagerState) Len() int {
	return len(s.alarms)
}

func (s *AlarmManagerState) Find(id AlarmID) (*Alarm, error) {
	for _, a := range s.alarms {
		if a.id.Equals(id) {
			return a, nil
		}
	}

	return nil, ErrAlarmNotFound
}

// Reconcile converges the stored task alarms toward specs and returns the
// resulting alarm count.
//
// Only task alarms of workspaces named in specs are replaced; other
// workspaces and non-task alarms are left alone. A stored snooze or dismiss
// survives when the schedule (start instant) is unchanged.
func (s *AlarmManagerState) Reconcile(now time.Time, specs []TaskAlarmSpec) int {
	now = truncateToSecond(now)

	workspaces := make(map[WorkspaceID]struct{}, len(specs))
	incoming := make(map[AlarmID]struct{}, len(specs))
	candidates := make([]*Alarm, 0, len(specs))

	for _, spec := range specs {
		candidate := NewTaskAlarm(spec, now)

		workspaces[candidate.workspaceID] = struct{}{}
		incoming[candidate.id] = struct{}{}
		candidates = append(candidates, candidate)
	}

	existing := make(map[AlarmID]*Alarm, len(s.alarms))
	for _, a := range s.alarms {
		if _, ok := existing[a.id]; !ok {
			existing[a.id] = a
		}
	}

	kept := make([]*Alarm, 0, len(s.alarms)+len(candidates))
	for _, a := range s.alarms {
		if !a.id.IsTaskAlarm() {
			kept = append(kept, a)

			continue
		}

		if _, affected := workspaces[a.workspaceID]; !affected {
			kept = append(kept, a)

			continue
		}

		if _, ok := incoming[a.id]; ok {
			kept = append(kept, a)
		}
	}

	for _, candidate := range candidates {
		if prev, ok := existing[candidate.id]; ok {
			candidate.inheritFrom(prev)
		}

		candidate.updatedAt = now

		kept = removeAlarm(kept, candidate.id)
		kept = append(kept, candidate)
	}

	s.alarms = kept

	return len(s.alarms)
}

func (s *AlarmManagerState) Snooze(id AlarmID, now time.Time, minutes int) error {
	alarm, err := s.Find(id)
	if err != nil {
		return err
	}

	alarm.Snooze(now, minutes)

	return nil
}

func (s *AlarmManagerState) Dismiss(id AlarmID, now time.Time) error {
	alarm, err := s.Find(id)
	if err != nil {
		return err
	}

	alarm.Dismiss(now)

	return nil
}

// ClearWorkspaceTaskAlarms removes every task alarm of the workspace and
// returns how many were removed.
func (s *AlarmManagerState) ClearWorkspaceTaskAlarms(workspaceID WorkspaceID) int {
	kept := make([]*Alarm, 0, len(s.alarms))
	for _, a := range s.alarms {
		if a.id.IsTaskAlarm() && a.workspaceID.Equals(workspaceID) {
			continue
		}

		kept = append(kept, a)
	}

	removed := len(s.alarms) - len(kept)
	s.alarms = kept

	return removed
}

// FireDue moves every due alarm to fired and returns copies of them.
// Nothing fires while notifications are globally disabled.
func (s *AlarmManagerState) FireDue(now time.Time) []*Alarm {
	if !s.notificationsEnabled {
		return nil
	}

	var fired []*Alarm

	for _, a := range s.alarms {
		if !a.IsDue(now) {
			continue
		}

		a.Fire(now)
		fired = append(fired, a.clone())
	}

	return fired
}

func (s *AlarmManagerState) Clone() *AlarmManagerState {
	alarms := make([]*Alarm, 0, len(s.alarms))
	for _, a := range s.alarms {
		alarms = append(alarms, a.clone())
	}

	return &AlarmManagerState{
		notificationsEnabled: s.notificationsEnabled,
		alarms:               alarms,
	}
}

func removeAlarm(alarms []*Alarm, id AlarmID) []*Alarm {
	out := alarms[:0]
	for _, a := range alarms {
		if !a.id.Equals(id) {
			out = append(out, a)
		}
	}

	return out
}
