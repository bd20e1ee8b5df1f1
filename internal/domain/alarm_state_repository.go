package domain

import (
	"context"
)

// AlarmStateRepository persists the whole AlarmManagerState as one unit.
// Load returns a default state when nothing has been saved yet.
type AlarmStateRepository interface {
	Load(ctx context.Context) (*AlarmManagerState, error)
	Save(ctx context.Context, state *AlarmManagerState) error
}
