package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KasumiMercury/primind-task-alarm/internal/domain"
)

// AlarmStore owns the single in-process AlarmManagerState. Every read and
// mutation goes through its lock; changed state is saved before the lock
// is released.
type AlarmStore struct {
	mu    sync.Mutex
	repo  domain.AlarmStateRepository
	state *domain.AlarmManagerState
}

// OpenAlarmStore loads the persisted state. Unreadable state is replaced by
// defaults rather than reported.
func OpenAlarmStore(ctx context.Context, repo domain.AlarmStateRepository) *AlarmStore {
	return &AlarmStore{
		repo:  repo,
		state: loadOrDefault(ctx, repo),
	}
}

func loadOrDefault(ctx context.Context, repo domain.AlarmStateRepository) *domain.AlarmManagerState {
	state, err := repo.Load(ctx)
	if err != nil {
		slog.WarnContext(ctx, "alarm state unreadable, starting from defaults",
			"event", "store.load.recover",
			"error", err,
		)

		return domain.NewAlarmManagerState()
	}

	if state == nil {
		return domain.NewAlarmManagerState()
	}

	return state
}

// Snapshot returns a deep copy safe to read without the lock.
func (s *AlarmStore) Snapshot() *domain.AlarmManagerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Clone()
}

// Update applies fn under the lock and saves when fn reports a change.
//
// A panic inside fn leaves the in-memory state suspect: it is replaced by the
// last persisted state and the call fails with ErrStateLock.
func (s *AlarmStore) Update(ctx context.Context, fn func(state *domain.AlarmManagerState) (bool, error)) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			slog.ErrorContext(ctx, "alarm state mutation panicked, reloading persisted state",
				"event", "store.mutation.panic",
				"error", rec,
			)

			s.state = loadOrDefault(ctx, s.repo)
			err = fmt.Errorf("%w: %v", ErrStateLock, rec)
		}
	}()

	changed, err := fn(s.state)
	if err != nil {
		return err
	}

	if !changed {
		return nil
	}

	if err := s.repo.Save(ctx, s.state); err != nil {
		slog.ErrorContext(ctx, "failed to save alarm state",
			"event", "store.save.fail",
			"error", err,
		)

		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return nil
}
