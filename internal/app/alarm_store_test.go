package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-alarm/internal/app"
	"github.com/KasumiMercury/primind-task-alarm/internal/domain"
	"github.com/KasumiMercury/primind-task-alarm/internal/infra/repository"
)

var baseNow = time.Unix(1_700_000_000, 0).UTC()

type stubRepository struct {
	mu      sync.Mutex
	state   *domain.AlarmManagerState
	loadErr error
	saveErr error
	saves   int
}

func (r *stubRepository) Load(_ context.Context) (*domain.AlarmManagerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.loadErr != nil {
		return nil, r.loadErr
	}

	if r.state == nil {
		return domain.NewAlarmManagerState(), nil
	}

	return r.state.Clone(), nil
}

func (r *stubRepository) Save(_ context.Context, state *domain.AlarmManagerState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saveErr != nil {
		return r.saveErr
	}

	r.saves++
	r.state = state.Clone()

	return nil
}

func (r *stubRepository) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.saves
}

func TestOpenAlarmStoreSuccess(t *testing.T) {
	persisted := domain.NewAlarmManagerState()
	persisted.SetNotificationsEnabled(false)

	tests := []struct {
		name            string
		repo            *stubRepository
		expectedEnabled bool
	}{
		{
			name:            "loads persisted state",
			repo:            &stubRepository{state: persisted},
			expectedEnabled: false,
		},
		{
			name:            "load failure falls back to defaults",
			repo:            &stubRepository{loadErr: errors.New("corrupt document")},
			expectedEnabled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := app.OpenAlarmStore(context.Background(), tt.repo)

			snapshot := store.Snapshot()
			assert.Equal(t, tt.expectedEnabled, snapshot.NotificationsEnabled())
			assert.Equal(t, 0, snapshot.Len())
		})
	}
}

func TestOpenAlarmStoreCorruptFileSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alarm_state.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	store := app.OpenAlarmStore(context.Background(), repository.NewFileAlarmStateRepository(path))

	assert.True(t, store.Snapshot().NotificationsEnabled())
}

func TestAlarmStoreUpdateSuccess(t *testing.T) {
	tests := []struct {
		name          string
		changed       bool
		expectedSaves int
	}{
		{
			name:          "changed state is saved",
			changed:       true,
			expectedSaves: 1,
		},
		{
			name:          "unchanged state is not saved",
			changed:       false,
			expectedSaves: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubRepository{}
			store := app.OpenAlarmStore(context.Background(), repo)

			err := store.Update(context.Background(), func(state *domain.AlarmManagerState) (bool, error) {
				return tt.changed, nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedSaves, repo.saveCount())
		})
	}
}

func TestAlarmStoreUpdateError(t *testing.T) {
	t.Run("save failure keeps in-memory mutation", func(t *testing.T) {
		repo := &stubRepository{saveErr: errors.New("disk full")}
		store := app.OpenAlarmStore(context.Background(), repo)

		err := store.Update(context.Background(), func(state *domain.AlarmManagerState) (bool, error) {
			return state.SetNotificationsEnabled(false), nil
		})

		assert.ErrorIs(t, err, app.ErrStorage)
		assert.False(t, store.Snapshot().NotificationsEnabled())
	})

	t.Run("mutation error is returned without saving", func(t *testing.T) {
		repo := &stubRepository{}
		store := app.OpenAlarmStore(context.Background(), repo)
		mutationErr := errors.New("rejected")

		err := store.Update(context.Background(), func(state *domain.AlarmManagerState) (bool, error) {
			return true, mutationErr
		})

		assert.ErrorIs(t, err, mutationErr)
		assert.Equal(t, 0, repo.saveCount())
	})

	t.Run("panic reloads persisted state", func(t *testing.T) {
		repo := &stubRepository{}
		store := app.OpenAlarmStore(context.Background(), repo)

		err := store.Update(context.Background(), func(state *domain.AlarmManagerState) (bool, error) {
			state.SetNotificationsEnabled(false)
			panic("torn mutation")
		})

		assert.ErrorIs(t, err, app.ErrStateLock)
		assert.True(t, store.Snapshot().NotificationsEnabled())

		err = store.Update(context.Background(), func(state *domain.AlarmManagerState) (bool, error) {
			return state.SetNotificationsEnabled(false), nil
		})
		assert.NoError(t, err)
	})
}

func TestAlarmStoreConcurrentUpdateSuccess(t *testing.T) {
	repo := &stubRepository{}
	store := app.OpenAlarmStore(context.Background(), repo)

	const workers = 16

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			_ = store.Update(context.Background(), func(state *domain.AlarmManagerState) (bool, error) {
				state.Reconcile(baseNow, []domain.TaskAlarmSpec{{
					TaskID:      domain.MustTaskID(int64(i + 1)),
					WorkspaceID: domain.MustWorkspaceID(int64(i + 1)),
					Title:       "task",
					StartAt:     baseNow.Add(time.Hour),
				}})

				return true, nil
			})
		}(i)
	}

	wg.Wait()

	assert.Equal(t, workers, store.Snapshot().Len())
	assert.Equal(t, workers, repo.saveCount())
}
