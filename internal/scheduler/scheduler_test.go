package scheduler_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-alarm/internal/app"
	"github.com/KasumiMercury/primind-task-alarm/internal/infra/repository"
	"github.com/KasumiMercury/primind-task-alarm/internal/scheduler"
)

var baseNow = time.Unix(1_700_000_000, 0).UTC()

type recordingEmitter struct {
	mu    sync.Mutex
	fired []app.AlarmFiredOutput
}

func (e *recordingEmitter) Emit(_ context.Context, fired []app.AlarmFiredOutput) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.fired = append(e.fired, fired...)

	return len(fired)
}

func (e *recordingEmitter) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.fired)
}

func setupScheduler(t *testing.T, now func() time.Time, interval time.Duration) (app.AlarmUseCase, *recordingEmitter, *scheduler.Scheduler) {
	t.Helper()

	repo := repository.NewFileAlarmStateRepository(filepath.Join(t.TempDir(), "alarm_state.json"))
	useCase := app.NewAlarmUseCase(app.OpenAlarmStore(context.Background(), repo), app.WithClock(now))
	emitter := &recordingEmitter{}

	return useCase, emitter, scheduler.New(useCase, emitter, interval)
}

func syncOne(t *testing.T, useCase app.AlarmUseCase, startAt time.Time) {
	t.Helper()

	_, err := useCase.SyncTaskAlarms(context.Background(), app.SyncTaskAlarmsInput{
		Alarms: []app.TaskAlarmInput{{
			TaskID:      1,
			WorkspaceID: 9,
			Title:       "standup",
			StartAt:     startAt,
		}},
	})
	require.NoError(t, err)
}

func TestTickSuccess(t *testing.T) {
	tests := []struct {
		name          string
		startIn       time.Duration
		expectedFired int
	}{
		{
			name:          "due alarm is fired and emitted",
			startIn:       5 * time.Minute,
			expectedFired: 1,
		},
		{
			name:          "future alarm is left alone",
			startIn:       time.Hour,
			expectedFired: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase, emitter, s := setupScheduler(t, func() time.Time { return baseNow }, time.Minute)
			syncOne(t, useCase, baseNow.Add(tt.startIn))

			assert.Equal(t, tt.expectedFired, s.Tick(context.Background()))
			assert.Equal(t, tt.expectedFired, emitter.count())

			assert.Equal(t, 0, s.Tick(context.Background()))
			assert.Equal(t, tt.expectedFired, emitter.count())
		})
	}
}

func TestRunFiresOnTickerSuccess(t *testing.T) {
	useCase, emitter, s := setupScheduler(t, func() time.Time { return baseNow }, 10*time.Millisecond)
	syncOne(t, useCase, baseNow.Add(5*time.Minute))

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})

	go func() {
		s.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return emitter.count() == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}

	assert.Equal(t, 1, emitter.count())
}
