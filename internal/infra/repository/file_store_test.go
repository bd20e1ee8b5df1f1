package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-alarm/internal/infra/repository"
)

func TestFileLoadMissingSuccess(t *testing.T) {
	repo := repository.NewFileAlarmStateRepository(filepath.Join(t.TempDir(), "missing", "alarm_state.json"))

	state, err := repo.Load(context.Background())

	require.NoError(t, err)
	assert.True(t, state.NotificationsEnabled())
	assert.Equal(t, 0, state.Len())
}

func TestFileSaveLoadSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "primind", "alarm_state.json")
	repo := repository.NewFileAlarmStateRepository(path)
	ctx := context.Background()

	state := syncedState(t)
	require.NoError(t, repo.Save(ctx, state))

	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, state, loaded)
}

func TestFileSaveOverwritesSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alarm_state.json")
	repo := repository.NewFileAlarmStateRepository(path)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, syncedState(t)))

	state := syncedState(t)
	state.ClearWorkspaceTaskAlarms(state.Alarms()[0].WorkspaceID())
	require.NoError(t, repo.Save(ctx, state))

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestFileLoadError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "corrupt json",
			content: "{not json",
		},
		{
			name:    "empty file",
			content: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "alarm_state.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			_, err := repository.NewFileAlarmStateRepository(path).Load(context.Background())

			assert.Error(t, err)
		})
	}
}

func TestFileSaveError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	repo := repository.NewFileAlarmStateRepository(filepath.Join(blocker, "alarm_state.json"))

	assert.Error(t, repo.Save(context.Background(), syncedState(t)))
}
