package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/KasumiMercury/primind-task-alarm/internal/domain"
)

type fileAlarmStateRepository struct {
	path string
}

// NewFileAlarmStateRepository stores the state as one JSON document at path.
func NewFileAlarmStateRepository(path string) domain.AlarmStateRepository {
	return &fileAlarmStateRepository{
		path: path,
	}
}

func (r *fileAlarmStateRepository) Load(ctx context.Context) (*domain.AlarmManagerState, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.DebugContext(ctx, "alarm state file not found, using defaults",
				"path", r.path,
			)

			return domain.NewAlarmManagerState(), nil
		}

		return nil, fmt.Errorf("failed to read alarm state: %w", err)
	}

	state, err := DecodeDocument(data)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "alarm state loaded",
		"path", r.path,
		"alarm_count", state.Len(),
	)

	return state, nil
}

// Save rewrites the whole document through a temporary file and a rename, so
// an interrupted write leaves the previous document in place.
func (r *fileAlarmStateRepository) Save(ctx context.Context, state *domain.AlarmManagerState) error {
	data, err := EncodeDocument(state)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create alarm state directory: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write alarm state: %w", err)
	}

	if err := os.Rename(tmp, r.path); err != nil {
		_ = os.Remove(tmp)

		return fmt.Errorf("failed to replace alarm state: %w", err)
	}

	slog.DebugContext(ctx, "alarm state saved",
		"path", r.path,
		"alarm_count", state.Len(),
	)

	return nil
}
