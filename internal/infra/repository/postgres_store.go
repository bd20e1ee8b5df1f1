package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KasumiMercury/primind-task-alarm/internal/domain"
)

const settingsRowID = 1

type AlarmModel struct {
	AlarmID               string     `gorm:"column:alarm_id;type:text;primaryKey"`
	Position              int        `gorm:"column:position;type:integer;not null;index:idx_task_alarms_position"`
	TaskID                int64      `gorm:"column:task_id;type:bigint;not null"`
	WorkspaceID           int64      `gorm:"column:workspace_id;type:bigint;not null;index:idx_task_alarms_workspace_id"`
	Title                 string     `gorm:"column:title;type:text;not null"`
	StartAt               time.Time  `gorm:"column:start_at;type:timestamptz;not null"`
	TriggerAt             time.Time  `gorm:"column:trigger_at;type:timestamptz;not null"`
	NextTriggerAt         *time.Time `gorm:"column:next_trigger_at;type:timestamptz"`
	Status                string     `gorm:"column:status;type:varchar(16);not null"`
	IsEnabled             bool       `gorm:"column:is_enabled;type:boolean;not null"`
	ReminderMinutesBefore int        `gorm:"column:reminder_minutes_before;type:integer;not null"`
	LastTriggeredAt       *time.Time `gorm:"column:last_triggered_at;type:timestamptz"`
	CreatedAt             time.Time  `gorm:"column:created_at;type:timestamptz;not null;autoCreateTime:false"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;type:timestamptz;not null;autoUpdateTime:false"`
}

func (AlarmModel) TableName() string {
	return "task_alarms"
}

type AlarmSettingsModel struct {
	ID                   int       `gorm:"column:id;primaryKey;autoIncrement:false"`
	NotificationsEnabled bool      `gorm:"column:notifications_enabled;type:boolean;not null;default:true"`
	UpdatedAt            time.Time `gorm:"column:updated_at;type:timestamptz;not null"`
}

func (AlarmSettingsModel) TableName() string {
	return "alarm_settings"
}

func (m *AlarmModel) ToEntity() (*domain.Alarm, error) {
	id, err := domain.AlarmIDFromString(m.AlarmID)
	if err != nil {
		return nil, err
	}

	taskID, err := domain.TaskIDFromInt64(m.TaskID)
	if err != nil {
		return nil, err
	}

	workspaceID, err := domain.WorkspaceIDFromInt64(m.WorkspaceID)
	if err != nil {
		return nil, err
	}

	status, err := domain.NewAlarmStatus(m.Status)
	if err != nil {
		return nil, err
	}

	return domain.Reconstitute(
		id,
		taskID,
		workspaceID,
		m.Title,
		m.StartAt,
		m.TriggerAt,
		m.NextTriggerAt,
		status,
		m.IsEnabled,
		m.ReminderMinutesBefore,
		m.LastTriggeredAt,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func FromEntityModel(a *domain.Alarm, position int) *AlarmModel {
	return &AlarmModel{
		AlarmID:               a.ID().String(),
		Position:              position,
		TaskID:                a.TaskID().Int64(),
		WorkspaceID:           a.WorkspaceID().Int64(),
		Title:                 a.Title(),
		StartAt:               a.StartAt(),
		TriggerAt:             a.TriggerAt(),
		NextTriggerAt:         a.NextTriggerAt(),
		Status:                a.Status().String(),
		IsEnabled:             a.IsEnabled(),
		ReminderMinutesBefore: a.ReminderMinutesBefore(),
		LastTriggeredAt:       a.LastTriggeredAt(),
		CreatedAt:             a.CreatedAt(),
		UpdatedAt:             a.UpdatedAt(),
	}
}

// Migrate creates or updates the alarm tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&AlarmModel{}, &AlarmSettingsModel{})
}

type postgresAlarmStateRepository struct {
	db *gorm.DB
}

// NewPostgresAlarmStateRepository keeps the state in two tables; the document
// semantics hold because Save replaces every row inside one transaction.
func NewPostgresAlarmStateRepository(db *gorm.DB) domain.AlarmStateRepository {
	return &postgresAlarmStateRepository{
		db: db,
	}
}

func (r *postgresAlarmStateRepository) Load(ctx context.Context) (*domain.AlarmManagerState, error) {
	enabled := true

	var settings AlarmSettingsModel

	result := r.db.WithContext(ctx).Where("id = ?", settingsRowID).First(&settings)

	switch {
	case result.Error == nil:
		enabled = settings.NotificationsEnabled
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		slog.DebugContext(ctx, "alarm settings row not found, using defaults")
	default:
		return nil, fmt.Errorf("failed to load alarm settings: %w", result.Error)
	}

	var models []AlarmModel
	if err := r.db.WithContext(ctx).Order("position ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load alarms: %w", err)
	}

	alarms := make([]*domain.Alarm, 0, len(models))

	for i := range models {
		alarm, err := models[i].ToEntity()
		if err != nil {
			slog.WarnContext(ctx, "skipping unreadable alarm row",
				"alarm_id", models[i].AlarmID,
				"error", err,
			)

			continue
		}

		alarms = append(alarms, alarm)
	}

	slog.DebugContext(ctx, "alarm state loaded from database",
		"alarm_count", len(alarms),
	)

	return domain.ReconstituteAlarmManagerState(enabled, alarms), nil
}

func (r *postgresAlarmStateRepository) Save(ctx context.Context, state *domain.AlarmManagerState) error {
	alarms := state.Alarms()

	models := make([]*AlarmModel, 0, len(alarms))
	for i, a := range alarms {
		models = append(models, FromEntityModel(a, i))
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&AlarmModel{}).Error; err != nil {
			return err
		}

		if len(models) > 0 {
			if err := tx.CreateInBatches(models, 100).Error; err != nil {
				return err
			}
		}

		settings := AlarmSettingsModel{
			ID:                   settingsRowID,
			NotificationsEnabled: state.NotificationsEnabled(),
			UpdatedAt:            time.Now().UTC(),
		}

		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"notifications_enabled", "updated_at"}),
		}).Create(&settings).Error
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to save alarm state to database",
			"alarm_count", len(models),
			"error", err,
		)

		return fmt.Errorf("failed to save alarm state: %w", err)
	}

	slog.DebugContext(ctx, "alarm state saved to database",
		"alarm_count", len(models),
	)

	return nil
}
