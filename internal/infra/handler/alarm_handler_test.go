package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KasumiMercury/primind-task-alarm/internal/app"
	"github.com/KasumiMercury/primind-task-alarm/internal/domain"
	"github.com/KasumiMercury/primind-task-alarm/internal/infra/handler"
	"github.com/KasumiMercury/primind-task-alarm/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-task-alarm/internal/infra/repository"
)

var baseNow = time.Unix(1_700_000_000, 0).UTC()

type failingRepository struct{}

func (failingRepository) Load(_ context.Context) (*domain.AlarmManagerState, error) {
	return domain.NewAlarmManagerState(), nil
}

func (failingRepository) Save(_ context.Context, _ *domain.AlarmManagerState) error {
	return errors.New("read-only file system")
}

func setupTestRouter(t *testing.T, repo domain.AlarmStateRepository, publisher *pubsub.ChannelPublisher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	if repo == nil {
		repo = repository.NewFileAlarmStateRepository(filepath.Join(t.TempDir(), "alarm_state.json"))
	}

	store := app.OpenAlarmStore(context.Background(), repo)
	useCase := app.NewAlarmUseCase(store, app.WithClock(func() time.Time { return baseNow }))

	var h *handler.AlarmHandler
	if publisher != nil {
		h = handler.NewAlarmHandler(useCase, publisher.Subscriber())
	} else {
		h = handler.NewAlarmHandler(useCase, nil)
	}

	router := gin.New()
	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func syncBody(workspaceID, taskID int64, startAt time.Time) map[string]any {
	return map[string]any{
		"alarms": []map[string]any{{
			"task_id":                 taskID,
			"workspace_id":            workspaceID,
			"title":                   "standup",
			"start_at":                startAt.Format(time.RFC3339),
			"reminder_minutes_before": 10,
			"is_enabled":              true,
		}},
	}
}

func getState(t *testing.T, router *gin.Engine) handler.AlarmManagerStateResponse {
	t.Helper()

	rec := doJSON(t, router, http.MethodGet, "/api/v1/alarms/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var response handler.AlarmManagerStateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))

	return response
}

func TestSyncTaskAlarmsHandlerSuccess(t *testing.T) {
	router := setupTestRouter(t, nil, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/alarms/sync", syncBody(9, 1, baseNow.Add(time.Hour)))
	require.Equal(t, http.StatusOK, rec.Code)

	var response handler.SyncTaskAlarmsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 1, response.Count)

	state := getState(t, router)
	assert.True(t, state.NotificationsEnabled)
	require.Len(t, state.Alarms, 1)

	alarm := state.Alarms[0]
	assert.Equal(t, "task:9:1:1700003600", alarm.ID)
	assert.Equal(t, "pending", alarm.Status)
	assert.True(t, alarm.IsEnabled)
	require.NotNil(t, alarm.NextTriggerAt)
	assert.True(t, baseNow.Add(50*time.Minute).Equal(*alarm.NextTriggerAt))
}

func TestSyncTaskAlarmsHandlerError(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
	}{
		{
			name: "missing task_id",
			requestBody: map[string]any{"alarms": []map[string]any{{
				"workspace_id": 9,
				"start_at":     baseNow.Add(time.Hour).Format(time.RFC3339),
			}}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "negative workspace_id",
			requestBody: map[string]any{"alarms": []map[string]any{{
				"task_id":      1,
				"workspace_id": -3,
				"start_at":     baseNow.Add(time.Hour).Format(time.RFC3339),
			}}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing start_at",
			requestBody: map[string]any{"alarms": []map[string]any{{
				"task_id":      1,
				"workspace_id": 9,
			}}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "malformed start_at",
			requestBody: map[string]any{"alarms": []map[string]any{{
				"task_id":      1,
				"workspace_id": 9,
				"start_at":     "tomorrow",
			}}},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(t, nil, nil)

			rec := doJSON(t, router, http.MethodPost, "/api/v1/alarms/sync", tt.requestBody)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var response handler.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, "validation_error", response.Error)
		})
	}
}

func TestSyncTaskAlarmsHandlerStorageError(t *testing.T) {
	router := setupTestRouter(t, failingRepository{}, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/alarms/sync", syncBody(9, 1, baseNow.Add(time.Hour)))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var response handler.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "storage_error", response.Error)
}

func TestSetNotificationsEnabledHandlerSuccess(t *testing.T) {
	router := setupTestRouter(t, nil, nil)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/alarms/notifications", map[string]any{"enabled": false})
	require.Equal(t, http.StatusNoContent, rec.Code)

	assert.False(t, getState(t, router).NotificationsEnabled)
}

func TestSetNotificationsEnabledHandlerError(t *testing.T) {
	router := setupTestRouter(t, nil, nil)

	rec := doJSON(t, router, http.MethodPut, "/api/v1/alarms/notifications", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, getState(t, router).NotificationsEnabled)
}

func TestSnoozeAlarmHandlerSuccess(t *testing.T) {
	router := setupTestRouter(t, nil, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/alarms/sync", syncBody(9, 1, baseNow.Add(time.Hour)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/alarms/task:9:1:1700003600/snooze", map[string]any{"minutes": 5})
	require.Equal(t, http.StatusNoContent, rec.Code)

	alarm := getState(t, router).Alarms[0]
	assert.Equal(t, "snoozed", alarm.Status)
	require.NotNil(t, alarm.NextTriggerAt)
	assert.True(t, baseNow.Add(5*time.Minute).Equal(*alarm.NextTriggerAt))
}

func TestDismissAlarmHandlerSuccess(t *testing.T) {
	router := setupTestRouter(t, nil, nil)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/alarms/sync", syncBody(9, 1, baseNow.Add(time.Hour)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/alarms/task:9:1:1700003600/dismiss", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	alarm := getState(t, router).Alarms[0]
	assert.Equal(t, "dismissed", alarm.Status)
	assert.False(t, alarm.IsEnabled)
	assert.Nil(t, alarm.NextTriggerAt)
}

func TestAlarmLifecycleHandlerError(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           any
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "snooze unknown alarm",
			path:           "/api/v1/alarms/task:1:1:1/snooze",
			body:           map[string]any{"minutes": 5},
			expectedStatus: http.StatusNotFound,
			expectedError:  "not_found",
		},
		{
			name:           "dismiss unknown alarm",
			path:           "/api/v1/alarms/task:1:1:1/dismiss",
			expectedStatus: http.StatusNotFound,
			expectedError:  "not_found",
		},
		{
			name:           "snooze without body",
			path:           "/api/v1/alarms/task:1:1:1/snooze",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(t, nil, nil)

			rec := doJSON(t, router, http.MethodPost, tt.path, tt.body)

			assert.Equal(t, tt.expectedStatus, rec.Code)

			var response handler.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedError, response.Error)
		})
	}
}

func TestClearWorkspaceTaskAlarmsHandlerSuccess(t *testing.T) {
	router := setupTestRouter(t, nil, nil)

	body := map[string]any{
		"alarms": []map[string]any{
			{"task_id": 1, "workspace_id": 1, "title": "a", "start_at": baseNow.Add(time.Hour).Format(time.RFC3339)},
			{"task_id": 2, "workspace_id": 2, "title": "b", "start_at": baseNow.Add(time.Hour).Format(time.RFC3339)},
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/api/v1/alarms/sync", body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/api/v1/workspaces/1/task-alarms", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	state := getState(t, router)
	require.Len(t, state.Alarms, 1)
	assert.Equal(t, int64(2), state.Alarms[0].WorkspaceID)
}

func TestClearWorkspaceTaskAlarmsHandlerError(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{
			name: "non-numeric workspace",
			path: "/api/v1/workspaces/abc/task-alarms",
		},
		{
			name: "zero workspace",
			path: "/api/v1/workspaces/0/task-alarms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter(t, nil, nil)

			rec := doJSON(t, router, http.MethodDelete, tt.path, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestStreamAlarmEventsHandlerSuccess(t *testing.T) {
	publisher := pubsub.NewChannelPublisher()
	defer publisher.Close()

	router := setupTestRouter(t, nil, publisher)

	server := httptest.NewServer(router)
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/alarms/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.NoError(t, publisher.PublishAlarmFired(ctx, &pubsub.AlarmFiredEvent{
		AlarmID:          "task:9:1:1700003600",
		TaskID:           1,
		WorkspaceID:      9,
		Title:            "standup",
		Message:          "standup 일정 시간이 되었습니다.",
		ScheduledStartAt: 1_700_003_600,
	}))

	var eventName, data string

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event:"):
			eventName = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}

		if data != "" {
			break
		}
	}

	assert.Equal(t, pubsub.TopicAlarmFired, eventName)

	var event pubsub.AlarmFiredEvent
	require.NoError(t, json.Unmarshal([]byte(data), &event))
	assert.Equal(t, "task:9:1:1700003600", event.AlarmID)
	assert.Equal(t, "standup 일정 시간이 되었습니다.", event.Message)
}

func TestStreamAlarmEventsHandlerError(t *testing.T) {
	router := setupTestRouter(t, nil, nil)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/alarms/events", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
