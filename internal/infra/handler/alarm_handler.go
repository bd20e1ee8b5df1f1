package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-task-alarm/internal/app"
	"github.com/KasumiMercury/primind-task-alarm/internal/infra/pubsub"
)

const streamHeartbeatInterval = 30 * time.Second

type AlarmHandler struct {
	useCase    app.AlarmUseCase
	subscriber message.Subscriber
}

// NewAlarmHandler serves the alarm operations. subscriber feeds the event
// stream; a nil subscriber disables it.
func NewAlarmHandler(useCase app.AlarmUseCase, subscriber message.Subscriber) *AlarmHandler {
	return &AlarmHandler{
		useCase:    useCase,
		subscriber: subscriber,
	}
}

func (h *AlarmHandler) GetAlarmManagerState(c *gin.Context) {
	output, err := h.useCase.GetAlarmManagerState(c.Request.Context())
	if err != nil {
		h.handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, FromStateDTO(output))
}

func (h *AlarmHandler) SetNotificationsEnabled(c *gin.Context) {
	var req SetNotificationsEnabledRequest
	if !h.bindJSON(c, &req) {
		return
	}

	input := app.SetNotificationsEnabledInput{
		Enabled: *req.Enabled,
	}

	if err := h.useCase.SetNotificationsEnabled(c.Request.Context(), input); err != nil {
		h.handleError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AlarmHandler) SyncTaskAlarms(c *gin.Context) {
	slog.Info("handling sync task alarms request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)

	var req SyncTaskAlarmsRequest
	if !h.bindJSON(c, &req) {
		return
	}

	alarms := make([]app.TaskAlarmInput, 0, len(req.Alarms))
	for _, a := range req.Alarms {
		alarms = append(alarms, app.TaskAlarmInput{
			TaskID:                a.TaskID,
			WorkspaceID:           a.WorkspaceID,
			Title:                 a.Title,
			StartAt:               a.StartAt,
			ReminderMinutesBefore: a.ReminderMinutesBefore,
			IsEnabled:             a.IsEnabled,
		})
	}

	output, err := h.useCase.SyncTaskAlarms(c.Request.Context(), app.SyncTaskAlarmsInput{Alarms: alarms})
	if err != nil {
		h.handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, SyncTaskAlarmsResponse{Count: output.Count})
}

func (h *AlarmHandler) SnoozeAlarm(c *gin.Context) {
	id := c.Param("id")

	slog.Info("handling snooze alarm request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"alarm_id", id,
	)

	var req SnoozeAlarmRequest
	if !h.bindJSON(c, &req) {
		return
	}

	input := app.SnoozeAlarmInput{
		ID:      id,
		Minutes: req.Minutes,
	}

	if err := h.useCase.SnoozeAlarm(c.Request.Context(), input); err != nil {
		h.handleError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AlarmHandler) DismissAlarm(c *gin.Context) {
	id := c.Param("id")

	slog.Info("handling dismiss alarm request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"alarm_id", id,
	)

	if err := h.useCase.DismissAlarm(c.Request.Context(), app.DismissAlarmInput{ID: id}); err != nil {
		h.handleError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

func (h *AlarmHandler) ClearWorkspaceTaskAlarms(c *gin.Context) {
	var req ClearWorkspaceTaskAlarmsRequest
	if err := c.ShouldBindUri(&req); err != nil {
		slog.Warn("request validation failed",
			"error", err,
			"path", c.Request.URL.Path,
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Field:   "workspace_id",
		})

		return
	}

	input := app.ClearWorkspaceTaskAlarmsInput{
		WorkspaceID: req.WorkspaceID,
	}

	if _, err := h.useCase.ClearWorkspaceTaskAlarms(c.Request.Context(), input); err != nil {
		h.handleError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// StreamAlarmEvents relays alarm-fired events to the client as server-sent
// events until the client disconnects.
func (h *AlarmHandler) StreamAlarmEvents(c *gin.Context) {
	if h.subscriber == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "unavailable",
			Message: "event stream is not configured",
		})

		return
	}

	ctx := c.Request.Context()

	messages, err := h.subscriber.Subscribe(ctx, pubsub.TopicAlarmFired)
	if err != nil {
		slog.ErrorContext(ctx, "failed to subscribe to alarm events",
			"error", err,
		)
		h.handleError(c, err)

		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	slog.InfoContext(ctx, "alarm event stream opened")

	heartbeat := time.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-heartbeat.C:
			_, err := io.WriteString(w, ": heartbeat\n\n")

			return err == nil
		case msg, ok := <-messages:
			if !ok {
				return false
			}

			event, err := pubsub.DecodeAlarmFiredEvent(msg)
			msg.Ack()

			if err != nil {
				slog.WarnContext(ctx, "dropping undecodable alarm event",
					"message_id", msg.UUID,
					"error", err,
				)

				return true
			}

			c.SSEvent(pubsub.TopicAlarmFired, event)

			return true
		}
	})

	slog.InfoContext(ctx, "alarm event stream closed")
}

func (h *AlarmHandler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		slog.Warn("request validation failed",
			"error", err,
			"path", c.Request.URL.Path,
		)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Field:   "",
		})

		return false
	}

	return true
}

func (h *AlarmHandler) handleError(c *gin.Context, err error) {
	var validationErr *app.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: validationErr.Message,
			Field:   validationErr.Field,
		})

		return
	}

	if errors.Is(err, app.ErrNotFound) {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "resource not found",
			Field:   "",
		})

		return
	}

	if errors.Is(err, app.ErrStorage) {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "storage_error",
			Message: "alarm state could not be saved",
			Field:   "",
		})

		return
	}

	slog.ErrorContext(c.Request.Context(), "unhandled alarm request error",
		"error", err,
		"path", c.Request.URL.Path,
	)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
		Field:   "",
	})
}

func (h *AlarmHandler) RegisterRoutes(router *gin.RouterGroup) {
	alarms := router.Group("/alarms")
	{
		alarms.GET("/state", h.GetAlarmManagerState)
		alarms.PUT("/notifications", h.SetNotificationsEnabled)
		alarms.POST("/sync", h.SyncTaskAlarms)
		alarms.POST("/:id/snooze", h.SnoozeAlarm)
		alarms.POST("/:id/dismiss", h.DismissAlarm)
		alarms.GET("/events", h.StreamAlarmEvents)
	}

	workspaces := router.Group("/workspaces")
	{
		workspaces.DELETE("/:workspace_id/task-alarms", h.ClearWorkspaceTaskAlarms)
	}
}
