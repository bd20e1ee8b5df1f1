package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/KasumiMercury/primind-task-alarm/internal/observability/logging"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	return entry
}

func newTestLogger(buf *bytes.Buffer, level slog.Level) *slog.Logger {
	return slog.New(logging.NewHandler(logging.Config{
		ServiceInfo:   logging.ServiceInfo{Name: "task-alarm", Version: "test"},
		Environment:   logging.EnvDev,
		Level:         level,
		DefaultModule: logging.ModuleAlarm,
		Writer:        buf,
	}))
}

func TestContextHandlerSuccess(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	tests := []struct {
		name           string
		ctx            context.Context
		expectedModule string
		expectedReqID  any
		expectedTrace  any
	}{
		{
			name:           "default module only",
			ctx:            context.Background(),
			expectedModule: "alarm",
		},
		{
			name:           "request id and module from context",
			ctx:            logging.WithModule(logging.WithRequestID(context.Background(), "req-1"), logging.ModuleScheduler),
			expectedModule: "scheduler",
			expectedReqID:  "req-1",
		},
		{
			name:           "span context adds trace ids",
			ctx:            trace.ContextWithSpanContext(context.Background(), spanCtx),
			expectedModule: "alarm",
			expectedTrace:  "4bf92f3577b34da6a3ce929d0e0e4736",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			newTestLogger(&buf, slog.LevelInfo).InfoContext(tt.ctx, "alarm fired", "alarm_id", "task:1:2:3")

			entry := decodeLine(t, &buf)
			assert.Equal(t, "task-alarm", entry["service.name"])
			assert.Equal(t, "task:1:2:3", entry["alarm_id"])
			assert.Equal(t, tt.expectedModule, entry["module"])
			assert.Equal(t, tt.expectedReqID, entry["request_id"])
			assert.Equal(t, tt.expectedTrace, entry["trace_id"])
		})
	}
}

func TestContextHandlerLevelSuccess(t *testing.T) {
	var buf bytes.Buffer

	logger := newTestLogger(&buf, logging.ParseLevel("warn"))
	logger.Info("dropped")

	assert.Zero(t, buf.Len())

	logger.Warn("kept")

	assert.NotZero(t, buf.Len())
}

func TestParseLevelSuccess(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{input: "debug", expected: slog.LevelDebug},
		{input: "INFO", expected: slog.LevelInfo},
		{input: "warn", expected: slog.LevelWarn},
		{input: "error", expected: slog.LevelError},
		{input: "verbose", expected: slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, logging.ParseLevel(tt.input))
		})
	}
}

func TestValidateAndExtractRequestIDSuccess(t *testing.T) {
	valid := uuid.NewString()

	tests := []struct {
		name      string
		header    string
		keepInput bool
	}{
		{
			name:      "valid uuid is kept",
			header:    valid,
			keepInput: true,
		},
		{
			name:   "empty header generates id",
			header: "",
		},
		{
			name:   "garbage header generates id",
			header: "not-a-uuid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := logging.ValidateAndExtractRequestID(tt.header)

			_, err := uuid.Parse(id)
			assert.NoError(t, err)

			if tt.keepInput {
				assert.Equal(t, tt.header, id)
			} else {
				assert.NotEqual(t, tt.header, id)
			}
		})
	}
}
