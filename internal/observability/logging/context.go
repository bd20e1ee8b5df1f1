package logging

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Module string

const (
	ModuleAlarm     Module = "alarm"
	ModuleScheduler Module = "scheduler"
	ModuleStore     Module = "store"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	moduleKey
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}

	return ""
}

func WithModule(ctx context.Context, module Module) context.Context {
	return context.WithValue(ctx, moduleKey, module)
}

func ModuleFromContext(ctx context.Context) Module {
	if v, ok := ctx.Value(moduleKey).(Module); ok {
		return v
	}

	return ""
}

// ValidateAndExtractRequestID returns the incoming id when it is a UUID and
// a freshly generated UUIDv7 otherwise.
func ValidateAndExtractRequestID(header string) string {
	header = strings.TrimSpace(header)
	if header != "" {
		if _, err := uuid.Parse(header); err == nil {
			return header
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}
