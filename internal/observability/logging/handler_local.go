//go:build !gcloud

package logging

import (
	"context"
	"log/slog"
)

func gcpTraceAttrs(_ context.Context, _ string) []slog.Attr {
	return nil
}

func platformReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	return a
}
