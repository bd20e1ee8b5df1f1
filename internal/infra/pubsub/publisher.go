package pubsub

import (
	"context"
	"io"
)

//go:generate mockgen -source=publisher.go -destination=publisher_mock.go -package=pubsub

type Publisher interface {
	PublishAlarmFired(ctx context.Context, event *AlarmFiredEvent) error
	io.Closer
}
