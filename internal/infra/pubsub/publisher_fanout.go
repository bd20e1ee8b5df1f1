package pubsub

import (
	"context"
	"errors"
)

// FanoutPublisher hands every event to each wrapped publisher. One failing
// target does not stop delivery to the others.
type FanoutPublisher struct {
	publishers []Publisher
}

func NewFanoutPublisher(publishers ...Publisher) *FanoutPublisher {
	targets := make([]Publisher, 0, len(publishers))
	for _, p := range publishers {
		if p != nil {
			targets = append(targets, p)
		}
	}

	return &FanoutPublisher{publishers: targets}
}

func (f *FanoutPublisher) PublishAlarmFired(ctx context.Context, event *AlarmFiredEvent) error {
	var errs []error

	for _, p := range f.publishers {
		if err := p.PublishAlarmFired(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (f *FanoutPublisher) Close() error {
	var errs []error

	for _, p := range f.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
