//go:build gcloud

package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-googlecloud/pkg/googlecloud"
	"github.com/ThreeDotsLabs/watermill/message"
)

type GCloudPublisher struct {
	publisher message.Publisher
}

type GCloudPublisherConfig struct {
	ProjectID string
}

func NewGCloudPublisher(_ context.Context, cfg GCloudPublisherConfig) (*GCloudPublisher, error) {
	publisher, err := googlecloud.NewPublisher(
		googlecloud.PublisherConfig{
			ProjectID: cfg.ProjectID,
		},
		watermill.NewSlogLogger(slog.Default()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Cloud publisher: %w", err)
	}

	return &GCloudPublisher{publisher: publisher}, nil
}

func (p *GCloudPublisher) PublishAlarmFired(ctx context.Context, event *AlarmFiredEvent) error {
	return publishAlarmFired(ctx, p.publisher, event)
}

func (p *GCloudPublisher) Close() error {
	return p.publisher.Close()
}
