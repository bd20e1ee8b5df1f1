//go:build !gcloud

package main

import (
	"context"
	"log/slog"

	"github.com/KasumiMercury/primind-task-alarm/internal/config"
	"github.com/KasumiMercury/primind-task-alarm/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-task-alarm/internal/observability"
	"github.com/KasumiMercury/primind-task-alarm/internal/observability/logging"
)

func initPublisher(ctx context.Context, cfg *config.Config) (pubsub.Publisher, error) {
	if cfg.PubSub.NATSURL == "" {
		slog.Info("NATS_URL not set, alarm events stay in-process")
		return nil, nil
	}

	publisher, err := pubsub.NewNATSPublisherWithStream(ctx, pubsub.NATSPublisherConfig{
		URL: cfg.PubSub.NATSURL,
	})
	if err != nil {
		return nil, err
	}

	slog.Info("NATS publisher initialized", "url", cfg.PubSub.NATSURL)
	return publisher, nil
}

func initObservability(ctx context.Context, cfg *config.Config) (*observability.Resources, error) {
	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:    serviceName,
			Version: Version,
		},
		Environment:   logging.Environment(cfg.Observability.Environment),
		LogLevel:      logging.ParseLevel(cfg.Log.Level),
		OTLPEndpoint:  cfg.Observability.OTLPEndpoint,
		SamplingRate:  cfg.Observability.SamplingRate,
		DefaultModule: logging.ModuleAlarm,
	})
}
