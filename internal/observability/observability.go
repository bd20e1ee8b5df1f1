package observability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"

	"github.com/KasumiMercury/primind-task-alarm/internal/observability/logging"
	"github.com/KasumiMercury/primind-task-alarm/internal/observability/metrics"
	"github.com/KasumiMercury/primind-task-alarm/internal/observability/tracing"
)

const instrumentationName = "github.com/KasumiMercury/primind-task-alarm"

type Config struct {
	ServiceInfo   logging.ServiceInfo
	Environment   logging.Environment
	LogLevel      slog.Level
	GCPProjectID  string
	OTLPEndpoint  string
	SamplingRate  float64
	DefaultModule logging.Module
}

type Resources struct {
	Tracing      *tracing.Provider
	Metrics      *metrics.Provider
	HTTPMetrics  *metrics.HTTPMetrics
	AlarmMetrics *metrics.AlarmMetrics
}

// Init installs the default slog logger and the global tracer, meter and
// propagator.
func Init(ctx context.Context, cfg Config) (*Resources, error) {
	slog.SetDefault(slog.New(logging.NewHandler(logging.Config{
		ServiceInfo:   cfg.ServiceInfo,
		Environment:   cfg.Environment,
		Level:         cfg.LogLevel,
		GCPProjectID:  cfg.GCPProjectID,
		DefaultModule: cfg.DefaultModule,
	})))

	tp, err := tracing.NewProvider(ctx, tracing.Config{
		ServiceName:    cfg.ServiceInfo.Name,
		ServiceVersion: cfg.ServiceInfo.Version,
		Environment:    string(cfg.Environment),
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplingRate:   cfg.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}

	otel.SetTracerProvider(tp.TracerProvider())
	tracing.SetupPropagator()

	mp, err := metrics.NewProvider(ctx, metrics.Config{
		ServiceName:    cfg.ServiceInfo.Name,
		ServiceVersion: cfg.ServiceInfo.Version,
		Environment:    string(cfg.Environment),
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("failed to init metrics: %w", err), tp.Shutdown(ctx))
	}

	otel.SetMeterProvider(mp.MeterProvider())

	meter := mp.Meter(instrumentationName)

	httpMetrics, err := metrics.NewHTTPMetrics(meter)
	if err != nil {
		return nil, err
	}

	alarmMetrics, err := metrics.NewAlarmMetrics(meter)
	if err != nil {
		return nil, err
	}

	return &Resources{
		Tracing:      tp,
		Metrics:      mp,
		HTTPMetrics:  httpMetrics,
		AlarmMetrics: alarmMetrics,
	}, nil
}

func (r *Resources) Shutdown(ctx context.Context) error {
	return errors.Join(
		r.Metrics.Shutdown(ctx),
		r.Tracing.Shutdown(ctx),
	)
}
