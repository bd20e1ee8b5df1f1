package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/KasumiMercury/primind-task-alarm/internal/app"
	"github.com/KasumiMercury/primind-task-alarm/internal/observability/logging"
)

const DefaultTickInterval = 15 * time.Second

type Emitter interface {
	Emit(ctx context.Context, fired []app.AlarmFiredOutput) int
}

// Scheduler fires due alarms on a fixed cadence. Each tick runs to
// completion before the next one starts.
type Scheduler struct {
	useCase  app.AlarmUseCase
	emitter  Emitter
	interval time.Duration
}

func New(useCase app.AlarmUseCase, emitter Emitter, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	return &Scheduler{
		useCase:  useCase,
		emitter:  emitter,
		interval: interval,
	}
}

// Run blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ctx = logging.WithModule(ctx, logging.ModuleScheduler)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "alarm scheduler started",
		"event", "scheduler.start",
		"interval", s.interval.String(),
	)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "alarm scheduler stopped",
				"event", "scheduler.stop",
			)

			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick fires every due alarm once and hands the fired alarms to the emitter.
// It returns the number of alarms fired.
func (s *Scheduler) Tick(ctx context.Context) int {
	fired, err := s.useCase.FireDueAlarms(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to persist fired alarms",
			"event", "scheduler.tick.fail",
			"fired_count", len(fired),
			"error", err,
		)
	}

	if len(fired) == 0 {
		return 0
	}

	delivered := s.emitter.Emit(ctx, fired)

	slog.InfoContext(ctx, "alarm tick completed",
		"event", "scheduler.tick",
		"fired_count", len(fired),
		"delivered_count", delivered,
	)

	return len(fired)
}
