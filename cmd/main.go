package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/KasumiMercury/primind-task-alarm/internal/app"
	"github.com/KasumiMercury/primind-task-alarm/internal/config"
	"github.com/KasumiMercury/primind-task-alarm/internal/domain"
	"github.com/KasumiMercury/primind-task-alarm/internal/infra/handler"
	"github.com/KasumiMercury/primind-task-alarm/internal/infra/pubsub"
	"github.com/KasumiMercury/primind-task-alarm/internal/infra/repository"
	"github.com/KasumiMercury/primind-task-alarm/internal/observability/logging"
	"github.com/KasumiMercury/primind-task-alarm/internal/observability/metrics"
	"github.com/KasumiMercury/primind-task-alarm/internal/observability/middleware"
	"github.com/KasumiMercury/primind-task-alarm/internal/scheduler"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

const serviceName = "primind-task-alarm"

func main() {
	os.Exit(run())
}

func run() int {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		return 1
	}

	if err := cfg.PubSub.Validate(); err != nil {
		slog.Error("pubsub configuration error", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	obs, err := initObservability(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize observability", "error", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("failed to shutdown observability", "error", err)
		}
	}()

	repo, closeRepo, err := initRepository(cfg)
	if err != nil {
		slog.Error("failed to initialize alarm state repository", "error", err)
		return 1
	}
	defer closeRepo()

	store := app.OpenAlarmStore(logging.WithModule(ctx, logging.ModuleStore), repo)
	alarmUseCase := app.NewAlarmUseCase(store, app.WithMetrics(obs.AlarmMetrics))

	channelPublisher := pubsub.NewChannelPublisher()

	externalPublisher, err := initPublisher(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize event publisher", "error", err)
		_ = channelPublisher.Close()

		return 1
	}

	publisher := pubsub.NewFanoutPublisher(channelPublisher, externalPublisher)
	defer func() {
		if err := publisher.Close(); err != nil {
			slog.Warn("failed to close publisher", "error", err)
		}
	}()

	emitter := app.NewNotificationEmitter(publisher, obs.AlarmMetrics)
	alarmScheduler := scheduler.New(alarmUseCase, emitter, cfg.Scheduler.PollInterval)

	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()
		alarmScheduler.Run(schedulerCtx)
	}()

	alarmHandler := handler.NewAlarmHandler(alarmUseCase, channelPublisher.Subscriber())
	router := setupRouter(alarmHandler, obs.Metrics, obs.HTTPMetrics)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Event streams only end when their subscription closes.
	srv.RegisterOnShutdown(func() {
		if err := channelPublisher.Close(); err != nil {
			slog.Warn("failed to close event stream channel", "error", err)
		}
	})

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			"address", cfg.Server.Address(),
			"store_backend", cfg.Store.Backend,
			"poll_interval", cfg.Scheduler.PollInterval.String(),
			"version", Version,
		)
		serverErr <- srv.ListenAndServe()
	}()

	exitCode := 0

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", "error", err)
			exitCode = 1
		}

	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server exited with error", "error", err)
			exitCode = 1
		}
	}

	stopScheduler()
	wg.Wait()

	slog.Info("server exited", "exit_code", exitCode)

	return exitCode
}

func initRepository(cfg *config.Config) (domain.AlarmStateRepository, func(), error) {
	if cfg.Store.Backend != config.StoreBackendPostgres {
		slog.Info("using file alarm state repository", "path", cfg.Store.StatePath)

		return repository.NewFileAlarmStateRepository(cfg.Store.StatePath), func() {}, nil
	}

	db, err := initDatabase(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := repository.Migrate(db); err != nil {
		_ = sqlDB.Close()

		return nil, nil, fmt.Errorf("failed to migrate alarm tables: %w", err)
	}

	slog.Info("using postgres alarm state repository")

	closeDB := func() {
		if err := sqlDB.Close(); err != nil {
			slog.Error("failed to close database connection", "error", err)
		}
	}

	return repository.NewPostgresAlarmStateRepository(db), closeDB, nil
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logging.NewGormLogger(logging.DefaultSlowQueryThreshold),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func setupRouter(alarmHandler *handler.AlarmHandler, metricsProvider *metrics.Provider, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.PanicRecoveryGin(),
		middleware.Gin(middleware.GinConfig{
			SkipPaths:   []string{"/ping", "/metrics"},
			Module:      logging.ModuleAlarm,
			TracerName:  serviceName,
			HTTPMetrics: httpMetrics,
		}),
	)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	router.GET("/metrics", gin.WrapH(metricsProvider.Handler()))

	v1 := router.Group("/api/v1")
	alarmHandler.RegisterRoutes(v1)

	return router
}
