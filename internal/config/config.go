package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	StoreBackendFile     = "file"
	StoreBackendPostgres = "postgres"
)

type Config struct {
	Server        ServerConfig
	Store         StoreConfig
	Database      DatabaseConfig
	Scheduler     SchedulerConfig
	PubSub        PubSubConfig
	Log           LogConfig
	Observability ObservabilityConfig
}

type LogConfig struct {
	Level string
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type StoreConfig struct {
	Backend   string
	StatePath string
}

type DatabaseConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type SchedulerConfig struct {
	PollInterval time.Duration
}

type PubSubConfig struct {
	NATSURL         string
	GCloudProjectID string
}

type ObservabilityConfig struct {
	Environment  string
	OTLPEndpoint string
	SamplingRate float64
}

func Load() (*Config, error) {
	serverPort, err := strconv.Atoi(getEnv("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	readTimeout, err := time.ParseDuration(getEnv("SERVER_READ_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_READ_TIMEOUT: %w", err)
	}

	// 0 disables the write deadline, which the event stream needs.
	writeTimeout, err := time.ParseDuration(getEnv("SERVER_WRITE_TIMEOUT", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT: %w", err)
	}

	maxOpenConns, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdleConns, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	pollInterval, err := time.ParseDuration(getEnv("ALARM_POLL_INTERVAL", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid ALARM_POLL_INTERVAL: %w", err)
	}

	if pollInterval <= 0 {
		return nil, fmt.Errorf("invalid ALARM_POLL_INTERVAL: must be positive, got %s", pollInterval)
	}

	samplingRate, err := strconv.ParseFloat(getEnv("OTEL_SAMPLING_RATE", "1.0"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OTEL_SAMPLING_RATE: %w", err)
	}

	backend := getEnv("ALARM_STORE_BACKEND", StoreBackendFile)
	if backend != StoreBackendFile && backend != StoreBackendPostgres {
		return nil, fmt.Errorf("invalid ALARM_STORE_BACKEND: %q (want %q or %q)", backend, StoreBackendFile, StoreBackendPostgres)
	}

	dsn := os.Getenv("POSTGRES_DSN")
	if backend == StoreBackendPostgres && dsn == "" {
		return nil, fmt.Errorf("POSTGRES_DSN environment variable is required for the postgres backend")
	}

	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "127.0.0.1"),
			Port:         serverPort,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		Store: StoreConfig{
			Backend:   backend,
			StatePath: getEnv("ALARM_STATE_PATH", DefaultStatePath()),
		},
		Database: DatabaseConfig{
			DSN:             dsn,
			MaxOpenConns:    maxOpenConns,
			MaxIdleConns:    maxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
		Scheduler: SchedulerConfig{
			PollInterval: pollInterval,
		},
		PubSub: PubSubConfig{
			NATSURL:         os.Getenv("NATS_URL"),
			GCloudProjectID: os.Getenv("GCLOUD_PROJECT_ID"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Observability: ObservabilityConfig{
			Environment:  getEnv("ENV", "dev"),
			OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
			SamplingRate: samplingRate,
		},
	}, nil
}

// DefaultStatePath is the alarm document location under the user's config
// directory, or the working directory when that is unknown.
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".primind", "alarm_state.json")
	}

	return filepath.Join(dir, "primind", "alarm_state.json")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
