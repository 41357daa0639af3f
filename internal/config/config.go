// Package config reads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds every setting used by cmd/server and cmd/activity.
type Config struct {
	HTTP        HTTPConfig
	Storage     string
	DatabaseURL string
	Auth        AuthConfig
	Activity    ActivityConfig
	LogLevel    logrus.Level
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// AuthConfig configures token signing.
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// ActivityConfig is empty-addressed when activity publishing is off.
type ActivityConfig struct {
	RedisAddr  string
	RedisDB    int
	Queue      string
	BatchSize  int
	FlushDelay time.Duration
}

// Enabled reports whether a Redis address was configured.
func (a ActivityConfig) Enabled() bool {
	return a.RedisAddr != ""
}

// Load reads and validates the API server's configuration. Any error is fatal.
func Load() (Config, error) {
	cfg, err := parse()
	if err != nil {
		return Config{}, err
	}

	if cfg.HTTP.Addr == "" {
		return Config{}, fmt.Errorf("HTTP_ADDR must not be empty")
	}
	if cfg.HTTP.ReadTimeout <= 0 || cfg.HTTP.WriteTimeout <= 0 || cfg.HTTP.ShutdownTimeout <= 0 {
		return Config{}, fmt.Errorf("HTTP timeouts must be > 0")
	}
	switch cfg.Storage {
	case StorageMemory:
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("DATABASE_URL must not be empty when STORAGE_DRIVER=%s", StoragePostgres)
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.Storage)
	}
	if cfg.Auth.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must not be empty")
	}
	if cfg.Auth.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("TOKEN_TTL_SEC must be > 0")
	}
	if err := validateActivity(cfg.Activity); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadActivityWorker reads the activity writer's configuration. It needs Postgres and
// Redis but nothing from the HTTP or token settings.
func LoadActivityWorker() (Config, error) {
	cfg, err := parse()
	if err != nil {
		return Config{}, err
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL must not be empty")
	}
	if !cfg.Activity.Enabled() {
		return Config{}, fmt.Errorf("REDIS_ADDR must not be empty")
	}
	if err := validateActivity(cfg.Activity); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateActivity(a ActivityConfig) error {
	if a.Queue == "" {
		return fmt.Errorf("ACTIVITY_QUEUE must not be empty")
	}
	if a.BatchSize <= 0 {
		return fmt.Errorf("ACTIVITY_BATCH_SIZE must be > 0")
	}
	if a.FlushDelay <= 0 {
		return fmt.Errorf("ACTIVITY_FLUSH_MS must be > 0")
	}
	return nil
}

// parse reads every key. Malformed numbers and log levels are reported together.
func parse() (Config, error) {
	var errs []error
	cfg := Config{
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SEC", 10, &errs)) * time.Second,
			WriteTimeout:    time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SEC", 10, &errs)) * time.Second,
			ShutdownTimeout: time.Duration(getEnvInt("HTTP_SHUTDOWN_TIMEOUT_SEC", 15, &errs)) * time.Second,
		},
		Storage:     getEnv("STORAGE_DRIVER", StoragePostgres),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL_SEC", 7200, &errs)) * time.Second,
		},
		Activity: ActivityConfig{
			RedisAddr:  getEnv("REDIS_ADDR", ""),
			RedisDB:    getEnvInt("REDIS_DB", 0, &errs),
			Queue:      getEnv("ACTIVITY_QUEUE", "friendgraph_activity"),
			BatchSize:  getEnvInt("ACTIVITY_BATCH_SIZE", 20, &errs),
			FlushDelay: time.Duration(getEnvInt("ACTIVITY_FLUSH_MS", 500, &errs)) * time.Millisecond,
		},
	}

	level, err := logrus.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	cfg.LogLevel = level

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	return val
}

// getEnvInt returns fallback for an unset key. A value that is set but not an integer
// is appended to errs.
func getEnvInt(key string, fallback int, errs *[]error) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s must be an integer, got %q", key, val))
		return fallback
	}
	return n
}
