package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is built once at start-up and handed to the clients and collectors.
type Config struct {
	// Kubeconfig is an explicit kubeconfig path. Empty means in-cluster
	// first, then $HOME/.kube/config.
	Kubeconfig string

	Port     int
	LogLevel string

	// Applied to every API server and metrics API call.
	RequestTimeout time.Duration
	QPS            float32
	Burst          int

	NodesReport string
	PodsReport  string
}

func Default() Config {
	return Config{
		Port:           8000,
		LogLevel:       "info",
		RequestTimeout: 30 * time.Second,
		QPS:            20,
		Burst:          40,
		NodesReport:    "node_health_report.csv",
		PodsReport:     "pod_health_report.csv",
	}
}

// LoadEnvFile loads variables from the given .env files (".env" when none
// are given) into the process environment and returns the files it read.
// Missing files are skipped and variables already set in the environment
// are left untouched. It runs before logging is configured, so callers
// report the outcome.
func LoadEnvFile(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	var loaded []string
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}

		if err := godotenv.Load(p); err != nil {
			return loaded, fmt.Errorf("failed to load env file %s: %w", p, err)
		}

		loaded = append(loaded, p)
	}

	return loaded, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be between 1 and 65535, got %d", c.Port))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.RequestTimeout < 0 {
		errs = append(errs, fmt.Errorf("request timeout must not be negative, got %s", c.RequestTimeout))
	}
	if c.QPS <= 0 {
		errs = append(errs, fmt.Errorf("qps must be positive, got %v", c.QPS))
	}
	if c.Burst <= 0 {
		errs = append(errs, fmt.Errorf("burst must be positive, got %d", c.Burst))
	}
	if strings.TrimSpace(c.NodesReport) == "" {
		errs = append(errs, errors.New("nodes report path is required"))
	}
	if strings.TrimSpace(c.PodsReport) == "" {
		errs = append(errs, errors.New("pods report path is required"))
	}

	return errors.Join(errs...)
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// ParseLevel maps debug, info, warn and error (any case) to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level: %s", s)
	}
}
