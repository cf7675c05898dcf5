package goPassword

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables read by LoadConfigFromEnv.
const (
	EnvMemLimit          = "GOPASSWORD_MEMLIMIT"
	EnvOpsLimit          = "GOPASSWORD_OPSLIMIT"
	EnvParallelism       = "GOPASSWORD_PARALLELISM"
	EnvMetrics           = "GOPASSWORD_METRICS"
	EnvLatencyHistograms = "GOPASSWORD_LATENCY_HISTOGRAMS"
	EnvAudit             = "GOPASSWORD_AUDIT"
	EnvAuditBuffer       = "GOPASSWORD_AUDIT_BUFFER"
	EnvLogLevel          = "GOPASSWORD_LOG_LEVEL"
)

// LoadConfigFromEnv starts from DefaultConfig, loads an optional .env file
// from the working directory and applies GOPASSWORD_* overrides. Variables
// already set in the process environment win over the file.
func LoadConfigFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return configFromEnv(defaultConfig())
}

func configFromEnv(cfg Config) (Config, error) {
	var err error
	if cfg.Policy.MemLimit, err = envUint(EnvMemLimit, cfg.Policy.MemLimit); err != nil {
		return Config{}, err
	}
	if cfg.Policy.OpsLimit, err = envUint(EnvOpsLimit, cfg.Policy.OpsLimit); err != nil {
		return Config{}, err
	}
	if cfg.Scheduler.Parallelism, err = envInt(EnvParallelism, cfg.Scheduler.Parallelism); err != nil {
		return Config{}, err
	}
	if cfg.Metrics.Enabled, err = envBool(EnvMetrics, cfg.Metrics.Enabled); err != nil {
		return Config{}, err
	}
	if cfg.Metrics.EnableLatencyHistograms, err = envBool(EnvLatencyHistograms, cfg.Metrics.EnableLatencyHistograms); err != nil {
		return Config{}, err
	}
	if cfg.Audit.Enabled, err = envBool(EnvAudit, cfg.Audit.Enabled); err != nil {
		return Config{}, err
	}
	if cfg.Audit.BufferSize, err = envInt(EnvAuditBuffer, cfg.Audit.BufferSize); err != nil {
		return Config{}, err
	}
	cfg.Logging.Level = getEnv(EnvLogLevel, cfg.Logging.Level)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envUint(key string, fallback uint64) (uint64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
