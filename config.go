package goPassword

import (
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// Config is the full engine configuration. Obtain a populated value from
// [DefaultConfig] or a preset and adjust fields before passing it to
// [Builder.WithConfig].
type Config struct {
	Policy    PolicyConfig
	Scheduler SchedulerConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
	Logging   LoggingConfig
}

// SchedulerConfig controls admission.
type SchedulerConfig struct {
	// Parallelism caps concurrently executing asynchronous jobs. Zero means
	// unbounded.
	Parallelism int
}

// AuditConfig controls audit dispatch.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process metrics.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// LoggingConfig sets the engine log level. The logger itself comes from
// [Builder.WithLogger].
type LoggingConfig struct {
	// Level is a zerolog level name ("debug", "info", …). Empty keeps the
	// logger's own level.
	Level string
}

// DefaultConfig returns the baseline configuration: interactive cost, one
// job at a time, audit and metrics off.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Policy: InteractiveConfig(),
		Scheduler: SchedulerConfig{
			Parallelism: 1,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// HighSecurityConfig uses the sensitive cost preset with serial execution.
func HighSecurityConfig() Config {
	cfg := defaultConfig()
	cfg.Policy = SensitiveConfig()
	cfg.Scheduler.Parallelism = 1
	cfg.Audit.Enabled = true
	return cfg
}

// HighThroughputConfig keeps the interactive cost and admits up to
// parallelism jobs at once, with metrics on.
func HighThroughputConfig(parallelism int) Config {
	cfg := defaultConfig()
	cfg.Scheduler.Parallelism = parallelism
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	return cfg
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Logging.Level = strings.TrimSpace(cfg.Logging.Level)
	return out
}

// Validate checks structural settings. Cost parameters are validated against
// the primitive's limits during [Builder.Build].
func (c *Config) Validate() error {
	if c.Scheduler.Parallelism < 0 {
		return errors.New("Scheduler Parallelism must be >= 0")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	if c.Logging.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
			return errors.New("Logging Level is not a valid level")
		}
	}

	return nil
}
