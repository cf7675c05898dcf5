package goPassword

import (
	"errors"
	"strings"

	internalaudit "github.com/MrEthical07/goPassword/internal/audit"
	"github.com/MrEthical07/goPassword/internal/scheduler"
	"github.com/MrEthical07/goPassword/password"
	"github.com/rs/zerolog"
)

// Builder assembles an Engine. A Builder is single-use.
type Builder struct {
	config    Config
	primitive Primitive
	logger    *zerolog.Logger
	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithPolicy overrides the cost policy.
func (b *Builder) WithPolicy(p PolicyConfig) *Builder {
	b.config.Policy = p
	return b
}

// WithParallelism overrides the concurrency cap. Zero means unbounded.
func (b *Builder) WithParallelism(n int) *Builder {
	b.config.Scheduler.Parallelism = n
	return b
}

// WithPrimitive replaces the default Argon2 primitive.
func (b *Builder) WithPrimitive(p Primitive) *Builder {
	b.primitive = p
	return b
}

// WithLogger sets the engine logger. The default discards everything.
func (b *Builder) WithLogger(l zerolog.Logger) *Builder {
	b.logger = &l
	return b
}

// WithAuditSink sets the audit sink. Audit must also be enabled in Config.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns a ready Engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prim := b.primitive
	if prim == nil {
		prim = password.NewArgon2()
	}
	limits := prim.Limits()

	policy, err := newPolicy(cfg.Policy, limits)
	if err != nil {
		return nil, err
	}

	logger := zerolog.Nop()
	if b.logger != nil {
		logger = *b.logger
	}
	if cfg.Logging.Level != "" {
		level, err := zerolog.ParseLevel(strings.ToLower(cfg.Logging.Level))
		if err != nil {
			return nil, err
		}
		logger = logger.Level(level)
	}

	e := &Engine{
		config:    cfg,
		policy:    policy,
		limits:    limits,
		primitive: prim,
		metrics:   NewMetrics(cfg.Metrics),
		logger:    logger.With().Str("component", "gopassword").Logger(),
	}

	sched, err := scheduler.New(scheduler.Config{
		Limit: cfg.Scheduler.Parallelism,
		Hooks: e.schedulerHooks(),
	})
	if err != nil {
		return nil, err
	}
	e.sched = sched

	if cfg.Audit.Enabled {
		e.audit = internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    true,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink)
	}

	b.built = true
	e.logger.Info().
		Uint64("memlimit", policy.MemLimit()).
		Uint64("opslimit", policy.OpsLimit()).
		Int("parallelism", cfg.Scheduler.Parallelism).
		Msg("engine ready")
	return e, nil
}
