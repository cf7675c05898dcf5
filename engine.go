package goPassword

import (
	"sync/atomic"
	"time"

	internalaudit "github.com/MrEthical07/goPassword/internal/audit"
	"github.com/MrEthical07/goPassword/internal/scheduler"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Engine hashes and verifies passwords under a fixed policy and concurrency
// limit. Create one with [Builder.Build]; all methods are safe for concurrent
// use.
type Engine struct {
	config    Config
	policy    Policy
	limits    Limits
	primitive Primitive
	sched     *scheduler.Scheduler
	audit     *internalaudit.Dispatcher
	metrics   *Metrics
	logger    zerolog.Logger
	closed    atomic.Bool
}

// Close rejects new work, cancels queued jobs with an error matching both
// [ErrCancelled] and [ErrEngineClosed], waits for running jobs to deliver
// their results and flushes the audit dispatcher. It must not be called from
// inside a completion callback.
func (e *Engine) Close() {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return
	}
	queued := e.sched.Queued()
	e.sched.Close(errClosedDrain)
	if e.audit != nil {
		e.audit.Close()
		if stats := e.audit.Stats(); stats.Dropped > 0 {
			reasons := zerolog.Dict()
			for reason, n := range stats.ByReason {
				reasons.Uint64(reason, n)
			}
			e.logger.Warn().
				Uint64("audit_dropped", stats.Dropped).
				Dict("audit_drop_reasons", reasons).
				Msg("audit events lost")
		}
	}
	e.logger.Info().Int("drained", queued).Msg("engine closed")
}

// Policy returns the engine's cost policy.
func (e *Engine) Policy() Policy {
	if e == nil {
		return Policy{}
	}
	return e.policy
}

// Limits returns the primitive's bounds.
func (e *Engine) Limits() Limits {
	if e == nil {
		return Limits{}
	}
	return e.limits
}

// PendingCount returns the number of admitted, still-running asynchronous
// jobs. It never exceeds the configured parallelism.
func (e *Engine) PendingCount() int {
	if e == nil {
		return 0
	}
	return e.sched.Pending()
}

// QueuedCount returns the number of jobs waiting for a slot.
func (e *Engine) QueuedCount() int {
	if e == nil {
		return 0
	}
	return e.sched.Queued()
}

// Cancel cancels the job behind h. See [Task.Cancel].
func (e *Engine) Cancel(h Handle) bool {
	if e == nil {
		return false
	}
	return h.Cancel()
}

func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// AuditStats reports audit delivery and drop accounting. It is empty when
// audit is disabled.
func (e *Engine) AuditStats() AuditStats {
	if e == nil {
		return internalaudit.Stats{ByReason: map[string]uint64{}, ByEvent: map[string]uint64{}}
	}
	return e.audit.Stats()
}

func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) ready() error {
	if e == nil {
		return ErrEngineNotReady
	}
	if e.closed.Load() {
		return ErrEngineClosed
	}
	return nil
}

func (e *Engine) cancelTicket(t *scheduler.Ticket) bool {
	if e == nil || t == nil {
		return false
	}
	if e.sched.Cancel(t, ErrCancelled) {
		return true
	}
	e.logger.Debug().
		Str("job_id", t.ID().String()).
		Str("state", t.State().String()).
		Msg("cancel ignored: job already admitted")
	return false
}

func (e *Engine) schedulerHooks() scheduler.Hooks {
	return scheduler.Hooks{
		OnQueued: func(*scheduler.Ticket) {
			e.metricInc(MetricJobQueued)
		},
		OnAdmitted: func(t *scheduler.Ticket, waited time.Duration) {
			e.metricObserve(MetricQueueWaitLatency, waited)
			e.logger.Debug().Str("job_id", t.ID().String()).Dur("waited", waited).Msg("job admitted")
		},
		OnCancelled: func(*scheduler.Ticket) {
			e.metricInc(MetricJobCancelled)
		},
		OnCompleted: func(t *scheduler.Ticket, ran time.Duration) {
			e.logger.Debug().Str("job_id", t.ID().String()).Dur("ran", ran).Msg("job finished")
		},
	}
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) metricObserve(id MetricID, d time.Duration) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Observe(id, d)
}

// checkPassword validates a password buffer against the primitive's bounds.
func (e *Engine) checkPassword(pw []byte) error {
	n := uint64(len(pw))
	if n < e.limits.PasswordBytesMin {
		return &InputError{Field: "password", Reason: "shorter than minimum length"}
	}
	if n >= e.limits.PasswordBytesMax {
		return &InputError{Field: "password", Reason: "longer than maximum length"}
	}
	return nil
}

func (e *Engine) checkHash(hash []byte) error {
	if len(hash) != e.limits.HashBytes {
		return &InputError{Field: "hash", Reason: "length must equal HashBytes"}
	}
	return nil
}

func newJobID() uuid.UUID {
	return uuid.New()
}
