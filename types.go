package goPassword

import (
	"io"

	internalaudit "github.com/MrEthical07/goPassword/internal/audit"
	internalmetrics "github.com/MrEthical07/goPassword/internal/metrics"
	"github.com/MrEthical07/goPassword/internal/scheduler"
	"github.com/MrEthical07/goPassword/password"
	"github.com/redis/go-redis/v9"
)

// Primitive is the memory-hard hashing function the engine drives. Every
// method must be safe for concurrent use. [password.Argon2] is the default.
//
// Verify and NeedsRehash return an error wrapping [ErrUnrecognizedHash] when
// the hash bytes cannot be parsed; any other error is a primitive failure.
type Primitive interface {
	Limits() Limits
	Recognized(hash []byte) bool
	Hash(password []byte, opslimit, memlimit uint64) ([]byte, error)
	Verify(hash, password []byte) (bool, error)
	NeedsRehash(hash []byte, opslimit, memlimit uint64) (bool, error)
}

var _ Primitive = (*password.Argon2)(nil)

// Limits describes the bounds a primitive enforces.
type Limits = password.Limits

// JobState is the lifecycle position of an asynchronous job.
type JobState = scheduler.State

const (
	JobCreated   = scheduler.Created
	JobQueued    = scheduler.Queued
	JobAdmitted  = scheduler.Admitted
	JobCompleted = scheduler.Completed
	JobCancelled = scheduler.Cancelled
)

// AuditEvent is one audit record. It never contains password or hash bytes.
type AuditEvent = internalaudit.Event

// AuditSink receives audit events from the engine's dispatcher goroutine.
type AuditSink = internalaudit.Sink

// NoOpSink discards audit events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink delivers audit events on a buffered channel.
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink writes audit events as JSON lines.
type JSONWriterSink = internalaudit.JSONWriterSink

// AuditStats breaks undeliverable audit events down by reason and event type.
type AuditStats = internalaudit.Stats

// RedisStreamSink appends audit events to a Redis stream.
type RedisStreamSink = internalaudit.RedisStreamSink

// RedisStreamConfig configures a RedisStreamSink.
type RedisStreamConfig = internalaudit.RedisStreamConfig

// Audit event types.
const (
	AuditEventHash   = internalaudit.EventHash
	AuditEventVerify = internalaudit.EventVerify
	AuditEventCancel = internalaudit.EventCancel
)

// NewChannelSink returns a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink returns a sink writing JSON lines to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewRedisStreamSink returns a sink that XADDs events to a Redis stream.
func NewRedisStreamSink(client redis.UniversalClient, cfg RedisStreamConfig) *RedisStreamSink {
	return internalaudit.NewRedisStreamSink(client, cfg)
}

// MetricID identifies a counter or histogram.
type MetricID = internalmetrics.MetricID

const (
	MetricHashSubmitted      = internalmetrics.MetricHashSubmitted
	MetricHashCompleted      = internalmetrics.MetricHashCompleted
	MetricHashFailed         = internalmetrics.MetricHashFailed
	MetricVerifySubmitted    = internalmetrics.MetricVerifySubmitted
	MetricVerifyValid        = internalmetrics.MetricVerifyValid
	MetricVerifyInvalid      = internalmetrics.MetricVerifyInvalid
	MetricVerifyNeedsRehash  = internalmetrics.MetricVerifyNeedsRehash
	MetricVerifyUnrecognized = internalmetrics.MetricVerifyUnrecognized
	MetricVerifyFailed       = internalmetrics.MetricVerifyFailed
	MetricInputRejected      = internalmetrics.MetricInputRejected
	MetricJobQueued          = internalmetrics.MetricJobQueued
	MetricJobCancelled       = internalmetrics.MetricJobCancelled
	MetricBlockingHash       = internalmetrics.MetricBlockingHash
	MetricBlockingVerify     = internalmetrics.MetricBlockingVerify
	MetricQueueWaitLatency   = internalmetrics.MetricQueueWaitLatency
	MetricPrimitiveLatency   = internalmetrics.MetricPrimitiveLatency
)

// Metrics holds an engine's counters and histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics returns a Metrics configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:                 cfg.Enabled,
		EnableLatencyHistograms: cfg.EnableLatencyHistograms,
	})
}
