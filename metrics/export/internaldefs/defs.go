package internaldefs

import (
	goPassword "github.com/MrEthical07/goPassword"
	internalmetrics "github.com/MrEthical07/goPassword/internal/metrics"
)

// CounterDef maps an engine counter to its exported series.
type CounterDef struct {
	ID   goPassword.MetricID
	Name string
	Help string
}

// HistogramDef maps an engine latency histogram to its exported series.
type HistogramDef struct {
	ID   goPassword.MetricID
	Name string
	Help string
}

// GaugeDef names a point-in-time scheduler reading.
type GaugeDef struct {
	Name string
	Help string
}

var CounterDefs = []CounterDef{
	{ID: goPassword.MetricHashSubmitted, Name: "gopassword_hash_submitted_total", Help: "Asynchronous hash jobs submitted."},
	{ID: goPassword.MetricHashCompleted, Name: "gopassword_hash_completed_total", Help: "Hash jobs that produced a hash."},
	{ID: goPassword.MetricHashFailed, Name: "gopassword_hash_failed_total", Help: "Hash jobs that failed in the primitive."},
	{ID: goPassword.MetricVerifySubmitted, Name: "gopassword_verify_submitted_total", Help: "Asynchronous verify jobs submitted."},
	{ID: goPassword.MetricVerifyValid, Name: "gopassword_verify_valid_total", Help: "Verifications classified valid."},
	{ID: goPassword.MetricVerifyInvalid, Name: "gopassword_verify_invalid_total", Help: "Verifications classified invalid."},
	{ID: goPassword.MetricVerifyNeedsRehash, Name: "gopassword_verify_needs_rehash_total", Help: "Valid verifications of hashes weaker than the policy."},
	{ID: goPassword.MetricVerifyUnrecognized, Name: "gopassword_verify_unrecognized_total", Help: "Verifications against unrecognized hash formats."},
	{ID: goPassword.MetricVerifyFailed, Name: "gopassword_verify_failed_total", Help: "Verify jobs that failed in the primitive."},
	{ID: goPassword.MetricInputRejected, Name: "gopassword_input_rejected_total", Help: "Calls rejected by input validation."},
	{ID: goPassword.MetricJobQueued, Name: "gopassword_job_queued_total", Help: "Jobs that waited for a free slot."},
	{ID: goPassword.MetricJobCancelled, Name: "gopassword_job_cancelled_total", Help: "Queued jobs cancelled before admission."},
	{ID: goPassword.MetricBlockingHash, Name: "gopassword_blocking_hash_total", Help: "Hashes computed on the calling goroutine."},
	{ID: goPassword.MetricBlockingVerify, Name: "gopassword_blocking_verify_total", Help: "Verifications computed on the calling goroutine."},
}

var HistogramDefs = []HistogramDef{
	{ID: goPassword.MetricQueueWaitLatency, Name: "gopassword_queue_wait_seconds", Help: "Time jobs spent queued before admission."},
	{ID: goPassword.MetricPrimitiveLatency, Name: "gopassword_primitive_seconds", Help: "Time spent inside the hashing primitive."},
}

var (
	PendingGauge = GaugeDef{Name: "gopassword_jobs_pending", Help: "Admitted jobs still running."}
	QueuedGauge  = GaugeDef{Name: "gopassword_jobs_queued", Help: "Jobs waiting for a free slot."}
)

// HistogramBounds are the upper bounds, in seconds, of the engine's buckets.
var HistogramBounds = []string{
	"0.01",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"1",
	"2.5",
	"+Inf",
}

// HistogramBoundSuffix is HistogramBounds made safe for instrument names.
var HistogramBoundSuffix = []string{
	"0_01",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"1",
	"2_5",
	"inf",
}

// NormalizeBuckets copies raw into a fixed-size array, padding with zeros.
func NormalizeBuckets(raw []uint64) [internalmetrics.HistBucketCount]uint64 {
	var out [internalmetrics.HistBucketCount]uint64
	copy(out[:], raw)
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form both
// exporters publish.
func CumulativeBuckets(raw [internalmetrics.HistBucketCount]uint64) [internalmetrics.HistBucketCount]uint64 {
	var out [internalmetrics.HistBucketCount]uint64
	var running uint64
	for i := range raw {
		running += raw[i]
		out[i] = running
	}
	return out
}
