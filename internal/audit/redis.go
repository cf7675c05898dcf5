package audit

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultStream      = "gopassword:audit"
	defaultEmitTimeout = 2 * time.Second
)

// RedisStreamConfig configures a RedisStreamSink.
type RedisStreamConfig struct {
	// Stream is the stream key. Defaults to "gopassword:audit".
	Stream string
	// MaxLen trims the stream to roughly MaxLen entries ("MAXLEN ~"). Zero
	// disables trimming.
	MaxLen int64
	// ExactTrim trims to exactly MaxLen on every XADD instead.
	ExactTrim bool
	// Timeout bounds each XADD. Defaults to 2s.
	Timeout time.Duration
}

// RedisStreamSink appends each event as a JSON payload to a Redis stream
// under the field "event". Write failures are counted, not returned.
type RedisStreamSink struct {
	redis    redis.UniversalClient
	stream   string
	maxLen   int64
	exact    bool
	timeout  time.Duration
	failures atomic.Uint64
}

// NewRedisStreamSink accepts any go-redis client: standalone, sentinel or
// cluster.
func NewRedisStreamSink(client redis.UniversalClient, cfg RedisStreamConfig) *RedisStreamSink {
	if cfg.Stream == "" {
		cfg.Stream = defaultStream
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultEmitTimeout
	}
	return &RedisStreamSink{
		redis:   client,
		stream:  cfg.Stream,
		maxLen:  cfg.MaxLen,
		exact:   cfg.ExactTrim,
		timeout: cfg.Timeout,
	}
}

func (s *RedisStreamSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.redis == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.failures.Add(1)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.redis.XAdd(ctx, s.xaddArgs(data)).Err(); err != nil {
		s.failures.Add(1)
	}
}

func (s *RedisStreamSink) xaddArgs(data []byte) *redis.XAddArgs {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"event": string(data)},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = !s.exact
	}
	return args
}

// Stream returns the stream key events are written to.
func (s *RedisStreamSink) Stream() string {
	return s.stream
}

// Failures returns the number of events that could not be written.
func (s *RedisStreamSink) Failures() uint64 {
	if s == nil {
		return 0
	}
	return s.failures.Load()
}
