// Command gopassword-loadtest drives a goPassword engine with a mix of
// asynchronous hash and verify jobs and reports throughput and latency.
//
// Audit events go to a Redis stream (miniredis unless -redis-addr or
// REDIS_ADDR is set). With -metrics-addr the run also serves Prometheus
// metrics and scheduler gauges over HTTP.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goPassword "github.com/MrEthical07/goPassword"
	"github.com/MrEthical07/goPassword/metrics/export/prometheus"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type options struct {
	jobs        int
	concurrency int
	parallelism int
	memLimit    uint64
	opsLimit    uint64
	rate        float64
	cancelEvery int
	redisAddr   string
	metricsAddr string
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("loadtest failed")
	}
}

func run() error {
	cfg, err := goPassword.LoadConfigFromEnv()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var opts options
	flag.IntVar(&opts.jobs, "jobs", 200, "hash+verify pairs to run")
	flag.IntVar(&opts.concurrency, "concurrency", 16, "number of submitting goroutines")
	flag.IntVar(&opts.parallelism, "parallelism", cfg.Scheduler.Parallelism, "engine parallelism limit; 0 means unbounded")
	flag.Uint64Var(&opts.memLimit, "memlimit", cfg.Policy.MemLimit, "memory cost in bytes")
	flag.Uint64Var(&opts.opsLimit, "opslimit", cfg.Policy.OpsLimit, "number of passes")
	flag.Float64Var(&opts.rate, "rate", 0, "maximum submissions per second; 0 disables pacing")
	flag.IntVar(&opts.cancelEvery, "cancel-every", 0, "cancel every Nth hash job right after submission; 0 disables")
	flag.StringVar(&opts.redisAddr, "redis-addr", "", "redis address for the audit stream; if empty, REDIS_ADDR env or miniredis is used")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics and /debug/pending on this address")
	flag.Parse()

	if opts.jobs <= 0 || opts.concurrency <= 0 {
		return errors.New("jobs and concurrency must be > 0")
	}

	client, cleanup, err := openRedis(opts.redisAddr)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg.Policy = goPassword.PolicyConfig{MemLimit: opts.memLimit, OpsLimit: opts.opsLimit}
	cfg.Scheduler.Parallelism = opts.parallelism
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	cfg.Audit.Enabled = true

	sink := goPassword.NewRedisStreamSink(client, goPassword.RedisStreamConfig{
		Stream: "gopassword:loadtest:audit",
		MaxLen: 10000,
	})
	engine, err := goPassword.New().
		WithConfig(cfg).
		WithLogger(log.Logger).
		WithAuditSink(sink).
		Build()
	if err != nil {
		return fmt.Errorf("engine build: %w", err)
	}

	if opts.metricsAddr != "" {
		srv := &http.Server{Addr: opts.metricsAddr, Handler: newRouter(engine)}
		go func() {
			log.Info().Str("addr", opts.metricsAddr).Msg("serving metrics")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}

	log.Info().
		Int("jobs", opts.jobs).
		Int("concurrency", opts.concurrency).
		Str("policy", engine.Policy().String()).
		Msg("starting load")

	stats := drive(engine, opts)
	engine.Close()

	entries, err := client.XLen(context.Background(), sink.Stream()).Result()
	if err != nil {
		log.Warn().Err(err).Msg("audit stream length unavailable")
	}

	fmt.Println("---- results ----")
	printStats("hash", stats.hash)
	printStats("verify", stats.verify)
	audit := engine.AuditStats()
	fmt.Printf("cancelled=%d outcomes=%v audit_entries=%d audit_failures=%d audit_dropped=%d %v\n",
		stats.cancelled.Load(), stats.outcomeCounts(), entries, sink.Failures(), audit.Dropped, audit.ByReason)
	return nil
}

func openRedis(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		log.Info().Str("addr", addr).Msg("using redis")
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	log.Info().Str("addr", mr.Addr()).Msg("using miniredis")
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

func newRouter(engine *goPassword.Engine) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", prometheus.NewPrometheusExporter(engine).Handler())
	r.Get("/debug/pending", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pending": engine.PendingCount(),
			"queued":  engine.QueuedCount(),
			"report":  engine.SecurityReport(),
		})
	})
	return r
}

type runStats struct {
	hash      phaseStats
	verify    phaseStats
	cancelled atomic.Int64

	mu       sync.Mutex
	outcomes map[goPassword.Outcome]int
}

func (s *runStats) outcomeCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.outcomes))
	for o, n := range s.outcomes {
		out[o.String()] = n
	}
	return out
}

// drive runs opts.jobs hash jobs and verifies every hash that comes back,
// alternating correct and wrong passwords.
func drive(engine *goPassword.Engine, opts options) *runStats {
	var (
		wg       sync.WaitGroup
		cursor   atomic.Int64
		hashLat  = newSamples(opts.jobs)
		verifyLt = newSamples(opts.jobs)
		limiter  *rate.Limiter
		stats    = &runStats{outcomes: map[goPassword.Outcome]int{}}
	)
	if opts.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.rate), 1)
	}
	ctx := context.Background()

	start := time.Now()
	for w := 0; w < opts.concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(cursor.Add(1)) - 1
				if i >= opts.jobs {
					return
				}
				if limiter != nil {
					if err := limiter.Wait(ctx); err != nil {
						return
					}
				}

				pw := []byte(fmt.Sprintf("load-password-%d", i))
				t0 := time.Now()
				task, err := engine.HashAsync(pw)
				if err != nil {
					hashLat.fail()
					continue
				}
				if opts.cancelEvery > 0 && i%opts.cancelEvery == 0 && task.Cancel() {
					stats.cancelled.Add(1)
					continue
				}
				hash, err := task.Wait(ctx)
				if err != nil {
					hashLat.fail()
					continue
				}
				hashLat.add(time.Since(t0))

				attempt := pw
				if i%2 == 1 {
					attempt = []byte("wrong-password")
				}
				t1 := time.Now()
				outcome, err := engine.VerifyContext(ctx, attempt, hash)
				if err != nil {
					verifyLt.fail()
					continue
				}
				verifyLt.add(time.Since(t1))
				stats.mu.Lock()
				stats.outcomes[outcome]++
				stats.mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)

	stats.hash = hashLat.compute(total)
	stats.verify = verifyLt.compute(total)
	return stats
}

type samples struct {
	mu       sync.Mutex
	values   []time.Duration
	failures int64
}

func newSamples(capacity int) *samples {
	return &samples{values: make([]time.Duration, 0, capacity)}
}

func (s *samples) add(d time.Duration) {
	s.mu.Lock()
	s.values = append(s.values, d)
	s.mu.Unlock()
}

func (s *samples) fail() {
	s.mu.Lock()
	s.failures++
	s.mu.Unlock()
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func (s *samples) compute(total time.Duration) phaseStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.values) == 0 {
		return phaseStats{total: total, failures: s.failures}
	}
	sort.Slice(s.values, func(i, j int) bool { return s.values[i] < s.values[j] })
	return phaseStats{
		total:    total,
		ops:      len(s.values),
		failures: s.failures,
		p50:      percentile(s.values, 50),
		p95:      percentile(s.values, 95),
		p99:      percentile(s.values, 99),
		opsPerS:  float64(len(s.values)) / total.Seconds(),
	}
}

func percentile(sorted []time.Duration, p int) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	return sorted[(len(sorted)-1)*p/100]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.1f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
