//go:build integration
// +build integration

package test

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	goPassword "github.com/MrEthical07/goPassword"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// redisBackend is one Redis deployment the audit sink is checked against.
type redisBackend struct {
	name   string
	client func(t *testing.T) redis.UniversalClient
}

// redisBackends always includes miniredis. REDIS_ADDR adds a standalone
// server, REDIS_CLUSTER_ADDRS a cluster and REDIS_SENTINEL_ADDRS (with
// optional REDIS_SENTINEL_MASTER) a sentinel-managed primary.
func redisBackends(t *testing.T) []redisBackend {
	t.Helper()
	backends := []redisBackend{{
		name: "miniredis",
		client: func(t *testing.T) redis.UniversalClient {
			mr := miniredis.RunT(t)
			return redis.NewClient(&redis.Options{Addr: mr.Addr()})
		},
	}}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		backends = append(backends, redisBackend{
			name: "standalone:" + addr,
			client: func(*testing.T) redis.UniversalClient {
				return redis.NewClient(&redis.Options{Addr: addr})
			},
		})
	}
	if addrs := os.Getenv("REDIS_CLUSTER_ADDRS"); addrs != "" {
		backends = append(backends, redisBackend{
			name: "cluster",
			client: func(*testing.T) redis.UniversalClient {
				return redis.NewClusterClient(&redis.ClusterOptions{Addrs: splitAddrs(addrs)})
			},
		})
	}
	if addrs := os.Getenv("REDIS_SENTINEL_ADDRS"); addrs != "" {
		master := os.Getenv("REDIS_SENTINEL_MASTER")
		if master == "" {
			master = "mymaster"
		}
		backends = append(backends, redisBackend{
			name: "sentinel",
			client: func(*testing.T) redis.UniversalClient {
				return redis.NewFailoverClient(&redis.FailoverOptions{
					MasterName:    master,
					SentinelAddrs: splitAddrs(addrs),
				})
			},
		})
	}
	return backends
}

// connect pings the backend and removes stream before and after the test.
func (b redisBackend) connect(t *testing.T, stream string) redis.UniversalClient {
	t.Helper()
	rdb := b.client(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		t.Skipf("cannot connect to %s: %v", b.name, err)
	}
	rdb.Del(ctx, stream)
	t.Cleanup(func() {
		rdb.Del(context.Background(), stream)
		_ = rdb.Close()
	})
	return rdb
}

func splitAddrs(s string) []string {
	var addrs []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	return addrs
}

// TestRedisCompat_AuditStream runs hash and verify jobs through the engine and
// reads the resulting audit entries back from the stream on every backend.
func TestRedisCompat_AuditStream(t *testing.T) {
	const stream = "gopassword:audit:compat"
	for _, backend := range redisBackends(t) {
		t.Run(backend.name, func(t *testing.T) {
			rdb := backend.connect(t, stream)
			sink := goPassword.NewRedisStreamSink(rdb, goPassword.RedisStreamConfig{Stream: stream})
			engine := newIntegrationEngine(t, sink)

			hashTask, err := engine.HashAsync([]byte("compat-password"))
			if err != nil {
				t.Fatalf("HashAsync: %v", err)
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			hash, err := hashTask.Wait(ctx)
			if err != nil {
				t.Fatalf("hash: %v", err)
			}
			verifyTask, err := engine.VerifyAsync([]byte("compat-password"), hash)
			if err != nil {
				t.Fatalf("VerifyAsync: %v", err)
			}
			if outcome, err := verifyTask.Wait(ctx); err != nil || outcome != goPassword.Valid {
				t.Fatalf("verify: %v %v", outcome, err)
			}
			engine.Close()

			if sink.Failures() != 0 {
				t.Fatalf("expected no write failures, got %d", sink.Failures())
			}
			entries, err := rdb.XRange(context.Background(), sink.Stream(), "-", "+").Result()
			if err != nil {
				t.Fatalf("XRange: %v", err)
			}
			seen := map[string]goPassword.AuditEvent{}
			for _, entry := range entries {
				raw, _ := entry.Values["event"].(string)
				var ev goPassword.AuditEvent
				if err := json.Unmarshal([]byte(raw), &ev); err != nil {
					t.Fatalf("decode entry %s: %v", entry.ID, err)
				}
				seen[ev.JobID] = ev
			}
			if ev, ok := seen[hashTask.ID().String()]; !ok || ev.EventType != goPassword.AuditEventHash || !ev.Success {
				t.Fatalf("missing or wrong hash entry: %+v", ev)
			}
			if ev, ok := seen[verifyTask.ID().String()]; !ok || ev.Outcome != goPassword.Valid.String() {
				t.Fatalf("missing or wrong verify entry: %+v", ev)
			}
		})
	}
}

// TestRedisCompat_AuditStreamTrim checks MAXLEN trimming on every backend.
func TestRedisCompat_AuditStreamTrim(t *testing.T) {
	const stream = "gopassword:audit:trim"
	for _, backend := range redisBackends(t) {
		t.Run(backend.name, func(t *testing.T) {
			rdb := backend.connect(t, stream)
			sink := goPassword.NewRedisStreamSink(rdb, goPassword.RedisStreamConfig{Stream: stream, MaxLen: 3, ExactTrim: true})
			for i := 0; i < 10; i++ {
				sink.Emit(context.Background(), goPassword.AuditEvent{EventType: goPassword.AuditEventCancel})
			}
			n, err := rdb.XLen(context.Background(), sink.Stream()).Result()
			if err != nil {
				t.Fatalf("XLen: %v", err)
			}
			if n != 3 {
				t.Fatalf("expected 3 entries after trim, got %d", n)
			}
		})
	}
}
