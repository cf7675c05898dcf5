package goPassword

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/goPassword/password"
)

func benchEngine(b *testing.B, parallelism int, metrics bool) *Engine {
	b.Helper()
	e, err := New().
		WithPolicy(PolicyConfig{MemLimit: password.MemLimitMin, OpsLimit: password.OpsLimitMin}).
		WithParallelism(parallelism).
		WithMetricsEnabled(metrics).
		WithLatencyHistograms(metrics).
		Build()
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	b.Cleanup(e.Close)
	return e
}

func BenchmarkHashBlocking(b *testing.B) {
	e := benchEngine(b, 1, false)
	pw := []byte("benchmark-password")
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := e.Hash(pw); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerifyBlocking(b *testing.B) {
	e := benchEngine(b, 1, false)
	pw := []byte("benchmark-password")
	hash, err := e.Hash(pw)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := e.Verify(pw, hash); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerifyContextParallel(b *testing.B) {
	e := benchEngine(b, 4, true)
	pw := []byte("benchmark-password")
	hash, err := e.Hash(pw)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			if _, err := e.VerifyContext(ctx, pw, hash); err != nil {
				b.Error(err)
				return
			}
		}
	})
}

func BenchmarkVerifyUnrecognized(b *testing.B) {
	e := benchEngine(b, 1, false)
	garbage := make([]byte, password.HashBytes)
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := e.Verify([]byte("pw"), garbage); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricVerifyValid)
	}
}

func BenchmarkMetricsIncDisabled(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricVerifyValid)
	}
}

func BenchmarkMetricsIncParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricHashCompleted)
		}
	})
}

func BenchmarkMetricsObserve(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Observe(MetricPrimitiveLatency, time.Duration(i%3000)*time.Millisecond)
	}
}
