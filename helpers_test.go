package goPassword

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/MrEthical07/goPassword/password"
)

func fastPolicy() PolicyConfig {
	return PolicyConfig{MemLimit: password.MemLimitMin, OpsLimit: password.OpsLimitMin}
}

// gatedPrimitive wraps Argon2 and parks selected calls until the test feeds
// the gate, which makes admission order observable.
type gatedPrimitive struct {
	*password.Argon2

	gate    chan struct{}
	entered chan string
	only    string

	limits    *Limits
	hashErr   error
	verifyErr error
	panicOn   string
}

func newGatedPrimitive() *gatedPrimitive {
	return &gatedPrimitive{
		Argon2:  password.NewArgon2(),
		gate:    make(chan struct{}),
		entered: make(chan string, 64),
	}
}

func (g *gatedPrimitive) Limits() Limits {
	if g.limits != nil {
		return *g.limits
	}
	return g.Argon2.Limits()
}

func (g *gatedPrimitive) park(pw []byte) {
	if g.gate == nil || (g.only != "" && string(pw) != g.only) {
		return
	}
	g.entered <- string(pw)
	<-g.gate
}

func (g *gatedPrimitive) Hash(pw []byte, ops, mem uint64) ([]byte, error) {
	g.park(pw)
	if g.panicOn == "hash" {
		panic("primitive exploded")
	}
	if g.hashErr != nil {
		return nil, g.hashErr
	}
	return g.Argon2.Hash(pw, ops, mem)
}

func (g *gatedPrimitive) Verify(hash, pw []byte) (bool, error) {
	g.park(pw)
	if g.panicOn == "verify" {
		panic("primitive exploded")
	}
	if g.verifyErr != nil {
		return false, g.verifyErr
	}
	return g.Argon2.Verify(hash, pw)
}

func (g *gatedPrimitive) release() {
	g.gate <- struct{}{}
}

func (g *gatedPrimitive) waitEntered(t *testing.T) string {
	t.Helper()
	select {
	case pw := <-g.entered:
		return pw
	case <-time.After(5 * time.Second):
		t.Fatal("no job reached the primitive")
		return ""
	}
}

func newTestEngine(t *testing.T, mutate func(*Builder)) *Engine {
	t.Helper()

	b := New().WithPolicy(fastPolicy()).WithParallelism(1)
	if mutate != nil {
		mutate(b)
	}
	e, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func mustHash(t *testing.T, e *Engine, pw string) []byte {
	t.Helper()
	hash, err := e.Hash([]byte(pw))
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	return hash
}

func waitTask[T any](t *testing.T, task *Task[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	v, err := task.Wait(ctx)
	if err == context.DeadlineExceeded {
		t.Fatal("task did not resolve")
	}
	return v, err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
	}
}

type result[T any] struct {
	value T
	err   error
}

type callbackRecorder[T any] struct {
	mu      sync.Mutex
	results []result[T]
	done    chan struct{}
}

func newCallbackRecorder[T any](n int) *callbackRecorder[T] {
	return &callbackRecorder[T]{done: make(chan struct{}, n)}
}

func (r *callbackRecorder[T]) fn(v T, err error) {
	r.mu.Lock()
	r.results = append(r.results, result[T]{value: v, err: err})
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *callbackRecorder[T]) wait(t *testing.T, n int) []result[T] {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-r.done:
		case <-time.After(5 * time.Second):
			t.Fatalf("callback %d not invoked", i+1)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]result[T](nil), r.results...)
}
