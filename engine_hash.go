package goPassword

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goPassword/internal/scheduler"
	"github.com/MrEthical07/goPassword/secret"
)

// Hash derives a hash of password on the calling goroutine. It is not subject
// to the parallelism limit. The returned buffer is exactly
// Limits().HashBytes long.
func (e *Engine) Hash(password []byte) ([]byte, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.checkPassword(password); err != nil {
		e.metricInc(MetricInputRejected)
		return nil, err
	}
	e.metricInc(MetricBlockingHash)

	out, err := e.runHash(password, e.policy)
	e.finishHash(newJobID(), modeBlocking, err)
	return out, err
}

// HashAsync submits a hash job and returns its future. The password is copied;
// the caller may zero its buffer as soon as HashAsync returns.
func (e *Engine) HashAsync(password []byte) (*Task[[]byte], error) {
	return e.submitHash(password, modeAsync, nil)
}

// HashFunc submits a hash job and calls fn exactly once with the result, on
// the worker goroutine (or the cancelling goroutine for a cancelled job).
// Queued jobs start only after fn returns, so fn must not block on another
// job of this engine.
func (e *Engine) HashFunc(password []byte, fn func(hash []byte, err error)) (Handle, error) {
	if fn == nil {
		return Handle{}, &InputError{Field: "callback", Reason: "must not be nil"}
	}
	task, err := e.submitHash(password, modeCallback, fn)
	if err != nil {
		return Handle{}, err
	}
	return task.Handle(), nil
}

// HashContext submits a hash job and waits for it. If ctx ends first the job
// is cancelled when still queued and ctx.Err() is returned.
func (e *Engine) HashContext(ctx context.Context, password []byte) ([]byte, error) {
	task, err := e.submitHash(password, modeContext, nil)
	if err != nil {
		return nil, err
	}
	return awaitTask(ctx, task)
}

func (e *Engine) submitHash(password []byte, mode string, cb func([]byte, error)) (*Task[[]byte], error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.checkPassword(password); err != nil {
		e.metricInc(MetricInputRejected)
		return nil, err
	}

	task := newTask(e, cb)
	job := &hashJob{
		engine:   e,
		task:     task,
		mode:     mode,
		policy:   e.policy,
		password: secret.Copy(password),
	}

	ticket, err := e.sched.Submit(job)
	if err != nil {
		job.password.Destroy()
		return nil, submitError(err)
	}
	task.ticket.Store(ticket)
	e.metricInc(MetricHashSubmitted)
	return task, nil
}

// runHash is the single hashing path shared by every calling convention.
func (e *Engine) runHash(password []byte, p Policy) (out []byte, err error) {
	defer recoverPrimitive("hash", &err)

	start := time.Now()
	out, err = e.primitive.Hash(password, p.OpsLimit(), p.MemLimit())
	e.metricObserve(MetricPrimitiveLatency, time.Since(start))
	if err != nil {
		return nil, &PrimitiveError{Op: "hash", Err: err}
	}
	if len(out) != e.limits.HashBytes {
		return nil, &PrimitiveError{Op: "hash", Err: fmt.Errorf("primitive returned %d bytes, want %d", len(out), e.limits.HashBytes)}
	}
	return out, nil
}

func recoverPrimitive(op string, errp *error) {
	if r := recover(); r != nil {
		*errp = &PrimitiveError{Op: op, Err: fmt.Errorf("panic: %v", r)}
	}
}

func submitError(err error) error {
	if errors.Is(err, scheduler.ErrClosed) {
		return ErrEngineClosed
	}
	return err
}

func awaitTask[T any](ctx context.Context, task *Task[T]) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-task.Done():
		return task.Result()
	case <-ctx.Done():
		task.Cancel()
		var zero T
		return zero, ctx.Err()
	}
}
