package goPassword

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/MrEthical07/goPassword/internal/scheduler"
	"github.com/google/uuid"
)

// Task is the future for one asynchronous hash or verify. It resolves exactly
// once with either a value or an error.
type Task[T any] struct {
	id       uuid.UUID
	engine   *Engine
	ticket   atomic.Pointer[scheduler.Ticket]
	done     chan struct{}
	once     sync.Once
	value    T
	err      error
	callback func(T, error)
}

func newTask[T any](e *Engine, cb func(T, error)) *Task[T] {
	return &Task[T]{
		id:       uuid.New(),
		engine:   e,
		done:     make(chan struct{}),
		callback: cb,
	}
}

// ID returns the job identifier used in logs and audit events.
func (t *Task[T]) ID() uuid.UUID {
	return t.id
}

// Done is closed once the task has resolved.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task resolves or ctx ends. Returning on ctx does not
// cancel the task.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Result blocks until the task resolves.
func (t *Task[T]) Result() (T, error) {
	<-t.done
	return t.value, t.err
}

// Cancel removes the task from the queue if it has not started. It returns
// false once the job was admitted; the result is then still delivered.
func (t *Task[T]) Cancel() bool {
	return t.engine.cancelTicket(t.ticket.Load())
}

// State returns the job's lifecycle state.
func (t *Task[T]) State() JobState {
	ticket := t.ticket.Load()
	if ticket == nil {
		return JobCompleted
	}
	return ticket.State()
}

// Handle returns a cancellation handle for the task.
func (t *Task[T]) Handle() Handle {
	return Handle{id: t.id, cancel: t.Cancel}
}

func (t *Task[T]) resolve(v T, err error) {
	t.once.Do(func() {
		t.value, t.err = v, err
		close(t.done)
		if t.callback != nil {
			t.callback(v, err)
		}
	})
}

// resolveDetached resolves without running the callback on the calling
// goroutine, for results known before the submitting call returns.
func (t *Task[T]) resolveDetached(v T, err error) {
	t.once.Do(func() {
		t.value, t.err = v, err
		close(t.done)
		if t.callback != nil {
			go t.callback(v, err)
		}
	})
}

// Handle cancels a job submitted with a callback.
type Handle struct {
	id     uuid.UUID
	cancel func() bool
}

// ID returns the job identifier.
func (h Handle) ID() uuid.UUID {
	return h.id
}

// Cancel behaves like [Task.Cancel]. The zero Handle cancels nothing.
func (h Handle) Cancel() bool {
	if h.cancel == nil {
		return false
	}
	return h.cancel()
}
