package scheduler

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrClosed is returned by Submit after Close.
	ErrClosed = errors.New("scheduler: closed")
	// ErrJobPanicked wraps the value recovered from a panicking job.
	ErrJobPanicked = errors.New("scheduler: job panicked")
	// ErrNilJob is returned when Submit receives a nil job.
	ErrNilJob = errors.New("scheduler: nil job")
	// ErrInvalidLimit is returned by New for a negative limit.
	ErrInvalidLimit = errors.New("scheduler: limit must be >= 0")
)

// Job is a unit of work run under admission control. ID identifies the job in
// tickets and hooks.
//
// Exactly one of Complete or Abort is called for every submitted job.
// Complete follows a normal Execute return; Abort receives the cancellation
// error or a wrapped ErrJobPanicked. The job admitted into the freed slot does
// not start until Complete or Abort returns, so neither may wait on a job
// still queued on the same Scheduler.
type Job interface {
	ID() uuid.UUID
	Execute()
	Complete()
	Abort(err error)
}

// Hooks observe lifecycle events. Every hook is optional and is called without
// the scheduler lock held.
type Hooks struct {
	// OnQueued fires when a submitted job could not be admitted immediately.
	OnQueued func(t *Ticket)
	// OnAdmitted fires on the job goroutine before Execute.
	OnAdmitted func(t *Ticket, waited time.Duration)
	// OnCancelled fires when a queued job is removed.
	OnCancelled func(t *Ticket)
	// OnCompleted fires after Execute returns, before the result is delivered.
	OnCompleted func(t *Ticket, ran time.Duration)
}

// Config configures a Scheduler.
type Config struct {
	// Limit is the maximum number of concurrently executing jobs. Zero means
	// unbounded.
	Limit int
	Hooks Hooks
}

// Scheduler admits jobs in FIFO order while at most Limit are executing.
type Scheduler struct {
	mu       sync.Mutex
	limit    int
	inFlight int
	queue    *list.List
	closed   bool
	wg       sync.WaitGroup
	hooks    Hooks
}

// Ticket identifies a submitted job.
type Ticket struct {
	s          *Scheduler
	job        Job
	state      State
	elem       *list.Element
	queuedAt   time.Time
	admittedAt time.Time
}

// New returns a Scheduler for cfg.
func New(cfg Config) (*Scheduler, error) {
	if cfg.Limit < 0 {
		return nil, ErrInvalidLimit
	}
	return &Scheduler{
		limit: cfg.Limit,
		queue: list.New(),
		hooks: cfg.Hooks,
	}, nil
}

// ID returns the identifier of the ticket's job.
func (t *Ticket) ID() uuid.UUID {
	return t.job.ID()
}

// State returns the ticket's current lifecycle state.
func (t *Ticket) State() State {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.state
}

// Limit returns the configured concurrency limit (0 = unbounded).
func (s *Scheduler) Limit() int {
	return s.limit
}

// Pending returns the number of admitted, still-executing jobs.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// Queued returns the number of jobs waiting for a slot.
func (s *Scheduler) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Closed reports whether Close has been called.
func (s *Scheduler) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Submit enqueues job and admits queued jobs while slots are free. A new job
// never overtakes one that is already waiting.
func (s *Scheduler) Submit(job Job) (*Ticket, error) {
	if job == nil {
		return nil, ErrNilJob
	}
	t := &Ticket{s: s, job: job, state: Created}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}
	s.setState(t, Queued)
	t.queuedAt = time.Now()
	t.elem = s.queue.PushBack(t)
	admitted := s.admitLocked()
	waiting := t.state == Queued
	s.mu.Unlock()

	if waiting && s.hooks.OnQueued != nil {
		s.hooks.OnQueued(t)
	}
	s.launch(admitted)
	return t, nil
}

// Cancel removes a queued ticket and aborts its job with err. It returns false
// when the ticket was already admitted or finished; such a job still delivers
// its result.
func (s *Scheduler) Cancel(t *Ticket, err error) bool {
	if t == nil || t.s != s {
		return false
	}

	s.mu.Lock()
	if t.state != Queued {
		s.mu.Unlock()
		return false
	}
	s.queue.Remove(t.elem)
	t.elem = nil
	s.setState(t, Cancelled)
	s.mu.Unlock()

	if s.hooks.OnCancelled != nil {
		s.hooks.OnCancelled(t)
	}
	t.job.Abort(err)
	return true
}

// Close rejects further submissions, aborts every queued job with err and
// waits for admitted jobs to deliver their results. It must not be called
// from inside Complete or Abort.
func (s *Scheduler) Close(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.wg.Wait()
		return
	}
	s.closed = true
	drained := make([]*Ticket, 0, s.queue.Len())
	for e := s.queue.Front(); e != nil; e = s.queue.Front() {
		t := s.queue.Remove(e).(*Ticket)
		t.elem = nil
		s.setState(t, Cancelled)
		drained = append(drained, t)
	}
	s.mu.Unlock()

	for _, t := range drained {
		if s.hooks.OnCancelled != nil {
			s.hooks.OnCancelled(t)
		}
		t.job.Abort(err)
	}
	s.wg.Wait()
}

// admitLocked moves tickets from the head of the queue into the admitted set
// while slots are free. Caller holds s.mu.
func (s *Scheduler) admitLocked() []*Ticket {
	var admitted []*Ticket
	for s.queue.Len() > 0 && (s.limit == 0 || s.inFlight < s.limit) {
		t := s.queue.Remove(s.queue.Front()).(*Ticket)
		t.elem = nil
		s.setState(t, Admitted)
		t.admittedAt = time.Now()
		s.inFlight++
		s.wg.Add(1)
		admitted = append(admitted, t)
	}
	return admitted
}

func (s *Scheduler) launch(tickets []*Ticket) {
	for _, t := range tickets {
		go s.run(t)
	}
}

func (s *Scheduler) run(t *Ticket) {
	defer s.wg.Done()

	if s.hooks.OnAdmitted != nil {
		s.hooks.OnAdmitted(t, t.admittedAt.Sub(t.queuedAt))
	}

	start := time.Now()
	err := execute(t.job)
	ran := time.Since(start)

	// The successor takes the slot now so Pending stays accurate during
	// delivery, but it only starts once this result has been handed over.
	s.mu.Lock()
	s.inFlight--
	s.setState(t, Completed)
	next := s.admitLocked()
	s.mu.Unlock()
	defer s.launch(next)

	if s.hooks.OnCompleted != nil {
		s.hooks.OnCompleted(t, ran)
	}
	if err != nil {
		t.job.Abort(err)
		return
	}
	t.job.Complete()
}

func execute(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrJobPanicked, r)
		}
	}()
	job.Execute()
	return nil
}

// setState applies a validated transition. Caller holds s.mu. An invalid
// transition means the scheduler's own bookkeeping is broken.
func (s *Scheduler) setState(t *Ticket, to State) {
	if err := Transition(t.state, to); err != nil {
		panic(err)
	}
	t.state = to
}
