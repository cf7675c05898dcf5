package scheduler

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

type gateJob struct {
	id         uuid.UUID
	name       string
	gate       chan struct{}
	started    chan struct{}
	done       chan error
	panicWith  any
	onComplete func()
	order      *recorder
}

func newGateJob(name string, order *recorder) *gateJob {
	return &gateJob{
		id:      uuid.New(),
		name:    name,
		gate:    make(chan struct{}),
		started: make(chan struct{}),
		done:    make(chan error, 1),
		order:   order,
	}
}

func (j *gateJob) ID() uuid.UUID { return j.id }

func (j *gateJob) Execute() {
	if j.order != nil {
		j.order.add(j.name)
	}
	close(j.started)
	<-j.gate
	if j.panicWith != nil {
		panic(j.panicWith)
	}
}

func (j *gateJob) Complete() {
	if j.onComplete != nil {
		j.onComplete()
	}
	j.done <- nil
}

func (j *gateJob) Abort(err error) {
	j.done <- err
}

func (j *gateJob) release() { close(j.gate) }

type recorder struct {
	mu    sync.Mutex
	items []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	r.items = append(r.items, s)
	r.mu.Unlock()
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.items...)
}

func newScheduler(t *testing.T, limit int, hooks Hooks) *Scheduler {
	t.Helper()
	s, err := New(Config{Limit: limit, Hooks: hooks})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	return s
}

func mustSubmit(t *testing.T, s *Scheduler, j Job) *Ticket {
	t.Helper()
	tk, err := s.Submit(j)
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	return tk
}

func waitStarted(t *testing.T, j *gateJob) {
	t.Helper()
	select {
	case <-j.started:
	case <-time.After(2 * time.Second):
		t.Fatalf("job %s did not start", j.name)
	}
}

func waitDone(t *testing.T, j *gateJob) error {
	t.Helper()
	select {
	case err := <-j.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatalf("job %s did not finish", j.name)
		return nil
	}
}

func assertNotStarted(t *testing.T, j *gateJob) {
	t.Helper()
	select {
	case <-j.started:
		t.Fatalf("job %s started before a slot was free", j.name)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestNewRejectsNegativeLimit(t *testing.T) {
	if _, err := New(Config{Limit: -1}); !errors.Is(err, ErrInvalidLimit) {
		t.Fatalf("expected ErrInvalidLimit, got %v", err)
	}
}

func TestSubmitNilJob(t *testing.T) {
	s := newScheduler(t, 1, Hooks{})
	if _, err := s.Submit(nil); !errors.Is(err, ErrNilJob) {
		t.Fatalf("expected ErrNilJob, got %v", err)
	}
}

func TestFIFOAdmissionWithLimitOne(t *testing.T) {
	order := &recorder{}
	s := newScheduler(t, 1, Hooks{})

	a := newGateJob("a", order)
	b := newGateJob("b", order)
	c := newGateJob("c", order)
	mustSubmit(t, s, a)
	mustSubmit(t, s, b)
	mustSubmit(t, s, c)

	waitStarted(t, a)
	assertNotStarted(t, b)
	if s.Pending() != 1 || s.Queued() != 2 {
		t.Fatalf("expected pending=1 queued=2, got %d/%d", s.Pending(), s.Queued())
	}

	a.release()
	if err := waitDone(t, a); err != nil {
		t.Fatalf("a: %v", err)
	}
	waitStarted(t, b)
	assertNotStarted(t, c)

	b.release()
	waitDone(t, b)
	waitStarted(t, c)
	c.release()
	waitDone(t, c)

	got := order.snapshot()
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("admission order = %v, want %v", got, want)
		}
	}
	if s.Pending() != 0 || s.Queued() != 0 {
		t.Fatalf("expected idle scheduler, got pending=%d queued=%d", s.Pending(), s.Queued())
	}
}

func TestNextJobAdmittedBeforeCompletionDelivered(t *testing.T) {
	s := newScheduler(t, 1, Hooks{})

	first := newGateJob("first", nil)
	second := newGateJob("second", nil)

	var seenFirst, seenSecond atomic.Int64
	seenFirst.Store(-1)
	seenSecond.Store(-1)
	first.onComplete = func() {
		seenFirst.Store(int64(s.Pending()))
		second.release()
	}
	second.onComplete = func() {
		seenSecond.Store(int64(s.Pending()))
	}

	mustSubmit(t, s, first)
	mustSubmit(t, s, second)
	first.release()

	waitDone(t, first)
	waitDone(t, second)

	if seenFirst.Load() != 1 {
		t.Fatalf("first completion saw pending=%d, want 1", seenFirst.Load())
	}
	if seenSecond.Load() != 0 {
		t.Fatalf("second completion saw pending=%d, want 0", seenSecond.Load())
	}
}

func TestSuccessorStartsAfterCompletionDelivered(t *testing.T) {
	order := &recorder{}
	s := newScheduler(t, 1, Hooks{})

	first := newGateJob("first", order)
	second := newGateJob("second", order)
	first.onComplete = func() {
		time.Sleep(20 * time.Millisecond)
		order.add("first delivered")
	}
	second.onComplete = func() { order.add("second delivered") }
	first.release()
	second.release()

	mustSubmit(t, s, first)
	mustSubmit(t, s, second)
	if err := waitDone(t, first); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := waitDone(t, second); err != nil {
		t.Fatalf("second: %v", err)
	}

	got := order.snapshot()
	want := []string{"first", "first delivered", "second", "second delivered"}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func TestCancelMidQueueKeepsOrder(t *testing.T) {
	order := &recorder{}
	s := newScheduler(t, 1, Hooks{})
	errCancel := errors.New("cancelled by caller")

	a := newGateJob("a", order)
	b := newGateJob("b", order)
	c := newGateJob("c", order)
	d := newGateJob("d", order)
	mustSubmit(t, s, a)
	mustSubmit(t, s, b)
	tc := mustSubmit(t, s, c)
	mustSubmit(t, s, d)
	waitStarted(t, a)

	if s.Queued() != 3 {
		t.Fatalf("queued = %d, want 3", s.Queued())
	}
	if !s.Cancel(tc, errCancel) {
		t.Fatal("expected mid-queue job to be cancellable")
	}
	if err := waitDone(t, c); !errors.Is(err, errCancel) {
		t.Fatalf("expected cancel error for c, got %v", err)
	}
	if s.Queued() != 2 || s.Pending() != 1 {
		t.Fatalf("expected pending=1 queued=2, got %d/%d", s.Pending(), s.Queued())
	}

	for _, j := range []*gateJob{a, b, d} {
		waitStarted(t, j)
		j.release()
		if err := waitDone(t, j); err != nil {
			t.Fatalf("%s: %v", j.name, err)
		}
	}
	select {
	case <-c.started:
		t.Fatal("cancelled job must never execute")
	default:
	}

	got := order.snapshot()
	want := []string{"a", "b", "d"}
	if len(got) != len(want) {
		t.Fatalf("admission order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("admission order = %v, want %v", got, want)
		}
	}
}

func TestCancelQueuedJob(t *testing.T) {
	s := newScheduler(t, 1, Hooks{})
	errCancel := errors.New("cancelled by caller")

	a := newGateJob("a", nil)
	b := newGateJob("b", nil)
	ta := mustSubmit(t, s, a)
	tb := mustSubmit(t, s, b)
	waitStarted(t, a)
	if ta.ID() != a.id || tb.ID() != b.id {
		t.Fatal("tickets must report their job id")
	}

	if !s.Cancel(tb, errCancel) {
		t.Fatal("expected queued job to be cancellable")
	}
	if err := waitDone(t, b); !errors.Is(err, errCancel) {
		t.Fatalf("expected cancel error, got %v", err)
	}
	if tb.State() != Cancelled {
		t.Fatalf("expected cancelled state, got %s", tb.State())
	}
	if s.Cancel(tb, errCancel) {
		t.Fatal("second cancel must be a no-op")
	}
	if s.Pending() != 1 || s.Queued() != 0 {
		t.Fatalf("cancel must not touch in-flight count, got pending=%d queued=%d", s.Pending(), s.Queued())
	}

	if s.Cancel(ta, errCancel) {
		t.Fatal("admitted job must not be cancellable")
	}
	a.release()
	if err := waitDone(t, a); err != nil {
		t.Fatalf("admitted job should still complete, got %v", err)
	}
	if ta.State() != Completed {
		t.Fatalf("expected completed state, got %s", ta.State())
	}
}

func TestCancelForeignTicket(t *testing.T) {
	s1 := newScheduler(t, 1, Hooks{})
	s2 := newScheduler(t, 1, Hooks{})

	a := newGateJob("a", nil)
	b := newGateJob("b", nil)
	mustSubmit(t, s1, a)
	tb := mustSubmit(t, s1, b)

	if s2.Cancel(tb, errors.New("x")) {
		t.Fatal("cancel through another scheduler must be rejected")
	}
	if s2.Cancel(nil, nil) {
		t.Fatal("cancel of nil ticket must be rejected")
	}
	a.release()
	b.release()
	waitDone(t, a)
	waitDone(t, b)
}

func TestPanickingJobDoesNotStallQueue(t *testing.T) {
	s := newScheduler(t, 1, Hooks{})

	bad := newGateJob("bad", nil)
	bad.panicWith = "primitive exploded"
	good := newGateJob("good", nil)
	mustSubmit(t, s, bad)
	mustSubmit(t, s, good)

	bad.release()
	if err := waitDone(t, bad); !errors.Is(err, ErrJobPanicked) {
		t.Fatalf("expected ErrJobPanicked, got %v", err)
	}
	waitStarted(t, good)
	good.release()
	if err := waitDone(t, good); err != nil {
		t.Fatalf("good job: %v", err)
	}
}

func TestUnboundedLimit(t *testing.T) {
	s := newScheduler(t, 0, Hooks{})
	jobs := make([]*gateJob, 5)
	for i := range jobs {
		jobs[i] = newGateJob(string(rune('a'+i)), nil)
		mustSubmit(t, s, jobs[i])
	}
	for _, j := range jobs {
		waitStarted(t, j)
	}
	if s.Pending() != 5 || s.Queued() != 0 {
		t.Fatalf("expected all jobs admitted, got pending=%d queued=%d", s.Pending(), s.Queued())
	}
	for _, j := range jobs {
		j.release()
		waitDone(t, j)
	}
}

func TestCloseDrainsQueueAndWaits(t *testing.T) {
	s := newScheduler(t, 1, Hooks{})
	errShutdown := errors.New("shutdown")

	running := newGateJob("running", nil)
	queued := newGateJob("queued", nil)
	mustSubmit(t, s, running)
	tq := mustSubmit(t, s, queued)
	waitStarted(t, running)

	closed := make(chan struct{})
	go func() {
		s.Close(errShutdown)
		close(closed)
	}()

	if err := waitDone(t, queued); !errors.Is(err, errShutdown) {
		t.Fatalf("expected shutdown error for queued job, got %v", err)
	}
	if tq.State() != Cancelled {
		t.Fatalf("expected cancelled state, got %s", tq.State())
	}
	if _, err := s.Submit(newGateJob("late", nil)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	select {
	case <-closed:
		t.Fatal("Close returned before the running job finished")
	case <-time.After(20 * time.Millisecond):
	}

	running.release()
	if err := waitDone(t, running); err != nil {
		t.Fatalf("running job: %v", err)
	}
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}
	if !s.Closed() {
		t.Fatal("expected Closed to report true")
	}
	s.Close(errShutdown)
}

func TestHooks(t *testing.T) {
	var queued, admitted, cancelled, completed atomic.Int64
	s := newScheduler(t, 1, Hooks{
		OnQueued:    func(*Ticket) { queued.Add(1) },
		OnAdmitted:  func(*Ticket, time.Duration) { admitted.Add(1) },
		OnCancelled: func(*Ticket) { cancelled.Add(1) },
		OnCompleted: func(*Ticket, time.Duration) { completed.Add(1) },
	})

	a := newGateJob("a", nil)
	b := newGateJob("b", nil)
	c := newGateJob("c", nil)
	mustSubmit(t, s, a)
	mustSubmit(t, s, b)
	tc := mustSubmit(t, s, c)
	waitStarted(t, a)
	s.Cancel(tc, errors.New("cancel"))
	waitDone(t, c)

	a.release()
	b.release()
	waitDone(t, a)
	waitDone(t, b)

	if queued.Load() != 2 {
		t.Fatalf("queued hook = %d, want 2", queued.Load())
	}
	if admitted.Load() != 2 || completed.Load() != 2 {
		t.Fatalf("admitted/completed hooks = %d/%d, want 2/2", admitted.Load(), completed.Load())
	}
	if cancelled.Load() != 1 {
		t.Fatalf("cancelled hook = %d, want 1", cancelled.Load())
	}
}
