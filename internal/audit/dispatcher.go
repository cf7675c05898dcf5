package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the caller when the buffer
	// is full. Hashing callers should not wait on audit delivery, so the engine
	// defaults this to true.
	DropIfFull bool
}

// DropReason classifies an event the dispatcher could not deliver.
type DropReason uint8

const (
	// DropBufferFull: the buffer was full and DropIfFull is set.
	DropBufferFull DropReason = iota
	// DropContextDone: a blocking Emit gave up because its context ended.
	DropContextDone
	// DropClosed: the event arrived after Close.
	DropClosed
	// DropSinkPanic: the sink panicked while handling the event.
	DropSinkPanic

	dropReasonCount
)

func (r DropReason) String() string {
	switch r {
	case DropBufferFull:
		return "buffer_full"
	case DropContextDone:
		return "context_done"
	case DropClosed:
		return "closed"
	case DropSinkPanic:
		return "sink_panic"
	default:
		return "unknown"
	}
}

// eventKinds indexes drop counters; anything else lands in the last slot.
var eventKinds = [...]string{EventHash, EventVerify, EventCancel, "other"}

func eventKind(eventType string) int {
	for i, kind := range eventKinds[:len(eventKinds)-1] {
		if kind == eventType {
			return i
		}
	}
	return len(eventKinds) - 1
}

// Stats is a point-in-time view of dispatcher accounting. Zero entries are
// omitted from the maps.
type Stats struct {
	Delivered uint64
	Dropped   uint64
	ByReason  map[string]uint64
	ByEvent   map[string]uint64
}

// Dispatcher asynchronously forwards audit events to a sink. A nil
// *Dispatcher is valid and discards everything.
type Dispatcher struct {
	cfg       Config
	sink      Sink
	ch        chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	delivered atomic.Uint64
	drops     [dropReasonCount][len(eventKinds)]atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

// NewDispatcher starts a dispatcher for sink. It returns nil when cfg is
// disabled.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		cfg:  cfg,
		sink: sink,
		ch:   make(chan Event, max(cfg.BufferSize, 1)),
		done: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for {
		select {
		case event := <-d.ch:
			d.deliver(event)
		case <-d.done:
			d.flush()
			return
		}
	}
}

// flush delivers whatever is still buffered once Close has been requested.
func (d *Dispatcher) flush() {
	for {
		select {
		case event := <-d.ch:
			d.deliver(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) deliver(event Event) {
	defer func() {
		if r := recover(); r != nil {
			d.drop(DropSinkPanic, event)
		}
	}()
	d.sink.Emit(context.Background(), event)
	d.delivered.Add(1)
}

func (d *Dispatcher) drop(reason DropReason, event Event) {
	d.drops[reason][eventKind(event.EventType)].Add(1)
}

// Emit queues event. With DropIfFull it never blocks; otherwise it waits for
// buffer space, ctx cancellation or Close. Undeliverable events are counted
// by reason.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if d.closed.Load() {
		d.drop(DropClosed, event)
		return
	}

	var wait <-chan struct{}
	if !d.cfg.DropIfFull && ctx != nil {
		wait = ctx.Done()
	}

	select {
	case d.ch <- event:
		return
	default:
	}
	if d.cfg.DropIfFull {
		d.drop(DropBufferFull, event)
		return
	}

	select {
	case d.ch <- event:
	case <-wait:
		d.drop(DropContextDone, event)
	case <-d.done:
		d.drop(DropClosed, event)
	}
}

// Close stops accepting events, flushes the buffer and waits for the sink.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped returns the total number of undeliverable events.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	var total uint64
	for r := range d.drops {
		for k := range d.drops[r] {
			total += d.drops[r][k].Load()
		}
	}
	return total
}

// Delivered returns the number of events handed to the sink.
func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}

// Stats breaks the drop count down by reason and by event type.
func (d *Dispatcher) Stats() Stats {
	s := Stats{ByReason: map[string]uint64{}, ByEvent: map[string]uint64{}}
	if d == nil {
		return s
	}
	s.Delivered = d.delivered.Load()
	for r := range d.drops {
		for k := range d.drops[r] {
			n := d.drops[r][k].Load()
			if n == 0 {
				continue
			}
			s.Dropped += n
			s.ByReason[DropReason(r).String()] += n
			s.ByEvent[eventKinds[k]] += n
		}
	}
	return s
}
