package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls the dispatch queue.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// Dispatcher forwards events to a sink from its own goroutine so recording
// never blocks a session operation. Closing flushes whatever is queued.
type Dispatcher struct {
	sink       Sink
	queue      chan Event
	dropIfFull bool

	mu      sync.RWMutex
	closed  bool
	wg      sync.WaitGroup
	dropped atomic.Uint64
}

// NewDispatcher returns nil when auditing is disabled; a nil Dispatcher is
// safe to use everywhere.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:       sink,
		queue:      make(chan Event, size),
		dropIfFull: cfg.DropIfFull,
	}
	d.wg.Add(1)
	go d.forward()
	return d
}

// forward drains the queue until Close; the closed channel flushes the
// remaining buffer before the goroutine exits.
func (d *Dispatcher) forward() {
	defer d.wg.Done()
	for event := range d.queue {
		d.sink.Emit(context.Background(), event)
	}
}

func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.dropIfFull {
		select {
		case d.queue <- event:
		default:
			d.dropped.Add(1)
		}
		return
	}

	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case d.queue <- event:
	case <-ctx.Done():
	}
}

// Close stops intake and blocks until every queued event reached the sink.
// Idempotent.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

// Dropped reports how many events were discarded under pressure.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Recorder builds session-domain events and hands them to a Dispatcher. It
// stamps the owning context and the current device so call sites pass only
// what varies per event.
type Recorder struct {
	dispatcher *Dispatcher
	contextID  string
	deviceID   func() string
}

// NewRecorder wires a Recorder over d. A nil d yields a Recorder that
// records nothing.
func NewRecorder(d *Dispatcher, contextID string, deviceID func() string) *Recorder {
	return &Recorder{dispatcher: d, contextID: contextID, deviceID: deviceID}
}

// Record emits one event. failure and metadata may be nil.
func (r *Recorder) Record(ctx context.Context, eventType string, success bool, userID string, failure error, metadata map[string]string) {
	if r == nil || r.dispatcher == nil {
		return
	}
	event := Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		ContextID: r.contextID,
		Success:   success,
		Metadata:  metadata,
	}
	if r.deviceID != nil {
		event.DeviceID = r.deviceID()
	}
	if failure != nil {
		event.Error = failure.Error()
	}
	r.dispatcher.Emit(ctx, event)
}

// Dropped reports the underlying dispatcher's drop count.
func (r *Recorder) Dropped() uint64 {
	if r == nil {
		return 0
	}
	return r.dispatcher.Dropped()
}

// Close flushes and stops the underlying dispatcher.
func (r *Recorder) Close() {
	if r != nil {
		r.dispatcher.Close()
	}
}
