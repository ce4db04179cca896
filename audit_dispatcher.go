package goTenant

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// auditRecord pairs an event with the context it was raised under. The
// context is detached from cancellation so a sink running after the request
// finished still sees the request's values.
type auditRecord struct {
	ctx   context.Context
	event AuditEvent
}

// auditDispatcher hands events to the sink on one worker goroutine. Events
// are stamped with time, request ID and client IP at emit time, while the
// request context is still available.
type auditDispatcher struct {
	cfg    AuditConfig
	sink   AuditSink
	logger *zap.Logger
	now    func() time.Time

	// mu guards closed and every send on queue, so Close can close the
	// channel without racing a sender.
	mu      sync.RWMutex
	closed  bool
	queue   chan auditRecord
	stopped chan struct{}

	dropped    atomic.Uint64
	sinkPanics atomic.Uint64
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink, logger *zap.Logger, now func() time.Time) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}

	d := &auditDispatcher{
		cfg:     cfg,
		sink:    sink,
		logger:  logger.Named("audit"),
		now:     now,
		queue:   make(chan auditRecord, cfg.BufferSize),
		stopped: make(chan struct{}),
	}
	go d.run()
	return d
}

// run exits once Close has closed the queue and every buffered record has
// been delivered.
func (d *auditDispatcher) run() {
	defer close(d.stopped)
	for rec := range d.queue {
		d.deliver(rec)
	}
}

func (d *auditDispatcher) deliver(rec auditRecord) {
	defer func() {
		if r := recover(); r != nil {
			d.sinkPanics.Add(1)
			d.logger.Error("audit sink panicked",
				zap.String("event_type", rec.event.EventType),
				zap.Any("panic", r),
			)
		}
	}()
	d.sink.Emit(rec.ctx, rec.event)
}

// stamp fills the fields that only the emitting goroutine can know.
func (d *auditDispatcher) stamp(ctx context.Context, event AuditEvent) AuditEvent {
	if event.Timestamp.IsZero() {
		event.Timestamp = d.now().UTC()
	}
	if event.RequestID == "" {
		event.RequestID = RequestIDFromContext(ctx)
	}
	if event.IP == "" {
		event.IP = clientIPFromContext(ctx)
	}
	return event
}

// Emit enqueues event. With DropIfFull set a full buffer drops the event;
// otherwise Emit waits for room until ctx is done, which also counts as a
// drop.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	rec := auditRecord{ctx: context.WithoutCancel(ctx), event: d.stamp(ctx, event)}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- rec:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- rec:
	case <-ctx.Done():
		d.dropped.Add(1)
	}
}

// Close stops accepting events and returns after the buffer is drained.
// It is safe to call more than once.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	<-d.stopped
}

func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

func (d *auditDispatcher) SinkPanics() uint64 {
	if d == nil {
		return 0
	}
	return d.sinkPanics.Load()
}
