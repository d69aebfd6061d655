package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aussiebroadwan/hub/pkg/slogx"
)

const (
	DefaultQueueSize   = 256
	DefaultSendTimeout = 10 * time.Second
)

// Emitter is the fire-and-forget side of auditing used by the services.
type Emitter interface {
	Emit(ctx context.Context, e Event)
}

// Synchronous delivers inline, logging and swallowing sink errors.
type Synchronous struct {
	Sink   Sink
	Config Config
}

func (s Synchronous) Emit(ctx context.Context, e Event) {
	if err := s.Sink.Send(ctx, s.Config.prepare(e)); err != nil {
		slogx.FromContext(ctx).Warn("audit delivery failed",
			slog.String("event_id", e.ID),
			slog.String("kind", string(e.Kind)),
			slog.Any("error", err),
		)
	}
}

// Dispatcher queues events and delivers them from a single background
// worker. When the queue is full new events are dropped.
type Dispatcher struct {
	Sink   Sink
	Logger *slog.Logger
	Config Config

	queue   chan Event
	stopCh  chan struct{}
	doneCh  chan struct{}
	started atomic.Bool
	once    sync.Once
	dropped atomic.Uint64

	// mu orders enqueues before the stop signal, so the worker's final
	// drain sees every accepted event.
	mu      sync.RWMutex
	stopped bool
}

// NewDispatcher creates a Dispatcher. Call Start before emitting.
func NewDispatcher(sink Sink, logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		Sink:   sink,
		Logger: logger,
		Config: cfg,
		queue:  make(chan Event, cfg.QueueSize),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the background delivery worker.
func (d *Dispatcher) Start() {
	if !d.started.CompareAndSwap(false, true) {
		return
	}
	go d.run()
	d.Logger.Info("audit dispatcher started", "queue_size", d.Config.QueueSize)
}

// Stop stops accepting events, delivers what is already queued and waits for
// the worker to exit.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.stopCh)
		d.mu.Unlock()

		if d.started.Load() {
			<-d.doneCh
		}
		// Anything still queued was never going to be delivered.
		for {
			select {
			case e := <-d.queue:
				d.drop(e, "dispatcher stopped")
				continue
			default:
			}
			break
		}
		d.Logger.Info("audit dispatcher stopped", "dropped", d.dropped.Load())
	})
}

// Emit enqueues e without blocking.
func (d *Dispatcher) Emit(ctx context.Context, e Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.drop(e, "dispatcher stopped")
		return
	}

	select {
	case d.queue <- d.Config.prepare(e):
	default:
		d.drop(e, "queue full")
	}
}

// Dropped reports how many events were discarded.
func (d *Dispatcher) Dropped() uint64 { return d.dropped.Load() }

func (d *Dispatcher) drop(e Event, reason string) {
	d.dropped.Add(1)
	d.Logger.Warn("audit event dropped",
		slog.String("event_id", e.ID),
		slog.String("kind", string(e.Kind)),
		slog.String("reason", reason),
	)
}

func (d *Dispatcher) run() {
	defer close(d.doneCh)

	for {
		select {
		case e := <-d.queue:
			d.deliver(e)
		case <-d.stopCh:
			for {
				select {
				case e := <-d.queue:
					d.deliver(e)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.Config.SendTimeout)
	defer cancel()

	if err := d.Sink.Send(slogx.WithContext(ctx, d.Logger), e); err != nil {
		d.Logger.Warn("audit delivery failed",
			slog.String("event_id", e.ID),
			slog.String("kind", string(e.Kind)),
			slog.Any("error", err),
		)
	}
}
