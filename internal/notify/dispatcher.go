package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultDeliveryTimeout = 5 * time.Second

// Dispatcher fans events out to sinks from a single background worker.
// Events published while the buffer is full are dropped with a warning.
type Dispatcher struct {
	logger  *zap.Logger
	sinks   []Sink
	events  chan Event
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

var _ Publisher = (*Dispatcher)(nil)

func NewDispatcher(logger *zap.Logger, buffer int, sinks ...Sink) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		logger:  logger.Named("notify"),
		sinks:   sinks,
		events:  make(chan Event, buffer),
		timeout: defaultDeliveryTimeout,
	}
}

// Start launches the delivery worker. Call Close to drain and stop it.
func (d *Dispatcher) Start(ctx context.Context) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		for ev := range d.events {
			d.deliver(ctx, ev)
		}
	}()
}

func (d *Dispatcher) Publish(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.events <- ev:
	default:
		d.logger.Warn("notification buffer full, dropping event",
			zap.String("type", string(ev.Type)),
			zap.String("transaction_id", ev.TransactionID),
			zap.String("instruction_id", ev.InstructionID),
		)
	}
}

// Close stops accepting events and waits for queued ones to be delivered.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.events)
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) {
	for _, sink := range d.sinks {
		if err := d.deliverOne(ctx, sink, ev); err != nil {
			d.logger.Warn("notification delivery failed",
				zap.String("type", string(ev.Type)),
				zap.String("sink", fmt.Sprintf("%T", sink)),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) deliverOne(ctx context.Context, sink Sink, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panicked: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
	defer cancel()
	return sink.Deliver(ctx, ev)
}
