// Package bus decouples the Socket Mode listener from the event dispatcher
// with a buffered in-process queue.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
)

// ErrBusClosed is returned when publishing to a closed EventBus.
var ErrBusClosed = errors.New("event bus closed")

// InboundEvent is one raw message-event payload plus its delivery envelope
// team. Parsing into a typed variant happens in the dispatcher.
type InboundEvent struct {
	TeamID  string
	Payload json.RawMessage
}

type EventBus struct {
	inbound chan InboundEvent
	done    chan struct{}
	closed  atomic.Bool
}

func NewEventBus() *EventBus {
	return &EventBus{
		inbound: make(chan InboundEvent, 100),
		done:    make(chan struct{}),
	}
}

func (eb *EventBus) Publish(ctx context.Context, evt InboundEvent) error {
	if eb.closed.Load() {
		return ErrBusClosed
	}
	select {
	case eb.inbound <- evt:
		return nil
	case <-eb.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (eb *EventBus) Consume(ctx context.Context) (InboundEvent, bool) {
	select {
	case evt, ok := <-eb.inbound:
		return evt, ok
	case <-eb.done:
		return InboundEvent{}, false
	case <-ctx.Done():
		return InboundEvent{}, false
	}
}

func (eb *EventBus) Close() {
	if eb.closed.CompareAndSwap(false, true) {
		close(eb.done)
	}
}
