package bus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestPublishConsume(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	in := InboundEvent{TeamID: "T1", Payload: json.RawMessage(`{"ts":"1.0"}`)}
	if err := eb.Publish(context.Background(), in); err != nil {
		t.Fatalf("publish: %v", err)
	}

	out, ok := eb.Consume(context.Background())
	if !ok {
		t.Fatal("expected event")
	}
	if out.TeamID != "T1" || string(out.Payload) != `{"ts":"1.0"}` {
		t.Errorf("unexpected event: %+v", out)
	}
}

func TestPublishAfterClose(t *testing.T) {
	eb := NewEventBus()
	eb.Close()

	err := eb.Publish(context.Background(), InboundEvent{TeamID: "T1"})
	if !errors.Is(err, ErrBusClosed) {
		t.Errorf("expected ErrBusClosed, got %v", err)
	}
}

func TestConsumeCancelled(t *testing.T) {
	eb := NewEventBus()
	defer eb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := eb.Consume(ctx); ok {
		t.Error("expected no event on cancelled context")
	}
}
