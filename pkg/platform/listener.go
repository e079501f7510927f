package platform

import (
	"context"
	"encoding/json"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/socketmode"

	"github.com/tinyland-inc/slacksweep/pkg/bus"
	"github.com/tinyland-inc/slacksweep/pkg/logger"
)

// Listener runs the Slack Socket Mode connection and publishes raw message
// events onto the bus. Everything except message events is acked and dropped
// here.
type Listener struct {
	client *socketmode.Client
	bus    *bus.EventBus
}

func NewListener(api *slack.Client, eb *bus.EventBus) *Listener {
	return &Listener{
		client: socketmode.New(api),
		bus:    eb,
	}
}

type envelope struct {
	TeamID string          `json:"team_id"`
	Event  json.RawMessage `json:"event"`
}

// Run blocks until the context is cancelled or the transport fails.
func (l *Listener) Run(ctx context.Context) error {
	go func() {
		if err := l.client.RunContext(ctx); err != nil && ctx.Err() == nil {
			logger.ErrorCF("platform", "Socket mode runner stopped", map[string]any{"error": err.Error()})
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-l.client.Events:
			if !ok {
				return nil
			}
			l.handle(ctx, evt)
		}
	}
}

func (l *Listener) handle(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		logger.InfoC("platform", "Connecting to Slack")
	case socketmode.EventTypeConnected:
		logger.InfoC("platform", "Connected to Slack")
	case socketmode.EventTypeConnectionError:
		logger.WarnC("platform", "Slack connection error, will retry")
	case socketmode.EventTypeEventsAPI:
		if evt.Request == nil {
			return
		}
		l.client.Ack(*evt.Request)

		var env envelope
		if err := json.Unmarshal(evt.Request.Payload, &env); err != nil {
			logger.WarnCF("platform", "Undecodable event envelope", map[string]any{"error": err.Error()})
			return
		}

		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(env.Event, &head); err != nil || head.Type != "message" {
			return
		}

		if err := l.bus.Publish(ctx, bus.InboundEvent{TeamID: env.TeamID, Payload: env.Event}); err != nil {
			logger.WarnCF("platform", "Dropping event, bus unavailable", map[string]any{"error": err.Error()})
		}
	}
}
