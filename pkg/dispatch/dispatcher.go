// Package dispatch routes inbound message events through extraction,
// classification, and - for flagged messages - the replacement orchestrator.
//
// Error containment is per event: a failed lookup or moderation action is
// logged and the event dropped; other in-flight events and the caches are
// unaffected.
package dispatch

import (
	"context"
	"strings"

	"github.com/tinyland-inc/slacksweep/pkg/bus"
	"github.com/tinyland-inc/slacksweep/pkg/classify"
	"github.com/tinyland-inc/slacksweep/pkg/event"
	"github.com/tinyland-inc/slacksweep/pkg/logger"
	"github.com/tinyland-inc/slacksweep/pkg/metrics"
	"github.com/tinyland-inc/slacksweep/pkg/moderate"
	"github.com/tinyland-inc/slacksweep/pkg/platform"
)

// TokenSource resolves a team's access token.
type TokenSource interface {
	AccessToken(ctx context.Context, teamID string) (string, error)
}

type Dispatcher struct {
	checker      classify.Checker
	tokens       TokenSource
	actors       platform.TeamActorFactory
	orchestrator *moderate.Orchestrator
	tracked      *moderate.EditTrackingStore
	exempt       []string
}

func New(
	checker classify.Checker,
	tokens TokenSource,
	actors platform.TeamActorFactory,
	orchestrator *moderate.Orchestrator,
	tracked *moderate.EditTrackingStore,
	exempt []string,
) *Dispatcher {
	return &Dispatcher{
		checker:      checker,
		tokens:       tokens,
		actors:       actors,
		orchestrator: orchestrator,
		tracked:      tracked,
		exempt:       exempt,
	}
}

// Run consumes the event bus until the context is cancelled, handling each
// event on its own goroutine.
func (d *Dispatcher) Run(ctx context.Context, eb *bus.EventBus) {
	for {
		evt, ok := eb.Consume(ctx)
		if !ok {
			return
		}
		go d.Handle(ctx, evt)
	}
}

// Handle processes one raw inbound event end to end.
func (d *Dispatcher) Handle(ctx context.Context, evt bus.InboundEvent) {
	parsed, err := event.Parse(evt.TeamID, evt.Payload)
	if err != nil {
		logger.WarnCF("dispatch", "Dropping undecodable event", map[string]any{"error": err.Error()})
		return
	}

	switch msg := parsed.(type) {
	case event.NewMessage:
		metrics.EventsSeen.WithLabelValues("message").Inc()
		d.handleNew(ctx, msg)
	case event.EditedMessage:
		metrics.EventsSeen.WithLabelValues("message_changed").Inc()
		d.handleEdit(ctx, msg)
	case event.BotMessage:
		metrics.EventsSeen.WithLabelValues("bot_message").Inc()
	case event.ThreadReply:
		metrics.EventsSeen.WithLabelValues("thread_reply").Inc()
	case event.Ignored:
		metrics.EventsSeen.WithLabelValues("ignored").Inc()
	}
}

func (d *Dispatcher) handleNew(ctx context.Context, msg event.NewMessage) {
	if d.isExempt(msg.UserID) {
		return
	}

	// Link attachments are not classified at creation time; they are only
	// re-checked if the message is later edited. Marking requires at least
	// one actual link.
	if len(msg.LinkURLs()) > 0 {
		d.tracked.Mark(msg.Identity)
	}

	media := msg.MediaReferences()
	if len(media) == 0 {
		return
	}

	token, err := d.tokens.AccessToken(ctx, msg.Identity.TeamID)
	if err != nil {
		logger.ErrorCF("dispatch", "Token lookup failed, dropping event", map[string]any{
			"team":  msg.Identity.TeamID,
			"error": err.Error(),
		})
		return
	}
	actor := d.actors(token)

	results := make([]classify.Result, 0, len(media))
	for i := range media {
		content, err := actor.FetchFile(ctx, media[i].URLPrivate)
		if err != nil {
			logger.WarnCF("dispatch", "File fetch failed, treating as not flagged", map[string]any{
				"file_id": media[i].ID,
				"error":   err.Error(),
			})
			results = append(results, classify.Result{ReferenceID: media[i].ID, Status: classify.StatusFailure})
			continue
		}
		media[i].Content = content
		results = append(results, d.checker.CheckBytes(ctx, media[i].ID, media[i].Name, content))
	}

	decision := classify.Decide(msg.Identity, results)
	if !decision.Flagged {
		return
	}
	metrics.MessagesFlagged.Inc()
	logger.InfoCF("dispatch", "Message flagged, replacing", map[string]any{
		"identity": msg.Identity.String(),
		"refs":     decision.FlaggedRefs,
	})

	err = d.orchestrator.Replace(ctx, actor, moderate.Target{
		Identity: msg.Identity,
		UserID:   msg.UserID,
		Text:     msg.Text,
		Files:    media,
	})
	if err != nil {
		metrics.ModerationFailures.Inc()
		logger.ErrorCF("dispatch", "Moderation action failed", map[string]any{
			"identity": msg.Identity.String(),
			"error":    err.Error(),
		})
	}
}

func (d *Dispatcher) handleEdit(ctx context.Context, msg event.EditedMessage) {
	if !d.tracked.WasMarked(msg.Identity) {
		return
	}
	if d.isExempt(msg.UserID) {
		return
	}

	urls := msg.PreviewURLs()
	if len(urls) == 0 {
		return
	}

	results := make([]classify.Result, 0, len(urls))
	for _, u := range urls {
		results = append(results, d.checker.CheckURL(ctx, u, u))
	}

	decision := classify.Decide(msg.Identity, results)
	if !decision.Flagged {
		return
	}
	metrics.MessagesFlagged.Inc()
	logger.InfoCF("dispatch", "Edited message flagged, replacing original", map[string]any{
		"identity": msg.Identity.String(),
	})

	token, err := d.tokens.AccessToken(ctx, msg.Identity.TeamID)
	if err != nil {
		logger.ErrorCF("dispatch", "Token lookup failed, dropping event", map[string]any{
			"team":  msg.Identity.TeamID,
			"error": err.Error(),
		})
		return
	}

	err = d.orchestrator.Replace(ctx, d.actors(token), moderate.Target{
		Identity: msg.Identity,
		UserID:   msg.UserID,
		Text:     msg.PreviousText,
	})
	if err != nil {
		metrics.ModerationFailures.Inc()
		logger.ErrorCF("dispatch", "Moderation action failed", map[string]any{
			"identity": msg.Identity.String(),
			"error":    err.Error(),
		})
	}
}

func (d *Dispatcher) isExempt(userID string) bool {
	for _, e := range d.exempt {
		if userID == strings.TrimPrefix(e, "@") {
			return true
		}
	}
	return false
}
