// Package event defines the typed message-event model for slacksweep.
//
// Slack delivers message events as loosely shaped JSON with many optional
// keys. This package parses a raw payload exactly once, at the dispatcher
// boundary, into one of a small set of tagged variants; downstream code only
// ever sees the typed form.
package event

import (
	"encoding/json"
	"fmt"
)

// MessageIdentity uniquely identifies a message. Slack timestamps are unique
// per channel, so the triple is a stable key.
type MessageIdentity struct {
	TeamID    string
	ChannelID string
	Timestamp string
}

func (id MessageIdentity) String() string {
	return id.TeamID + ":" + id.ChannelID + ":" + id.Timestamp
}

// MediaKind distinguishes the three media shapes the moderation flow handles.
type MediaKind string

const (
	KindImage MediaKind = "image"
	KindVideo MediaKind = "video"
	KindLink  MediaKind = "link"
)

// MediaReference is one attachment or link candidate extracted from a message.
// Content stays nil until the orchestrator fetches the bytes; it is never
// retained across events.
type MediaReference struct {
	Kind       MediaKind
	ID         string
	Name       string
	Permalink  string
	URLPrivate string
	Size       int64 // bytes; zero for links
	Content    []byte
}

// FileInfo mirrors one entry of the payload's files[] list, before any
// mimetype filtering.
type FileInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Permalink  string `json:"permalink"`
	URLPrivate string `json:"url_private"`
	Size       int64  `json:"size"`
	Mimetype   string `json:"mimetype"`
}

// BlockElement is a node of the rich-text block tree. Only type "link" leaves
// carry a URL the extractor cares about.
type BlockElement struct {
	Type     string         `json:"type"`
	URL      string         `json:"url"`
	Elements []BlockElement `json:"elements"`
}

type Block struct {
	Elements []BlockElement `json:"elements"`
}

// Preview is one link-unfurl attachment on an edited message.
type Preview struct {
	ThumbURL string `json:"thumb_url"`
	ImageURL string `json:"image_url"`
}

// Event is the closed set of message-event variants.
type Event interface {
	isEvent()
}

// NewMessage is an ordinary user message (no subtype).
type NewMessage struct {
	Identity MessageIdentity
	UserID   string
	Text     string
	Files    []FileInfo
	Blocks   []Block
}

// EditedMessage is a message_changed event. Identity refers to the previous
// (original) message, which is the target of any moderation action.
type EditedMessage struct {
	Identity     MessageIdentity
	UserID       string
	PreviousText string
	Previews     []Preview
}

// BotMessage is a bot_message event; never moderated.
type BotMessage struct {
	Identity MessageIdentity
}

// ThreadReply is any message carrying thread_ts; never moderated, which also
// keeps the bot's own moderation replies from re-entering the flow.
type ThreadReply struct {
	Identity MessageIdentity
}

// Ignored is an event with a subtype the dispatcher has no interest in.
type Ignored struct {
	Subtype string
}

func (NewMessage) isEvent()    {}
func (EditedMessage) isEvent() {}
func (BotMessage) isEvent()    {}
func (ThreadReply) isEvent()   {}
func (Ignored) isEvent()       {}

type rawPayload struct {
	Subtype  string     `json:"subtype"`
	ThreadTS string     `json:"thread_ts"`
	Team     string     `json:"team"`
	Channel  string     `json:"channel"`
	TS       string     `json:"ts"`
	User     string     `json:"user"`
	Text     string     `json:"text"`
	Files    []FileInfo `json:"files"`
	Blocks   []Block    `json:"blocks"`
	Message  *struct {
		Team        string    `json:"team"`
		User        string    `json:"user"`
		Attachments []Preview `json:"attachments"`
	} `json:"message"`
	PreviousMessage *struct {
		TS   string `json:"ts"`
		Text string `json:"text"`
	} `json:"previous_message"`
}

// Parse decodes one raw message-event payload into its typed variant.
// envelopeTeam is the team id from the delivery envelope, used when the
// payload itself omits one.
func Parse(envelopeTeam string, raw json.RawMessage) (Event, error) {
	var p rawPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding message payload: %w", err)
	}

	team := p.Team
	if team == "" {
		team = envelopeTeam
	}

	if p.ThreadTS != "" {
		return ThreadReply{Identity: MessageIdentity{team, p.Channel, p.TS}}, nil
	}

	switch p.Subtype {
	case "message_changed":
		if p.Message == nil || p.PreviousMessage == nil {
			return Ignored{Subtype: p.Subtype}, nil
		}
		if p.Message.Team != "" {
			team = p.Message.Team
		}
		return EditedMessage{
			Identity:     MessageIdentity{team, p.Channel, p.PreviousMessage.TS},
			UserID:       p.Message.User,
			PreviousText: p.PreviousMessage.Text,
			Previews:     p.Message.Attachments,
		}, nil
	case "bot_message":
		return BotMessage{Identity: MessageIdentity{team, p.Channel, p.TS}}, nil
	case "":
		return NewMessage{
			Identity: MessageIdentity{team, p.Channel, p.TS},
			UserID:   p.User,
			Text:     p.Text,
			Files:    p.Files,
			Blocks:   p.Blocks,
		}, nil
	default:
		return Ignored{Subtype: p.Subtype}, nil
	}
}
