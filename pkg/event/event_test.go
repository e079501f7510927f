package event

import (
	"encoding/json"
	"testing"
)

func parseOrFail(t *testing.T, team, payload string) Event {
	t.Helper()
	evt, err := Parse(team, json.RawMessage(payload))
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return evt
}

func TestParse_NewMessage(t *testing.T) {
	evt := parseOrFail(t, "T1", `{
		"type": "message",
		"channel": "C1",
		"ts": "1700000000.000100",
		"user": "U1",
		"text": "hello",
		"files": [{"id": "F1", "name": "a.png", "mimetype": "image/png", "size": 100,
			"permalink": "https://sl.ack/a", "url_private": "https://files/a"}]
	}`)

	msg, ok := evt.(NewMessage)
	if !ok {
		t.Fatalf("expected NewMessage, got %T", evt)
	}
	if msg.Identity != (MessageIdentity{"T1", "C1", "1700000000.000100"}) {
		t.Errorf("unexpected identity: %+v", msg.Identity)
	}
	if msg.UserID != "U1" || msg.Text != "hello" {
		t.Errorf("unexpected fields: %+v", msg)
	}
	if len(msg.Files) != 1 || msg.Files[0].ID != "F1" {
		t.Errorf("unexpected files: %+v", msg.Files)
	}
}

func TestParse_PayloadTeamWinsOverEnvelope(t *testing.T) {
	evt := parseOrFail(t, "TENV", `{"team": "TPAY", "channel": "C1", "ts": "1.2"}`)
	if evt.(NewMessage).Identity.TeamID != "TPAY" {
		t.Errorf("expected payload team, got %q", evt.(NewMessage).Identity.TeamID)
	}
}

func TestParse_ThreadReply(t *testing.T) {
	evt := parseOrFail(t, "T1", `{"channel": "C1", "ts": "2.0", "thread_ts": "1.0",
		"files": [{"id": "F1", "mimetype": "image/png", "size": 5}]}`)
	if _, ok := evt.(ThreadReply); !ok {
		t.Fatalf("expected ThreadReply, got %T", evt)
	}
}

func TestParse_BotMessage(t *testing.T) {
	evt := parseOrFail(t, "T1", `{"subtype": "bot_message", "channel": "C1", "ts": "3.0"}`)
	if _, ok := evt.(BotMessage); !ok {
		t.Fatalf("expected BotMessage, got %T", evt)
	}
}

func TestParse_EditedMessage(t *testing.T) {
	evt := parseOrFail(t, "TENV", `{
		"subtype": "message_changed",
		"channel": "C1",
		"ts": "9.9",
		"message": {"team": "T2", "user": "U2",
			"attachments": [{"thumb_url": "https://t/1"}, {"image_url": "https://i/2"}, {}]},
		"previous_message": {"ts": "5.5", "text": "old text"}
	}`)

	msg, ok := evt.(EditedMessage)
	if !ok {
		t.Fatalf("expected EditedMessage, got %T", evt)
	}
	if msg.Identity != (MessageIdentity{"T2", "C1", "5.5"}) {
		t.Errorf("identity should target the previous message: %+v", msg.Identity)
	}
	if msg.UserID != "U2" || msg.PreviousText != "old text" {
		t.Errorf("unexpected fields: %+v", msg)
	}
	if len(msg.Previews) != 3 {
		t.Errorf("expected 3 previews, got %d", len(msg.Previews))
	}
}

func TestParse_EditedMessageMissingBodies(t *testing.T) {
	evt := parseOrFail(t, "T1", `{"subtype": "message_changed", "channel": "C1", "ts": "9.9"}`)
	if _, ok := evt.(Ignored); !ok {
		t.Fatalf("expected Ignored for incomplete edit, got %T", evt)
	}
}

func TestParse_UnknownSubtype(t *testing.T) {
	evt := parseOrFail(t, "T1", `{"subtype": "channel_join", "channel": "C1", "ts": "4.0"}`)
	ig, ok := evt.(Ignored)
	if !ok {
		t.Fatalf("expected Ignored, got %T", evt)
	}
	if ig.Subtype != "channel_join" {
		t.Errorf("unexpected subtype: %q", ig.Subtype)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := Parse("T1", json.RawMessage(`{not json`)); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}
