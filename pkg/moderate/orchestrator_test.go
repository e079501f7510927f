package moderate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/tinyland-inc/slacksweep/pkg/event"
	"github.com/tinyland-inc/slacksweep/pkg/platform"
)

type postedMessage struct {
	Channel string
	Opts    platform.PostOptions
}

type fakeMessenger struct {
	mu        sync.Mutex
	posts     []postedMessage
	uploads   []string
	postErr   error
	uploadErr error
	profile   platform.Profile
}

func (m *fakeMessenger) PostMessage(_ context.Context, channel string, opts platform.PostOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postErr != nil {
		return "", m.postErr
	}
	m.posts = append(m.posts, postedMessage{Channel: channel, Opts: opts})
	return fmt.Sprintf("100.%03d", len(m.posts)), nil
}

func (m *fakeMessenger) UploadFile(_ context.Context, name string, _ []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.uploads = append(m.uploads, name)
	return "https://new/" + name, nil
}

func (m *fakeMessenger) UserInfo(context.Context, string) (platform.Profile, error) {
	return m.profile, nil
}

type fakeActor struct {
	mu              sync.Mutex
	deletedMessages []string
	deletedFiles    []string
	deleteErr       error
}

func (a *fakeActor) DeleteMessage(_ context.Context, channel, ts string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.deleteErr != nil {
		return a.deleteErr
	}
	a.deletedMessages = append(a.deletedMessages, channel+"/"+ts)
	return nil
}

func (a *fakeActor) DeleteFile(_ context.Context, fileID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deletedFiles = append(a.deletedFiles, fileID)
	return nil
}

func (a *fakeActor) FetchFile(context.Context, string) ([]byte, error) {
	return []byte("bytes"), nil
}

func newTestOrchestrator(t *testing.T, m *fakeMessenger) *Orchestrator {
	t.Helper()
	profiles, err := NewProfileCache(8)
	if err != nil {
		t.Fatalf("profile cache: %v", err)
	}
	return NewOrchestrator(m, profiles)
}

var target = Target{
	Identity: event.MessageIdentity{TeamID: "T1", ChannelID: "C1", Timestamp: "50.0"},
	UserID:   "U1",
	Text:     "look at this",
}

func TestReplace_ReuploadBranch(t *testing.T) {
	m := &fakeMessenger{profile: platform.Profile{DisplayName: "ada", AvatarURL: "https://a/1"}}
	actor := &fakeActor{}
	o := newTestOrchestrator(t, m)

	tgt := target
	tgt.Files = []event.MediaReference{
		{Kind: event.KindImage, ID: "F1", Name: "a.png", Size: 1 << 20, Content: []byte("a")},
		{Kind: event.KindImage, ID: "F2", Name: "b.png", Size: 2 << 20, Content: []byte("b")},
	}

	if err := o.Replace(context.Background(), actor, tgt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(actor.deletedMessages) != 1 || actor.deletedMessages[0] != "C1/50.0" {
		t.Errorf("original not deleted: %v", actor.deletedMessages)
	}
	if len(actor.deletedFiles) != 2 {
		t.Errorf("stored files not cleaned up: %v", actor.deletedFiles)
	}
	if len(m.uploads) != 2 {
		t.Fatalf("expected 2 uploads, got %v", m.uploads)
	}

	if len(m.posts) != 3 {
		t.Fatalf("expected placeholder + clone + summary, got %d posts", len(m.posts))
	}
	if m.posts[0].Opts.Text != "This message has been hidden" {
		t.Errorf("placeholder text: %q", m.posts[0].Opts.Text)
	}

	clone := m.posts[1].Opts
	if clone.ThreadTS != "100.001" {
		t.Errorf("clone not threaded under placeholder: %q", clone.ThreadTS)
	}
	if clone.Username != "ada" || clone.IconURL != "https://a/1" || !clone.UnfurlLinks {
		t.Errorf("clone must impersonate the author: %+v", clone)
	}
	if clone.Text != "look at this" {
		t.Errorf("clone text: %q", clone.Text)
	}

	summary := m.posts[2].Opts
	if !summary.AsBot || summary.ThreadTS != "100.001" {
		t.Errorf("summary must post as the bot in-thread: %+v", summary)
	}
	// Original file order, regardless of upload completion order.
	want := "<https://new/a.png|a.png>\n<https://new/b.png|b.png>"
	if summary.Text != want {
		t.Errorf("summary: got %q, want %q", summary.Text, want)
	}
}

func TestReplace_OversizedTakesLinkListBranch(t *testing.T) {
	m := &fakeMessenger{profile: platform.Profile{DisplayName: "ada"}}
	actor := &fakeActor{}
	o := newTestOrchestrator(t, m)

	tgt := target
	tgt.Files = []event.MediaReference{
		{Kind: event.KindVideo, ID: "F1", Name: "big.mp4", Size: 20 << 20, Permalink: "https://sl.ack/big"},
		{Kind: event.KindImage, ID: "F2", Name: "small.png", Size: 1 << 20, Permalink: "https://sl.ack/small"},
	}

	if err := o.Replace(context.Background(), actor, tgt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.uploads) != 0 {
		t.Errorf("oversized message must not re-upload anything: %v", m.uploads)
	}
	if len(actor.deletedFiles) != 0 {
		t.Errorf("oversized branch must not delete stored files: %v", actor.deletedFiles)
	}
	if len(m.posts) != 2 {
		t.Fatalf("expected placeholder + clone only, got %d posts", len(m.posts))
	}

	text := m.posts[1].Opts.Text
	for _, want := range []string{
		"<https://sl.ack/big|big.mp4>",
		"<https://sl.ack/small|small.png>",
		"<@U1> Please copy and paste the link(s) above",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("clone text missing %q:\n%s", want, text)
		}
	}
}

func TestReplace_ExactlyFifteenMiBReuploads(t *testing.T) {
	m := &fakeMessenger{}
	o := newTestOrchestrator(t, m)

	tgt := target
	tgt.Files = []event.MediaReference{
		{Kind: event.KindImage, ID: "F1", Name: "edge.png", Size: 15 * 1024 * 1024, Content: []byte("x")},
	}

	if err := o.Replace(context.Background(), &fakeActor{}, tgt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(m.uploads) != 1 {
		t.Errorf("15 MiB exactly is on the re-upload side, got uploads %v", m.uploads)
	}
}

func TestReplace_DeleteFailureIsSwallowed(t *testing.T) {
	m := &fakeMessenger{}
	actor := &fakeActor{deleteErr: errors.New("message_not_found")}
	o := newTestOrchestrator(t, m)

	if err := o.Replace(context.Background(), actor, target); err != nil {
		t.Fatalf("delete failure must not abort the flow: %v", err)
	}
	if len(m.posts) != 2 {
		t.Errorf("expected placeholder + clone despite delete failure, got %d", len(m.posts))
	}
}

func TestReplace_PlaceholderFailureAborts(t *testing.T) {
	m := &fakeMessenger{postErr: errors.New("channel_not_found")}
	o := newTestOrchestrator(t, m)

	if err := o.Replace(context.Background(), &fakeActor{}, target); err == nil {
		t.Fatal("expected error when placeholder post fails")
	}
}

func TestReplace_UploadFailureOmitsSummary(t *testing.T) {
	m := &fakeMessenger{uploadErr: errors.New("upload_error")}
	o := newTestOrchestrator(t, m)

	tgt := target
	tgt.Files = []event.MediaReference{
		{Kind: event.KindImage, ID: "F1", Name: "a.png", Size: 100, Content: []byte("a")},
	}

	if err := o.Replace(context.Background(), &fakeActor{}, tgt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Placeholder and clone only; no summary without a successful upload.
	if len(m.posts) != 2 {
		t.Errorf("expected 2 posts, got %d", len(m.posts))
	}
}

func TestReplace_NoTextNoFilesUsesFallbackText(t *testing.T) {
	m := &fakeMessenger{}
	o := newTestOrchestrator(t, m)

	tgt := target
	tgt.Text = ""

	if err := o.Replace(context.Background(), &fakeActor{}, tgt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.posts[1].Opts.Text != "shares file" {
		t.Errorf("expected fallback text, got %q", m.posts[1].Opts.Text)
	}
}
