// Package moderate turns a flagged message into its sanitized replacement.
//
// The flow is a best-effort transaction: delete the original, post a
// placeholder, reconstruct the content in a thread under it, and re-upload or
// link the offending files depending on size. Steps that fail after the
// placeholder leave the message partially moderated; there is no rollback.
package moderate

import (
	"context"
	"fmt"
	"strings"

	"github.com/tinyland-inc/slacksweep/pkg/event"
	"github.com/tinyland-inc/slacksweep/pkg/logger"
	"github.com/tinyland-inc/slacksweep/pkg/platform"
)

// MaxReuploadBytes is the per-file size ceiling for the re-upload branch.
// Files strictly larger than this switch the whole message to the link-list
// fallback.
const MaxReuploadBytes = 15 * 1024 * 1024

const placeholderText = "This message has been hidden"

// Target is the flagged message the orchestrator acts on. Files carry
// fetched content when the re-upload branch is possible.
type Target struct {
	Identity event.MessageIdentity
	UserID   string
	Text     string
	Files    []event.MediaReference
}

type Orchestrator struct {
	messenger platform.Messenger
	profiles  *ProfileCache
}

func NewOrchestrator(messenger platform.Messenger, profiles *ProfileCache) *Orchestrator {
	return &Orchestrator{messenger: messenger, profiles: profiles}
}

// Replace hides the target message and reposts its sanitized clone into a
// thread. The actor must be authenticated with the target team's access
// token; deletes and file fetches need the installing user's scopes.
func (o *Orchestrator) Replace(ctx context.Context, actor platform.TeamActor, target Target) error {
	profile, err := o.profile(ctx, target.UserID)
	if err != nil {
		return err
	}

	channel := target.Identity.ChannelID

	// Deletion is best-effort: the message may already be gone or the token's
	// permissions revoked. The rest of the flow still runs.
	if err := actor.DeleteMessage(ctx, channel, target.Identity.Timestamp); err != nil {
		logger.WarnCF("moderate", "Could not delete original message, continuing", map[string]any{
			"identity": target.Identity.String(),
			"error":    err.Error(),
		})
	}

	placeholderTS, err := o.messenger.PostMessage(ctx, channel, platform.PostOptions{
		Text: placeholderText,
	})
	if err != nil {
		return fmt.Errorf("posting placeholder: %w", err)
	}

	text := target.Text
	var summary string

	if len(target.Files) > 0 {
		if anyOversized(target.Files) {
			text = appendLinkFallback(text, target.UserID, target.Files)
		} else {
			summary = o.reuploadAll(ctx, actor, target.Files)
		}
	}

	if text == "" {
		text = "shares file"
	}
	_, err = o.messenger.PostMessage(ctx, channel, platform.PostOptions{
		Text:        text,
		ThreadTS:    placeholderTS,
		Username:    profile.DisplayName,
		IconURL:     profile.AvatarURL,
		UnfurlLinks: true,
	})
	if err != nil {
		return fmt.Errorf("posting thread clone: %w", err)
	}

	if summary != "" {
		_, err = o.messenger.PostMessage(ctx, channel, platform.PostOptions{
			Text:     summary,
			ThreadTS: placeholderTS,
			AsBot:    true,
		})
		if err != nil {
			return fmt.Errorf("posting reshared file list: %w", err)
		}
	}

	return nil
}

func (o *Orchestrator) profile(ctx context.Context, userID string) (platform.Profile, error) {
	if p, ok := o.profiles.Get(userID); ok {
		return p, nil
	}
	p, err := o.messenger.UserInfo(ctx, userID)
	if err != nil {
		return platform.Profile{}, fmt.Errorf("resolving author profile: %w", err)
	}
	o.profiles.Put(userID, p)
	return p, nil
}

func anyOversized(files []event.MediaReference) bool {
	for _, f := range files {
		if f.Size > MaxReuploadBytes {
			return true
		}
	}
	return false
}

// appendLinkFallback builds the no-reupload variant: the original text plus a
// permalink per file and a notice asking the author to re-share manually.
func appendLinkFallback(text, userID string, files []event.MediaReference) string {
	var b strings.Builder
	b.WriteString(text)
	for _, f := range files {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "<%s|%s>", f.Permalink, f.Name)
	}
	if b.Len() > 0 {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n<@%s> Please copy and paste the link(s) above to "+
		"this thread if you want to reshare. Sorry for inconvenience.", userID)
	return b.String()
}

type uploadResult struct {
	index     int
	name      string
	permalink string
	err       error
}

// reuploadAll deletes each stored original and re-uploads its fetched bytes,
// one goroutine per file. The summary lists permalinks in original file
// order; failed uploads are logged and skipped.
func (o *Orchestrator) reuploadAll(ctx context.Context, actor platform.TeamActor, files []event.MediaReference) string {
	for _, f := range files {
		// Storage hygiene: drop the flagged copy before re-uploading.
		if err := actor.DeleteFile(ctx, f.ID); err != nil {
			logger.WarnCF("moderate", "Could not delete stored file", map[string]any{
				"file_id": f.ID,
				"error":   err.Error(),
			})
		}
	}

	results := make(chan uploadResult, len(files))
	for i, f := range files {
		go func(i int, f event.MediaReference) {
			permalink, err := o.messenger.UploadFile(ctx, f.Name, f.Content)
			results <- uploadResult{index: i, name: f.Name, permalink: permalink, err: err}
		}(i, f)
	}

	ordered := make([]uploadResult, len(files))
	for range files {
		r := <-results
		ordered[r.index] = r
	}

	var lines []string
	for _, r := range ordered {
		if r.err != nil {
			logger.ErrorCF("moderate", "Re-upload failed, file omitted from summary", map[string]any{
				"file":  r.name,
				"error": r.err.Error(),
			})
			continue
		}
		lines = append(lines, fmt.Sprintf("<%s|%s>", r.permalink, r.name))
	}
	return strings.Join(lines, "\n")
}
