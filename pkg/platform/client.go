// Package platform wraps the Slack Web API behind narrow interfaces so the
// moderation flow can be exercised against fakes.
//
// Two token scopes are in play: the bot token posts and uploads on the bot's
// behalf, while a per-team access token (from the install flow) is needed to
// delete the offending message, delete its stored files, and download private
// file content.
package platform

import (
	"bytes"
	"context"
	"fmt"

	"github.com/slack-go/slack"
)

// Profile is the cosmetic snippet used to impersonate the original author.
type Profile struct {
	DisplayName string
	AvatarURL   string
}

// PostOptions shapes one chat.postMessage call.
type PostOptions struct {
	Text        string
	ThreadTS    string
	Username    string // with IconURL, posts under the author's visible identity
	IconURL     string
	UnfurlLinks bool
	AsBot       bool // post under the bot's own identity
}

// Messenger is the bot-token API surface.
type Messenger interface {
	PostMessage(ctx context.Context, channel string, opts PostOptions) (ts string, err error)
	UploadFile(ctx context.Context, name string, content []byte) (permalink string, err error)
	UserInfo(ctx context.Context, userID string) (Profile, error)
}

// TeamActor is the per-team access-token API surface.
type TeamActor interface {
	DeleteMessage(ctx context.Context, channel, ts string) error
	DeleteFile(ctx context.Context, fileID string) error
	FetchFile(ctx context.Context, urlPrivate string) ([]byte, error)
}

// TeamActorFactory builds a TeamActor from a team's access token.
type TeamActorFactory func(token string) TeamActor

// SlackMessenger implements Messenger on a slack-go client.
type SlackMessenger struct {
	api *slack.Client
}

func NewSlackMessenger(api *slack.Client) *SlackMessenger {
	return &SlackMessenger{api: api}
}

func (m *SlackMessenger) PostMessage(ctx context.Context, channel string, opts PostOptions) (string, error) {
	msgOpts := []slack.MsgOption{slack.MsgOptionText(opts.Text, false)}
	if opts.ThreadTS != "" {
		msgOpts = append(msgOpts, slack.MsgOptionTS(opts.ThreadTS))
	}
	if opts.Username != "" {
		msgOpts = append(msgOpts,
			slack.MsgOptionUsername(opts.Username),
			slack.MsgOptionIconURL(opts.IconURL),
		)
	}
	if opts.UnfurlLinks {
		msgOpts = append(msgOpts, slack.MsgOptionEnableLinkUnfurl())
	}
	if opts.AsBot {
		msgOpts = append(msgOpts, slack.MsgOptionAsUser(true))
	}

	_, ts, err := m.api.PostMessageContext(ctx, channel, msgOpts...)
	if err != nil {
		return "", fmt.Errorf("posting message: %w", err)
	}
	return ts, nil
}

func (m *SlackMessenger) UploadFile(ctx context.Context, name string, content []byte) (string, error) {
	summary, err := m.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		Filename: name,
		Title:    name,
		Reader:   bytes.NewReader(content),
		FileSize: len(content),
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}

	// The upload response carries no permalink; resolve it separately.
	file, _, _, err := m.api.GetFileInfoContext(ctx, summary.ID, 0, 0)
	if err != nil {
		return "", fmt.Errorf("resolving permalink for %s: %w", name, err)
	}
	return file.Permalink, nil
}

func (m *SlackMessenger) UserInfo(ctx context.Context, userID string) (Profile, error) {
	user, err := m.api.GetUserInfoContext(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("looking up user %s: %w", userID, err)
	}
	return Profile{
		DisplayName: user.Profile.DisplayName,
		AvatarURL:   user.Profile.Image192,
	}, nil
}

// slackTeamActor implements TeamActor on a slack-go client authenticated with
// a team access token.
type slackTeamActor struct {
	api *slack.Client
}

// NewSlackTeamActor is the production TeamActorFactory.
func NewSlackTeamActor(token string) TeamActor {
	return &slackTeamActor{api: slack.New(token)}
}

func (a *slackTeamActor) DeleteMessage(ctx context.Context, channel, ts string) error {
	if _, _, err := a.api.DeleteMessageContext(ctx, channel, ts); err != nil {
		return fmt.Errorf("deleting message %s/%s: %w", channel, ts, err)
	}
	return nil
}

func (a *slackTeamActor) DeleteFile(ctx context.Context, fileID string) error {
	if err := a.api.DeleteFileContext(ctx, fileID); err != nil {
		return fmt.Errorf("deleting file %s: %w", fileID, err)
	}
	return nil
}

func (a *slackTeamActor) FetchFile(ctx context.Context, urlPrivate string) ([]byte, error) {
	var buf bytes.Buffer
	if err := a.api.GetFileContext(ctx, urlPrivate, &buf); err != nil {
		return nil, fmt.Errorf("downloading file content: %w", err)
	}
	return buf.Bytes(), nil
}
