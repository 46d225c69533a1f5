package clipsource

import (
	"context"

	"clipflow/internal/clip"
)

// Channel identifies a resolved broadcaster.
type Channel struct {
	ID          string
	Login       string
	DisplayName string
}

// Source resolves channels and lists their recent clips.
type Source interface {
	// ResolveChannel looks up a broadcaster by login. Unknown logins return
	// an error wrapping services.ErrNotFound.
	ResolveChannel(ctx context.Context, login string) (*Channel, error)
	// FetchClips lists clips created by the channel inside the window.
	FetchClips(ctx context.Context, channelID string, window clip.Window) ([]clip.Clip, error)
}
