package main

import (
	"os"
	"path/filepath"
	"testing"

	"clipflow/internal/config"
)

func TestResolveChannelsFromArgs(t *testing.T) {
	cfg := config.Default()
	channels, err := resolveChannels(&cfg, []string{"alpha", "beta"}, 5)
	if err != nil {
		t.Fatalf("resolveChannels: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
	if channels[0].Login != "alpha" || channels[0].Limit != 5 {
		t.Fatalf("unexpected first channel: %+v", channels[0])
	}
}

func TestResolveChannelsFromWatchlist(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "watchlist.yaml")
	data := []byte("channels:\n  - login: Streamer\n    limit: 3\n  - login: other\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write watchlist: %v", err)
	}

	cfg := config.Default()
	cfg.Paths.WatchlistPath = path

	channels, err := resolveChannels(&cfg, nil, 0)
	if err != nil {
		t.Fatalf("resolveChannels: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
	if channels[0].Login != "streamer" || channels[0].Limit != 3 {
		t.Fatalf("unexpected first channel: %+v", channels[0])
	}

	override, err := resolveChannels(&cfg, nil, 7)
	if err != nil {
		t.Fatalf("resolveChannels with limit: %v", err)
	}
	for _, channel := range override {
		if channel.Limit != 7 {
			t.Fatalf("expected limit override, got %+v", channel)
		}
	}
}

func TestResolveChannelsMissingWatchlist(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.WatchlistPath = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := resolveChannels(&cfg, nil, 0); err == nil {
		t.Fatal("expected error for missing watchlist")
	}
}
