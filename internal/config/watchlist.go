package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// WatchChannel is one entry in the channel watchlist.
type WatchChannel struct {
	Login string `yaml:"login"`
	Limit int    `yaml:"limit"`
}

type watchlistFile struct {
	Channels []WatchChannel `yaml:"channels"`
}

// LoadWatchlist reads the YAML watchlist and returns the channels to process.
// Blank logins are skipped and duplicate logins collapse to the first entry.
func LoadWatchlist(path string) ([]WatchChannel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}

	var file watchlistFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse watchlist: %w", err)
	}

	channels := make([]WatchChannel, 0, len(file.Channels))
	seen := make(map[string]struct{}, len(file.Channels))
	for _, channel := range file.Channels {
		login := strings.ToLower(strings.TrimSpace(channel.Login))
		if login == "" {
			continue
		}
		if _, ok := seen[login]; ok {
			continue
		}
		seen[login] = struct{}{}
		channels = append(channels, WatchChannel{Login: login, Limit: channel.Limit})
	}

	if len(channels) == 0 {
		return nil, errors.New("watchlist contains no channels")
	}
	return channels, nil
}
