package clipsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"clipflow/internal/clip"
	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/services"
)

const maxClipsPerPage = 100

// HTTPSource talks to a Helix-style clips API over HTTPS.
type HTTPSource struct {
	baseURL    string
	clientID   string
	authToken  string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTP constructs a source from configuration.
func NewHTTP(cfg config.Source, logger *slog.Logger) *HTTPSource {
	return &HTTPSource{
		baseURL:   cfg.BaseURL,
		clientID:  cfg.ClientID,
		authToken: cfg.AuthToken,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.RequestTimeout) * time.Second,
		},
		logger: logging.NewComponentLogger(logger, "clipsource"),
	}
}

type userPayload struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

type clipPayload struct {
	ID              string  `json:"id"`
	URL             string  `json:"url"`
	Title           string  `json:"title"`
	CreatorName     string  `json:"creator_name"`
	BroadcasterName string  `json:"broadcaster_name"`
	GameID          string  `json:"game_id"`
	ViewCount       *int    `json:"view_count"`
	Duration        float64 `json:"duration"`
	CreatedAt       string  `json:"created_at"`
}

// ResolveChannel implements Source.
func (s *HTTPSource) ResolveChannel(ctx context.Context, login string) (*Channel, error) {
	query := url.Values{"login": {login}}
	var payload struct {
		Data []userPayload `json:"data"`
	}
	if err := s.getJSON(ctx, "/users", query, &payload); err != nil {
		return nil, err
	}
	if len(payload.Data) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "fetch", "resolve channel",
			fmt.Sprintf("channel %q not found", login), nil)
	}

	user := payload.Data[0]
	s.logger.Debug("channel resolved",
		logging.String("login", user.Login),
		logging.String("channel_id", user.ID))
	return &Channel{ID: user.ID, Login: user.Login, DisplayName: user.DisplayName}, nil
}

// FetchClips implements Source.
func (s *HTTPSource) FetchClips(ctx context.Context, channelID string, window clip.Window) ([]clip.Clip, error) {
	query := url.Values{
		"broadcaster_id": {channelID},
		"first":          {strconv.Itoa(maxClipsPerPage)},
	}
	if !window.Start.IsZero() {
		query.Set("started_at", window.Start.UTC().Format(time.RFC3339))
	}
	if !window.End.IsZero() {
		query.Set("ended_at", window.End.UTC().Format(time.RFC3339))
	}

	var payload struct {
		Data []clipPayload `json:"data"`
	}
	if err := s.getJSON(ctx, "/clips", query, &payload); err != nil {
		return nil, err
	}

	clips := make([]clip.Clip, 0, len(payload.Data))
	for _, entry := range payload.Data {
		created, err := time.Parse(time.RFC3339, entry.CreatedAt)
		if err != nil {
			created = time.Time{}
		}
		clips = append(clips, clip.Clip{
			ID:          entry.ID,
			URL:         entry.URL,
			Title:       entry.Title,
			Creator:     entry.CreatorName,
			Broadcaster: entry.BroadcasterName,
			Game:        entry.GameID,
			ViewCount:   entry.ViewCount,
			Duration:    entry.Duration,
			CreatedAt:   created,
		})
	}
	s.logger.Debug("clips fetched",
		logging.String("channel_id", channelID),
		logging.Int("count", len(clips)))
	return clips, nil
}

func (s *HTTPSource) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := s.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "fetch", "build request", endpoint, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.authToken)
	if s.clientID != "" {
		req.Header.Set("Client-Id", s.clientID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "fetch", "call source api", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return services.Wrap(services.ErrRateLimited, "fetch", "call source api",
			fmt.Sprintf("source api returned %d", resp.StatusCode), nil)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return services.Wrap(services.ErrTransient, "fetch", "call source api",
			fmt.Sprintf("source api returned %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrTransient, "fetch", "decode response", endpoint, err)
	}
	return nil
}
