package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clipflow/internal/config"
)

const userAgent = "Clipflow-Go/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyDownloadCompleted(ctx context.Context, clipTitle, artifactPath string) error
	NotifyAnalysisCompleted(ctx context.Context, clipTitle string, viralScore float64) error
	NotifyClipReady(ctx context.Context, clipTitle string, viralScore float64, hashtags []string) error
	NotifyRunCompleted(ctx context.Context, channel string, ready, processed int, duration time.Duration) error
	NotifyRunFailed(ctx context.Context, channel, reason string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by a webhook when one is
// configured. When no webhook URL is set, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	endpoint := strings.TrimSpace(cfg.Notifications.WebhookURL)
	if endpoint == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &webhookService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		toggles:  cfg.Notifications,
	}
}

type payload struct {
	Event    string  `json:"event"`
	Title    string  `json:"title"`
	Message  string  `json:"message"`
	Priority string  `json:"priority,omitempty"`
	Channel  string  `json:"channel,omitempty"`
	Score    float64 `json:"viral_score,omitempty"`
}

type webhookService struct {
	endpoint string
	client   *http.Client
	toggles  config.Notifications
}

func (w *webhookService) NotifyDownloadCompleted(ctx context.Context, clipTitle, artifactPath string) error {
	if !w.toggles.Downloads {
		return nil
	}
	clipTitle = strings.TrimSpace(clipTitle)
	message := fmt.Sprintf("Downloaded: %s", clipTitle)
	if artifactPath = strings.TrimSpace(artifactPath); artifactPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, artifactPath)
	}
	return w.send(ctx, payload{
		Event:   "download.completed",
		Title:   "Clipflow - Download Complete",
		Message: message,
	})
}

func (w *webhookService) NotifyAnalysisCompleted(ctx context.Context, clipTitle string, viralScore float64) error {
	if !w.toggles.Analysis {
		return nil
	}
	return w.send(ctx, payload{
		Event:   "analysis.completed",
		Title:   "Clipflow - Analyzed",
		Message: fmt.Sprintf("Analyzed: %s (score %.1f)", strings.TrimSpace(clipTitle), viralScore),
		Score:   viralScore,
	})
}

func (w *webhookService) NotifyClipReady(ctx context.Context, clipTitle string, viralScore float64, hashtags []string) error {
	if !w.toggles.ClipReady {
		return nil
	}
	message := fmt.Sprintf("Ready to publish: %s (score %.1f)", strings.TrimSpace(clipTitle), viralScore)
	if len(hashtags) > 0 {
		message = fmt.Sprintf("%s\n%s", message, strings.Join(hashtags, " "))
	}
	return w.send(ctx, payload{
		Event:    "clip.ready",
		Title:    "Clipflow - Clip Ready",
		Message:  message,
		Priority: "high",
		Score:    viralScore,
	})
}

func (w *webhookService) NotifyRunCompleted(ctx context.Context, channel string, ready, processed int, duration time.Duration) error {
	if !w.toggles.Runs {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	return w.send(ctx, payload{
		Event:   "run.completed",
		Title:   "Clipflow - Run Complete",
		Message: fmt.Sprintf("Run for %s complete: %d of %d clips ready in %s", channel, ready, processed, duration),
		Channel: channel,
	})
}

func (w *webhookService) NotifyRunFailed(ctx context.Context, channel, reason string) error {
	if !w.toggles.Runs {
		return nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	return w.send(ctx, payload{
		Event:    "run.failed",
		Title:    "Clipflow - Run Failed",
		Message:  fmt.Sprintf("Run for %s failed: %s", channel, reason),
		Priority: "high",
		Channel:  channel,
	})
}

func (w *webhookService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !w.toggles.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return w.send(ctx, payload{
		Event:    "error",
		Title:    "Clipflow - Error",
		Message:  builder.String(),
		Priority: "high",
	})
}

func (w *webhookService) TestNotification(ctx context.Context) error {
	return w.send(ctx, payload{
		Event:    "test",
		Title:    "Clipflow - Test",
		Message:  "Notification system test",
		Priority: "low",
	})
}

func (w *webhookService) send(ctx context.Context, data payload) error {
	if w == nil || w.client == nil {
		return nil
	}

	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("send webhook notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, strings.TrimSpace(string(tail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyDownloadCompleted(context.Context, string, string) error { return nil }
func (noopService) NotifyAnalysisCompleted(context.Context, string, float64) error {
	return nil
}
func (noopService) NotifyClipReady(context.Context, string, float64, []string) error { return nil }
func (noopService) NotifyRunCompleted(context.Context, string, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyRunFailed(context.Context, string, string) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error      { return nil }
func (noopService) TestNotification(context.Context) error                { return nil }
