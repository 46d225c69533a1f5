package notifications_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clipflow/internal/config"
	"clipflow/internal/notifications"
)

type recordedEvent struct {
	Event   string `json:"event"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

func newRecorder(t *testing.T) (*httptest.Server, *[]recordedEvent) {
	t.Helper()
	var events []recordedEvent
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected content type %q", got)
		}
		var event recordedEvent
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		events = append(events, event)
	}))
	t.Cleanup(server.Close)
	return server, &events
}

func serviceFor(url string, mutate func(*config.Notifications)) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.WebhookURL = url
	if mutate != nil {
		mutate(&cfg.Notifications)
	}
	return notifications.NewService(&cfg)
}

func TestWebhookDeliversClipReady(t *testing.T) {
	server, events := newRecorder(t)
	svc := serviceFor(server.URL, nil)

	err := svc.NotifyClipReady(context.Background(), "INSANE clutch", 8.5, []string{"#fps", "#clutch"})
	if err != nil {
		t.Fatalf("NotifyClipReady: %v", err)
	}
	if len(*events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(*events))
	}
	event := (*events)[0]
	if event.Event != "clip.ready" {
		t.Fatalf("unexpected event %q", event.Event)
	}
	if !strings.Contains(event.Message, "#fps #clutch") {
		t.Fatalf("expected hashtags in message, got %q", event.Message)
	}
}

func TestWebhookHonorsToggles(t *testing.T) {
	server, events := newRecorder(t)
	svc := serviceFor(server.URL, func(n *config.Notifications) {
		n.Downloads = false
	})

	if err := svc.NotifyDownloadCompleted(context.Background(), "clip", "/tmp/clip.mp4"); err != nil {
		t.Fatalf("NotifyDownloadCompleted: %v", err)
	}
	if len(*events) != 0 {
		t.Fatalf("expected suppressed event, got %d", len(*events))
	}
}

func TestWebhookReportsServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)
	svc := serviceFor(server.URL, nil)

	err := svc.TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestNoWebhookIsNoop(t *testing.T) {
	svc := serviceFor("", nil)
	if err := svc.NotifyError(context.Background(), nil, "fetch"); err != nil {
		t.Fatalf("noop service returned error: %v", err)
	}
}
