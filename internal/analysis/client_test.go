package analysis_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clipflow/internal/analysis"
	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/services"
)

func chatContent(t *testing.T, content string) []byte {
	t.Helper()
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return data
}

func newClient(t *testing.T, handler http.Handler) *analysis.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return analysis.NewClient(config.Analysis{
		APIKey:          "key",
		BaseURL:         server.URL,
		Model:           "model-a",
		EnrichmentModel: "model-b",
		TimeoutSeconds:  5,
	}, logging.NewNop(), analysis.WithSleeper(func(time.Duration) {}))
}

func TestAnalyzeParsesStructuredResponse(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req struct {
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "model-a" {
			t.Errorf("unexpected model %q", req.Model)
		}
		_, _ = w.Write(chatContent(t, `{"title":"INSANE clutch","description":"A 1v5 for the ages","tags":["fps","clutch"],"category":"epic","viral_score":8.5,"sentiment":"hype","estimated_views":170}`))
	}))

	result, err := client.Analyze(context.Background(), analysis.Request{Title: "clutch round"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !result.Structured {
		t.Fatal("expected structured result")
	}
	if result.ViralScore != 8.5 || result.Category != "EPIC" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Hashtags) != 2 || result.Hashtags[0] != "#fps" {
		t.Fatalf("unexpected hashtags: %v", result.Hashtags)
	}
}

func TestAnalyzeToleratesCodeFences(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(chatContent(t, "```json\n{\"title\":\"t\",\"viral_score\":7}\n```"))
	}))

	result, err := client.Analyze(context.Background(), analysis.Request{Title: "clip"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !result.Structured || result.ViralScore != 7 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestAnalyzeFallsBackToExtraction(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(chatContent(t, "An epic moment! Score: 9\nTags: ace, clutch"))
	}))

	result, err := client.Analyze(context.Background(), analysis.Request{Title: "clip"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if result.Structured {
		t.Fatal("expected unstructured fallback result")
	}
	if result.ViralScore != 9 || result.Category != "EPIC" {
		t.Fatalf("unexpected extracted result: %+v", result)
	}
}

func TestAnalyzeRetriesServerErrors(t *testing.T) {
	var calls int
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(chatContent(t, `{"title":"t","viral_score":5}`))
	}))

	if _, err := client.Analyze(context.Background(), analysis.Request{Title: "clip"}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestAnalyzeReportsRateLimit(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))

	_, err := client.Analyze(context.Background(), analysis.Request{Title: "clip"})
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("expected rate limited error, got %v", err)
	}
}

func TestAnalyzeEnrichedUsesEnrichmentModel(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model string `json:"model"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "model-b" {
			t.Errorf("unexpected model %q", req.Model)
		}
		_, _ = w.Write(chatContent(t, `{"title":"t","viral_score":6,"best_upload_time":"18:00"}`))
	}))

	result, err := client.AnalyzeEnriched(context.Background(), analysis.Request{Title: "clip"}, analysis.Result{Title: "draft"})
	if err != nil {
		t.Fatalf("AnalyzeEnriched: %v", err)
	}
	if result.BestUploadTime != "18:00" {
		t.Fatalf("unexpected upload time: %q", result.BestUploadTime)
	}
}

func TestAnalyzeRequiresAPIKey(t *testing.T) {
	client := analysis.NewClient(config.Analysis{BaseURL: "http://unused", Model: "m"}, logging.NewNop())
	_, err := client.Analyze(context.Background(), analysis.Request{Title: "clip"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
