package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/services"
)

const (
	jsonResponseType     = "json_object"
	defaultRetryAttempts = 3
	defaultRetryBase     = 500 * time.Millisecond
	defaultRetryMax      = 5 * time.Second
)

// Client implements Analyzer against a chat-completions API.
type Client struct {
	cfg        config.Analysis
	httpClient *http.Client
	logger     *slog.Logger

	attempts  int
	retryBase time.Duration
	retryMax  time.Duration
	sleeper   func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryAttempts overrides the retry count.
func WithRetryAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs an analysis client from configuration.
func NewClient(cfg config.Analysis, logger *slog.Logger, opts ...Option) *Client {
	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		logger:     logging.NewComponentLogger(logger, "analysis"),
		attempts:   defaultRetryAttempts,
		retryBase:  defaultRetryBase,
		retryMax:   defaultRetryMax,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Analyze implements Analyzer.
func (c *Client) Analyze(ctx context.Context, req Request) (Result, error) {
	content, err := c.completeJSON(ctx, c.cfg.Model, primarySystemPrompt, primaryUserPrompt(req))
	if err != nil {
		return Result{}, err
	}
	return c.parseResult(content), nil
}

// AnalyzeEnriched implements Analyzer.
func (c *Client) AnalyzeEnriched(ctx context.Context, req Request, primary Result) (Result, error) {
	content, err := c.completeJSON(ctx, c.cfg.EnrichmentModel, enrichmentSystemPrompt, enrichmentUserPrompt(req, primary))
	if err != nil {
		return Result{}, err
	}
	return c.parseResult(content), nil
}

type resultPayload struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Tags           []string `json:"tags"`
	Category       string   `json:"category"`
	ViralScore     float64  `json:"viral_score"`
	Sentiment      string   `json:"sentiment"`
	EstimatedViews int      `json:"estimated_views"`
	BestUploadTime string   `json:"best_upload_time"`
}

// parseResult decodes a structured payload, falling back to heuristic text
// extraction for providers that answered in prose.
func (c *Client) parseResult(content string) Result {
	var payload resultPayload
	if err := decodeLenientJSON(content, &payload); err != nil {
		c.logger.Debug("provider returned unstructured output, extracting heuristically",
			logging.Error(err))
		return ExtractFromText(content)
	}

	result := Result{
		Title:          strings.TrimSpace(payload.Title),
		Description:    strings.TrimSpace(payload.Description),
		Tags:           trimAll(payload.Tags),
		Category:       strings.ToUpper(strings.TrimSpace(payload.Category)),
		ViralScore:     ClampScore(payload.ViralScore),
		Sentiment:      strings.TrimSpace(payload.Sentiment),
		EstimatedViews: payload.EstimatedViews,
		BestUploadTime: strings.TrimSpace(payload.BestUploadTime),
		Structured:     true,
		RawText:        content,
	}
	result.Hashtags = HashtagsFromTags(result.Tags)
	return result
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("analysis request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (c *Client) completeJSON(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", services.Wrap(services.ErrConfiguration, "analyze", "", "analysis api key missing", nil)
	}

	payload := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": jsonResponseType},
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		content, err := c.sendOnce(ctx, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err
		if !c.shouldRetry(ctx, err) || attempt == c.attempts {
			break
		}
		if sleepErr := c.sleep(ctx, c.backoff(attempt)); sleepErr != nil {
			return "", services.Wrap(services.ErrTransient, "analyze", "call provider", "retry interrupted", sleepErr)
		}
	}

	var statusErr *httpStatusError
	if errors.As(lastErr, &statusErr) && statusErr.StatusCode == http.StatusTooManyRequests {
		return "", services.Wrap(services.ErrRateLimited, "analyze", "call provider", "provider rate limited", lastErr)
	}
	return "", services.Wrap(services.ErrTransient, "analyze", "call provider", "", lastErr)
}

func (c *Client) sendOnce(ctx context.Context, payload chatRequest) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 || strings.TrimSpace(completion.Choices[0].Message.Content) == "" {
		return "", errors.New("empty completion")
	}
	return completion.Choices[0].Message.Content, nil
}

func (c *Client) shouldRetry(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests ||
			statusErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.retryBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= c.retryMax {
			return c.retryMax
		}
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// decodeLenientJSON tolerates code fences and surrounding prose around the
// JSON object.
func decodeLenientJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}
	if err := json.Unmarshal([]byte(trimmed), target); err == nil {
		return nil
	}

	sanitized := stripCodeFence(trimmed)
	if start := strings.Index(sanitized, "{"); start >= 0 {
		if end := strings.LastIndex(sanitized, "}"); end > start {
			sanitized = sanitized[start : end+1]
		}
	}
	return json.Unmarshal([]byte(sanitized), target)
}

func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimLeft(trimmed[3:], " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
