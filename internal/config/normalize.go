package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSource()
	c.normalizeDownload()
	c.normalizeAnalysis()
	c.normalizeQuality()
	c.normalizeRateLimit()
	c.normalizeWorkflow()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WatchlistPath) == "" {
		c.Paths.WatchlistPath = defaultWatchlistPath
	}
	if c.Paths.WatchlistPath, err = expandPath(c.Paths.WatchlistPath); err != nil {
		return fmt.Errorf("paths.watchlist_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeSource() {
	c.Source.BaseURL = strings.TrimRight(strings.TrimSpace(c.Source.BaseURL), "/")
	if c.Source.BaseURL == "" {
		c.Source.BaseURL = defaultSourceBaseURL
	}
	c.Source.ClientID = strings.TrimSpace(c.Source.ClientID)
	if c.Source.ClientID == "" {
		if value, ok := os.LookupEnv("CLIPFLOW_SOURCE_CLIENT_ID"); ok {
			c.Source.ClientID = strings.TrimSpace(value)
		}
	}
	c.Source.AuthToken = strings.TrimSpace(c.Source.AuthToken)
	if c.Source.AuthToken == "" {
		if value, ok := os.LookupEnv("CLIPFLOW_SOURCE_TOKEN"); ok {
			c.Source.AuthToken = strings.TrimSpace(value)
		}
	}
	if c.Source.RequestTimeout <= 0 {
		c.Source.RequestTimeout = defaultSourceRequestTimeout
	}
	if c.Source.WindowDays <= 0 {
		c.Source.WindowDays = defaultSourceWindowDays
	}
}

func (c *Config) normalizeDownload() {
	c.Download.YtDlpPath = strings.TrimSpace(c.Download.YtDlpPath)
	if c.Download.YtDlpPath == "" {
		c.Download.YtDlpPath = defaultYtDlpPath
	}
	if c.Download.Timeout <= 0 {
		c.Download.Timeout = defaultDownloadTimeout
	}
	if c.Download.Limit <= 0 {
		c.Download.Limit = defaultDownloadLimit
	}
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.APIKey = strings.TrimSpace(c.Analysis.APIKey)
	if c.Analysis.APIKey == "" {
		if value, ok := os.LookupEnv("CLIPFLOW_LLM_API_KEY"); ok {
			c.Analysis.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Analysis.APIKey = strings.TrimSpace(value)
		}
	}
	c.Analysis.BaseURL = strings.TrimSpace(c.Analysis.BaseURL)
	if c.Analysis.BaseURL == "" {
		c.Analysis.BaseURL = defaultAnalysisBaseURL
	}
	c.Analysis.Model = strings.TrimSpace(c.Analysis.Model)
	if c.Analysis.Model == "" {
		c.Analysis.Model = defaultAnalysisModel
	}
	c.Analysis.EnrichmentModel = strings.TrimSpace(c.Analysis.EnrichmentModel)
	if c.Analysis.EnrichmentModel == "" {
		c.Analysis.EnrichmentModel = c.Analysis.Model
	}
	if c.Analysis.TimeoutSeconds <= 0 {
		c.Analysis.TimeoutSeconds = defaultAnalysisTimeoutSeconds
	}
}

func (c *Config) normalizeQuality() {
	// A nil slice means the key was absent; an explicit empty list disables
	// blocked-term filtering.
	if c.Quality.BlockedTerms == nil {
		c.Quality.BlockedTerms = defaultBlockedTerms()
		return
	}
	terms := make([]string, 0, len(c.Quality.BlockedTerms))
	seen := make(map[string]struct{}, len(c.Quality.BlockedTerms))
	for _, term := range c.Quality.BlockedTerms {
		normalized := strings.ToLower(strings.TrimSpace(term))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		terms = append(terms, normalized)
	}
	c.Quality.BlockedTerms = terms
}

func (c *Config) normalizeRateLimit() {
	if c.RateLimit.Pools == nil {
		c.RateLimit.Pools = map[string]RateLimitPool{}
	}
	defaults := Default().RateLimit.Pools
	for name, pool := range defaults {
		if _, ok := c.RateLimit.Pools[name]; !ok {
			c.RateLimit.Pools[name] = pool
		}
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.LaunchStaggerSeconds < 0 {
		c.Workflow.LaunchStaggerSeconds = defaultLaunchStaggerSeconds
	}
	if c.Workflow.RunTimeoutSeconds <= 0 {
		c.Workflow.RunTimeoutSeconds = defaultRunTimeoutSeconds
	}
	if c.Workflow.RetentionDays <= 0 {
		c.Workflow.RetentionDays = defaultRetentionDays
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.WebhookURL = strings.TrimSpace(c.Notifications.WebhookURL)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
