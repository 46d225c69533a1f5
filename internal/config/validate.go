package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateQuality(); err != nil {
		return err
	}
	if err := c.validateRateLimit(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateNotifications()
}

func (c *Config) validateSource() error {
	if c.Source.AuthToken == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/clipflow/config.toml"
		}
		return fmt.Errorf("source.auth_token is required. Set CLIPFLOW_SOURCE_TOKEN env var or edit %s (create with 'clipflow config init')", defaultPath)
	}
	if c.Source.RequestTimeout <= 0 {
		return errors.New("source.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.APIKey == "" {
		return errors.New("analysis.api_key is required. Set CLIPFLOW_LLM_API_KEY or OPENROUTER_API_KEY env var")
	}
	if c.Analysis.TimeoutSeconds <= 0 {
		return errors.New("analysis.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateQuality() error {
	if c.Quality.MinViralScore < 0 || c.Quality.MinViralScore > 10 {
		return errors.New("quality.min_viral_score must be between 0 and 10")
	}
	if c.Quality.MinDurationSeconds < 0 {
		return errors.New("quality.min_duration_seconds must be >= 0")
	}
	if c.Quality.MaxDurationSeconds <= c.Quality.MinDurationSeconds {
		return errors.New("quality.max_duration_seconds must be greater than quality.min_duration_seconds")
	}
	if c.Quality.MinViews < 0 {
		return errors.New("quality.min_views must be >= 0")
	}
	if c.Quality.MinTags < 0 {
		return errors.New("quality.min_tags must be >= 0")
	}
	return nil
}

func (c *Config) validateRateLimit() error {
	for name, pool := range c.RateLimit.Pools {
		if strings.TrimSpace(name) == "" {
			return errors.New("rate_limit.pools keys must be non-empty")
		}
		if pool.Permits <= 0 {
			return fmt.Errorf("rate_limit.pools.%s.permits must be positive", name)
		}
		if pool.IntervalSeconds <= 0 {
			return fmt.Errorf("rate_limit.pools.%s.interval_seconds must be positive", name)
		}
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.RunTimeoutSeconds <= 0 {
		return errors.New("workflow.run_timeout_seconds must be positive")
	}
	if c.Workflow.RetentionDays <= 0 {
		return errors.New("workflow.retention_days must be positive")
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout <= 0 {
		return errors.New("notifications.request_timeout must be positive")
	}
	return nil
}
