package testsupport

import (
	"path/filepath"
	"testing"

	"clipflow/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It fills fake credentials and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Source.AuthToken = "test-token"
	cfg.Source.ClientID = "test-client"
	cfg.Analysis.APIKey = "test-key"
	cfg.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Workflow.LaunchStaggerSeconds = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithEnrichment toggles the secondary analysis pass on the test config.
func WithEnrichment(enabled bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Analysis.EnrichmentEnabled = enabled
	}
}

// WithRetentionDays sets the cleanup retention window on the test config.
func WithRetentionDays(days int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Workflow.RetentionDays = days
	}
}

// WithPool overrides one rate limit pool on the test config.
func WithPool(name string, permits, intervalSeconds int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.RateLimit.Pools[name] = config.RateLimitPool{
			Permits:         permits,
			IntervalSeconds: intervalSeconds,
		}
	}
}
