package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DownloadDir   string `toml:"download_dir"`
	DataDir       string `toml:"data_dir"`
	LogDir        string `toml:"log_dir"`
	WatchlistPath string `toml:"watchlist_path"`
}

// Source contains configuration for the clip discovery API.
type Source struct {
	BaseURL        string `toml:"base_url"`
	ClientID       string `toml:"client_id"`
	AuthToken      string `toml:"auth_token"`
	RequestTimeout int    `toml:"request_timeout"`
	WindowDays     int    `toml:"window_days"`
}

// Download contains configuration for the yt-dlp download stage.
type Download struct {
	YtDlpPath string `toml:"yt_dlp_path"`
	Timeout   int    `toml:"timeout"`
	Limit     int    `toml:"limit"`
}

// Analysis contains LLM connection settings for clip analysis.
type Analysis struct {
	APIKey            string `toml:"api_key"`
	BaseURL           string `toml:"base_url"`
	Model             string `toml:"model"`
	EnrichmentModel   string `toml:"enrichment_model"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	EnrichmentEnabled bool   `toml:"enrichment_enabled"`
}

// Quality contains the thresholds a clip must clear before publication.
type Quality struct {
	MinViralScore      float64  `toml:"min_viral_score"`
	MinDurationSeconds float64  `toml:"min_duration_seconds"`
	MaxDurationSeconds float64  `toml:"max_duration_seconds"`
	MinViews           int      `toml:"min_views"`
	MinTags            int      `toml:"min_tags"`
	BlockedTerms       []string `toml:"blocked_terms"`
}

// RateLimitPool declares one named permit pool.
type RateLimitPool struct {
	Permits         int `toml:"permits"`
	IntervalSeconds int `toml:"interval_seconds"`
}

// RateLimit contains the declared permit pools keyed by API name.
type RateLimit struct {
	Pools map[string]RateLimitPool `toml:"pools"`
}

// Workflow contains run orchestration timing.
type Workflow struct {
	LaunchStaggerSeconds int `toml:"launch_stagger_seconds"`
	RunTimeoutSeconds    int `toml:"run_timeout_seconds"`
	RetentionDays        int `toml:"retention_days"`
}

// Notifications contains configuration for webhook push notifications.
type Notifications struct {
	WebhookURL     string `toml:"webhook_url"`
	RequestTimeout int    `toml:"request_timeout"`
	Downloads      bool   `toml:"downloads"`
	Analysis       bool   `toml:"analysis"`
	ClipReady      bool   `toml:"clip_ready"`
	Runs           bool   `toml:"runs"`
	Errors         bool   `toml:"errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for the clip pipeline.
//
// Configuration sections by subsystem:
//   - Paths: download, data, and log directories plus the watchlist file
//   - Source: clip discovery API connection
//   - Download: yt-dlp invocation settings
//   - Analysis: LLM connection settings for clip analysis
//   - Quality: publication thresholds
//   - RateLimit: declared permit pools per external API
//   - Workflow: multi-channel staggering, run timeout, retention
//   - Notifications: webhook settings and per-event toggles
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	Source        Source        `toml:"source"`
	Download      Download      `toml:"download"`
	Analysis      Analysis      `toml:"analysis"`
	Quality       Quality       `toml:"quality"`
	RateLimit     RateLimit     `toml:"rate_limit"`
	Workflow      Workflow      `toml:"workflow"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/clipflow/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("clipflow.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// DatabasePath returns the sqlite database location inside the data directory.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Paths.DataDir, "clipflow.db")
}

// EnsureDirectories creates the directories required for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DownloadDir, c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
