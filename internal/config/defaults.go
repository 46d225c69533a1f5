package config

const (
	defaultDownloadDir   = "~/.local/share/clipflow/downloads"
	defaultDataDir       = "~/.local/share/clipflow"
	defaultLogDir        = "~/.local/share/clipflow/logs"
	defaultWatchlistPath = "~/.config/clipflow/watchlist.yaml"

	defaultSourceBaseURL        = "https://api.twitch.tv/helix"
	defaultSourceRequestTimeout = 15
	defaultSourceWindowDays     = 7

	defaultYtDlpPath       = "yt-dlp"
	defaultDownloadTimeout = 300
	defaultDownloadLimit   = 10

	defaultAnalysisBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultAnalysisModel          = "google/gemini-3-flash-preview"
	defaultAnalysisTimeoutSeconds = 60

	defaultMinViralScore      = 5.0
	defaultMinDurationSeconds = 10.0
	defaultMaxDurationSeconds = 90.0
	defaultMinViews           = 100
	defaultMinTags            = 3

	defaultSourcePermits          = 30
	defaultSourceIntervalSeconds  = 60
	defaultAnalysisPermits        = 10
	defaultAnalysisIntervalSecond = 60

	defaultLaunchStaggerSeconds = 2
	defaultRunTimeoutSeconds    = 1800
	defaultRetentionDays        = 30

	defaultNotifyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// PoolSource and PoolAnalysis name the permit pools the pipeline declares.
const (
	PoolSource   = "source"
	PoolAnalysis = "analysis"
)

func defaultBlockedTerms() []string {
	return []string{"hack", "cheat", "exploit", "bug abuse", "toxic", "rage quit"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DownloadDir:   defaultDownloadDir,
			DataDir:       defaultDataDir,
			LogDir:        defaultLogDir,
			WatchlistPath: defaultWatchlistPath,
		},
		Source: Source{
			BaseURL:        defaultSourceBaseURL,
			RequestTimeout: defaultSourceRequestTimeout,
			WindowDays:     defaultSourceWindowDays,
		},
		Download: Download{
			YtDlpPath: defaultYtDlpPath,
			Timeout:   defaultDownloadTimeout,
			Limit:     defaultDownloadLimit,
		},
		Analysis: Analysis{
			BaseURL:           defaultAnalysisBaseURL,
			Model:             defaultAnalysisModel,
			TimeoutSeconds:    defaultAnalysisTimeoutSeconds,
			EnrichmentEnabled: true,
		},
		Quality: Quality{
			MinViralScore:      defaultMinViralScore,
			MinDurationSeconds: defaultMinDurationSeconds,
			MaxDurationSeconds: defaultMaxDurationSeconds,
			MinViews:           defaultMinViews,
			MinTags:            defaultMinTags,
			BlockedTerms:       defaultBlockedTerms(),
		},
		RateLimit: RateLimit{
			Pools: map[string]RateLimitPool{
				PoolSource:   {Permits: defaultSourcePermits, IntervalSeconds: defaultSourceIntervalSeconds},
				PoolAnalysis: {Permits: defaultAnalysisPermits, IntervalSeconds: defaultAnalysisIntervalSecond},
			},
		},
		Workflow: Workflow{
			LaunchStaggerSeconds: defaultLaunchStaggerSeconds,
			RunTimeoutSeconds:    defaultRunTimeoutSeconds,
			RetentionDays:        defaultRetentionDays,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Downloads:      true,
			Analysis:       true,
			ClipReady:      true,
			Runs:           true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
