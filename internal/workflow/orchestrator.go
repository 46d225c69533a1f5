package workflow

import (
	"log/slog"
	"time"

	"clipflow/internal/analysis"
	"clipflow/internal/clipsource"
	"clipflow/internal/config"
	"clipflow/internal/download"
	"clipflow/internal/logging"
	"clipflow/internal/notifications"
	"clipflow/internal/quality"
	"clipflow/internal/ratelimit"
	"clipflow/internal/store"
)

// Orchestrator coordinates the clip pipeline for one or more channels.
type Orchestrator struct {
	cfg       *config.Config
	store     *store.Store
	source    clipsource.Source
	downloads *download.Stage
	analyzer  analysis.Analyzer
	gate      quality.Thresholds
	notifier  notifications.Service
	pools     *ratelimit.Registry
	logger    *slog.Logger

	sourcePool   *ratelimit.Pool
	analysisPool *ratelimit.Pool
}

// New wires an orchestrator from already constructed components. The source
// and analysis rate limit pools must have been declared on the registry.
func New(
	cfg *config.Config,
	st *store.Store,
	source clipsource.Source,
	downloads *download.Stage,
	analyzer analysis.Analyzer,
	notifier notifications.Service,
	pools *ratelimit.Registry,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:          cfg,
		store:        st,
		source:       source,
		downloads:    downloads,
		analyzer:     analyzer,
		gate:         quality.FromConfig(cfg.Quality),
		notifier:     notifier,
		pools:        pools,
		logger:       logging.NewComponentLogger(logger, "workflow"),
		sourcePool:   pools.Get(config.PoolSource),
		analysisPool: pools.Get(config.PoolAnalysis),
	}
}

func (o *Orchestrator) runTimeout() time.Duration {
	return time.Duration(o.cfg.Workflow.RunTimeoutSeconds) * time.Second
}

func (o *Orchestrator) launchStagger() time.Duration {
	return time.Duration(o.cfg.Workflow.LaunchStaggerSeconds) * time.Second
}
