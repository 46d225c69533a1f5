package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"clipflow/internal/analysis"
	"clipflow/internal/clipsource"
	"clipflow/internal/config"
	"clipflow/internal/download"
	"clipflow/internal/logging"
	"clipflow/internal/notifications"
	"clipflow/internal/ratelimit"
	"clipflow/internal/store"
	"clipflow/internal/workflow"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) buildLogger(cfg *config.Config) (*slog.Logger, error) {
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: []string{"stderr", filepath.Join(cfg.Paths.LogDir, "clipflow.log")},
	})
}

// withStore opens the database for the duration of fn.
func (c *commandContext) withStore(fn func(cfg *config.Config, st *store.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	return fn(cfg, st)
}

// withOrchestrator wires the full pipeline for the duration of fn.
func (c *commandContext) withOrchestrator(fn func(cfg *config.Config, orch *workflow.Orchestrator) error) error {
	return c.withStore(func(cfg *config.Config, st *store.Store) error {
		logger, err := c.buildLogger(cfg)
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}

		registry, err := ratelimit.FromConfig(cfg, logger)
		if err != nil {
			return err
		}

		source := clipsource.NewHTTP(cfg.Source, logger)
		fetcher := download.NewCommandFetcher(cfg.Download, logger)
		stage := download.NewStage(st, fetcher, cfg.Paths.DownloadDir, logger)
		analyzer := analysis.NewClient(cfg.Analysis, logger)
		notifier := notifications.NewService(cfg)

		orch := workflow.New(cfg, st, source, stage, analyzer, notifier, registry, logger)
		return fn(cfg, orch)
	})
}
