package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"clipflow/internal/config"
	"clipflow/internal/store"
	"clipflow/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "run [channel ...]",
		Short: "Process watched channels through the clip pipeline",
		Long: "Discovers recent clips for each channel, downloads the best candidates, " +
			"analyzes them, and marks publishable clips READY. Channels default to the " +
			"configured watchlist when none are given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withOrchestrator(func(cfg *config.Config, orch *workflow.Orchestrator) error {
				channels, err := resolveChannels(cfg, args, limit)
				if err != nil {
					return err
				}

				lockPath := filepath.Join(cfg.Paths.DataDir, "clipflow.lock")
				lock := flock.New(lockPath)
				locked, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire run lock: %w", err)
				}
				if !locked {
					return errors.New("another clipflow run is already in progress")
				}
				defer func() {
					_ = lock.Unlock()
				}()

				runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				runs := orch.RunChannels(runCtx, channels)
				return renderRunSummary(cmd, channels, runs)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Clips to download per channel (0 uses the configured limit)")
	return cmd
}

func resolveChannels(cfg *config.Config, args []string, limit int) ([]config.WatchChannel, error) {
	if len(args) > 0 {
		channels := make([]config.WatchChannel, 0, len(args))
		for _, login := range args {
			channels = append(channels, config.WatchChannel{Login: login, Limit: limit})
		}
		return channels, nil
	}

	channels, err := config.LoadWatchlist(cfg.Paths.WatchlistPath)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	if limit > 0 {
		for i := range channels {
			channels[i].Limit = limit
		}
	}
	return channels, nil
}

func renderRunSummary(cmd *cobra.Command, channels []config.WatchChannel, runs []*store.WorkflowRun) error {
	out := cmd.OutOrStdout()

	rows := make([][]string, 0, len(runs))
	failures := 0
	for i, run := range runs {
		channel := channels[i].Login
		if run == nil {
			failures++
			rows = append(rows, []string{channel, "-", "-", "-", "-", "run not created"})
			continue
		}
		if run.Status == store.RunFailed {
			failures++
		}
		rows = append(rows, []string{
			channel,
			string(run.Status),
			fmt.Sprintf("%d", run.ClipsDiscovered),
			fmt.Sprintf("%d", run.ClipsDownloaded),
			fmt.Sprintf("%d", run.ClipsReady),
			run.ErrorMessage,
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"Channel", "Status", "Found", "Downloaded", "Ready", "Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
	))

	if failures > 0 {
		return fmt.Errorf("%d of %d channel runs failed", failures, len(runs))
	}
	return nil
}
