package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clipflow/internal/config"
	"clipflow/internal/store"
	"clipflow/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline state, recent runs, and rate limit pools",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withOrchestrator(func(cfg *config.Config, orch *workflow.Orchestrator) error {
				report, err := orch.Status(cmd.Context())
				if err != nil {
					return err
				}
				renderStatusReport(cmd, report)
				return nil
			})
		},
	}
}

func renderStatusReport(cmd *cobra.Command, report *workflow.Report) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	now := time.Now().UTC()

	for _, line := range renderSectionHeader("Clips", colorize) {
		fmt.Fprintln(out, line)
	}
	statusOrder := []store.ProcessingStatus{
		store.StatusReady,
		store.StatusPending,
		store.StatusAnalyzing,
		store.StatusRetry,
		store.StatusSkipped,
		store.StatusFailed,
	}
	total := 0
	for _, status := range statusOrder {
		count := report.ClipCounts[status]
		total += count
		fmt.Fprintln(out, renderStatusLine(
			displayLabel(string(status)),
			clipStatusKind(status, count),
			fmt.Sprintf("%d", count),
			colorize,
		))
	}
	fmt.Fprintln(out, renderStatusLine("Total", statusInfo, fmt.Sprintf("%d", total), colorize))
	fmt.Fprintln(out)

	for _, line := range renderSectionHeader("Recent Runs", colorize) {
		fmt.Fprintln(out, line)
	}
	if len(report.RecentRuns) == 0 {
		fmt.Fprintln(out, statusIndent+"no runs recorded")
	} else {
		rows := make([][]string, 0, len(report.RecentRuns))
		for _, run := range report.RecentRuns {
			rows = append(rows, []string{
				run.Channel,
				displayLabel(string(run.Status)),
				displayLabel(run.Stage),
				fmt.Sprintf("%d/%d", run.ClipsReady, run.ClipsProcessed),
				formatAge(run.StartedAt, now),
			})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Channel", "Status", "Stage", "Ready", "Started"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight},
		))
	}
	fmt.Fprintln(out)

	for _, line := range renderSectionHeader("Rate Limit Pools", colorize) {
		fmt.Fprintln(out, line)
	}
	rows := make([][]string, 0, len(report.Pools))
	for _, pool := range report.Pools {
		rows = append(rows, []string{
			pool.Name,
			fmt.Sprintf("%d/%d", pool.Available, pool.Max),
			pool.Interval.String(),
			fmt.Sprintf("%d", pool.Granted),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Pool", "Available", "Interval", "Granted"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
	))
}

func clipStatusKind(status store.ProcessingStatus, count int) statusKind {
	if count == 0 {
		return statusInfo
	}
	switch status {
	case store.StatusReady:
		return statusOK
	case store.StatusFailed:
		return statusError
	case store.StatusSkipped, store.StatusRetry:
		return statusWarn
	default:
		return statusInfo
	}
}
