package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"clipflow/internal/config"
	"clipflow/internal/workflow"
)

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry",
		Short: "Re-analyze clips whose analysis failed",
		Long: "Runs the analysis stage again for every FAILED clip. Artifacts already " +
			"on disk are reused; nothing is re-downloaded.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withOrchestrator(func(cfg *config.Config, orch *workflow.Orchestrator) error {
				result, err := orch.RetryFailedClips(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result.Attempted == 0 {
					fmt.Fprintln(out, "No failed clips to retry")
					return nil
				}
				fmt.Fprintf(out, "Retried %d clips: %d processed, %d ready\n",
					result.Attempted, result.Processed, result.Ready)
				return nil
			})
		},
	}
}

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove clips older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withOrchestrator(func(cfg *config.Config, orch *workflow.Orchestrator) error {
				removed, err := orch.CleanupOldClips(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if cfg.Workflow.RetentionDays <= 0 {
					fmt.Fprintln(out, "Retention is disabled (retention_days <= 0)")
					return nil
				}
				fmt.Fprintf(out, "Removed %d clips older than %d days\n", removed, cfg.Workflow.RetentionDays)
				return nil
			})
		},
	}
}
