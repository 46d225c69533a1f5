package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"clipflow/internal/config"
	"clipflow/internal/store"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var channel string
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List workflow runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				runs, err := st.ListRuns(cmd.Context(), store.RunFilter{
					Channel: channel,
					Limit:   limit,
				})
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "no runs found")
					return nil
				}

				now := time.Now().UTC()
				rows := make([][]string, 0, len(runs))
				for _, run := range runs {
					rows = append(rows, []string{
						run.RunID[:8],
						run.Channel,
						displayLabel(string(run.Status)),
						displayLabel(run.Stage),
						fmt.Sprintf("%d", run.ClipsDiscovered),
						fmt.Sprintf("%d", run.ClipsDownloaded),
						fmt.Sprintf("%d/%d", run.ClipsReady, run.ClipsProcessed),
						run.Duration(now).Round(time.Second).String(),
						truncate(run.ErrorMessage, 40),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Run", "Channel", "Status", "Stage", "Found", "Downloaded", "Ready", "Duration", "Error"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&channel, "channel", "", "Only show runs for this channel")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	return cmd
}
