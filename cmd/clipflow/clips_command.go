package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"clipflow/internal/config"
	"clipflow/internal/store"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string

	cmd := &cobra.Command{
		Use:   "clips",
		Short: "List downloaded clips and their analysis results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				statuses, err := parseStatusFilter(statusFlag)
				if err != nil {
					return err
				}
				clips, err := st.ClipsByStatus(cmd.Context(), statuses...)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(clips) == 0 {
					fmt.Fprintln(out, "no clips found")
					return nil
				}

				now := time.Now().UTC()
				rows := make([][]string, 0, len(clips))
				for _, clip := range clips {
					title := clip.GeneratedTitle
					if title == "" {
						title = clip.Title
					}
					detail := clip.QualityReason
					if clip.ProcessingStatus == store.StatusFailed {
						detail = clip.ErrorMessage
					}
					rows = append(rows, []string{
						clip.ClipID,
						truncate(title, 40),
						displayLabel(string(clip.ProcessingStatus)),
						formatScore(clip.ViralScore),
						formatViews(clip.ViewCount),
						formatAge(clip.DownloadedAt, now),
						truncate(detail, 40),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Clip", "Title", "Status", "Score", "Views", "Downloaded", "Detail"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&statusFlag, "status", "s", "", "Filter by status (pending, analyzing, ready, skipped, failed, retry)")
	return cmd
}

func parseStatusFilter(flag string) ([]store.ProcessingStatus, error) {
	flag = strings.TrimSpace(flag)
	if flag == "" {
		return []store.ProcessingStatus{
			store.StatusPending,
			store.StatusAnalyzing,
			store.StatusReady,
			store.StatusSkipped,
			store.StatusFailed,
			store.StatusRetry,
		}, nil
	}

	known := map[string]store.ProcessingStatus{
		"pending":   store.StatusPending,
		"analyzing": store.StatusAnalyzing,
		"ready":     store.StatusReady,
		"skipped":   store.StatusSkipped,
		"failed":    store.StatusFailed,
		"retry":     store.StatusRetry,
	}
	var statuses []store.ProcessingStatus
	for _, part := range strings.Split(flag, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		status, ok := known[part]
		if !ok {
			return nil, fmt.Errorf("unknown status %q", part)
		}
		statuses = append(statuses, status)
	}
	if len(statuses) == 0 {
		return nil, fmt.Errorf("no valid statuses in %q", flag)
	}
	return statuses, nil
}
