package workflow

import (
	"context"

	"clipflow/internal/ratelimit"
	"clipflow/internal/services"
	"clipflow/internal/store"
)

// Report is a point-in-time view of the pipeline for status commands.
type Report struct {
	ClipCounts map[store.ProcessingStatus]int
	RecentRuns []*store.WorkflowRun
	Pools      []ratelimit.Status
}

const recentRunLimit = 10

// Status gathers clip counts, recent runs, and rate limit pool state.
func (o *Orchestrator) Status(ctx context.Context) (*Report, error) {
	counts, err := o.store.CountClipsByStatus(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "status", "count clips", "", err)
	}
	runs, err := o.store.ListRuns(ctx, store.RunFilter{Limit: recentRunLimit})
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "status", "list runs", "", err)
	}
	return &Report{
		ClipCounts: counts,
		RecentRuns: runs,
		Pools:      o.pools.Snapshot(),
	}, nil
}
