package workflow

import (
	"context"
	"sync"
	"time"

	"clipflow/internal/config"
	"clipflow/internal/logging"
	"clipflow/internal/store"
)

// RunChannels processes every watched channel concurrently. Launches are
// staggered by the configured interval so runs do not hit the clip source at
// the same instant. The returned slice is ordered like the input; entries are
// nil for channels whose run could not be created.
func (o *Orchestrator) RunChannels(ctx context.Context, channels []config.WatchChannel) []*store.WorkflowRun {
	runs := make([]*store.WorkflowRun, len(channels))
	if len(channels) == 0 {
		return runs
	}

	stagger := o.launchStagger()
	var wg sync.WaitGroup
	for i, channel := range channels {
		if i > 0 && stagger > 0 {
			timer := time.NewTimer(stagger)
			select {
			case <-ctx.Done():
				timer.Stop()
				o.logger.Warn("fan-out cancelled before all channels launched",
					logging.Int("launched", i),
					logging.Int("total", len(channels)))
				wg.Wait()
				return runs
			case <-timer.C:
			}
		}

		wg.Add(1)
		go func(idx int, ch config.WatchChannel) {
			defer wg.Done()
			run, err := o.RunChannel(ctx, ch.Login, ch.Limit)
			runs[idx] = run
			if err != nil {
				o.logger.Warn("channel run finished with error",
					logging.String("channel", ch.Login),
					logging.Error(err))
			}
		}(i, channel)
	}
	wg.Wait()
	return runs
}
