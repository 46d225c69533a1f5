package workflow

import (
	"context"

	"clipflow/internal/logging"
	"clipflow/internal/services"
	"clipflow/internal/store"
)

// RetryResult summarizes a retry sweep over failed clips.
type RetryResult struct {
	Attempted int
	Processed int
	Ready     int
}

// RetryFailedClips re-analyzes clips whose earlier analysis failed. Artifacts
// are already on disk, so no clips are re-downloaded. Clips that fail again
// stay FAILED with the new error message.
func (o *Orchestrator) RetryFailedClips(ctx context.Context) (RetryResult, error) {
	var result RetryResult

	failed, err := o.store.ClipsByStatus(ctx, store.StatusFailed, store.StatusRetry)
	if err != nil {
		return result, services.Wrap(services.ErrTransient, "retry", "list failed clips", "", err)
	}
	if len(failed) == 0 {
		o.logger.Info("no failed clips to retry")
		return result, nil
	}

	logger := logging.WithContext(ctx, o.logger)
	logger.Info("retrying failed clips", logging.Int("count", len(failed)))

	for _, record := range failed {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Attempted++
		if err := o.store.SetClipStatus(ctx, record.ID, store.StatusRetry, ""); err != nil {
			return result, services.Wrap(services.ErrTransient, "retry", "mark retry", record.ClipID, err)
		}

		ready, err := o.analyzeClip(ctx, logger, record)
		if err != nil {
			if services.IsRunFatal(err) || ctx.Err() != nil {
				return result, err
			}
			logger.Warn("retry failed",
				logging.String("clip", record.ClipID),
				logging.Error(err))
			if statusErr := o.store.SetClipStatus(ctx, record.ID, store.StatusFailed, services.Summary(err)); statusErr != nil {
				logger.Error("failed to record retry failure", logging.Error(statusErr))
			}
			o.notify(ctx, logger, func(ctx context.Context) error {
				return o.notifier.NotifyError(ctx, err, "clip "+record.ClipID)
			})
			continue
		}
		result.Processed++
		if ready {
			result.Ready++
		}
	}

	logger.Info("retry sweep finished",
		logging.Int("attempted", result.Attempted),
		logging.Int("processed", result.Processed),
		logging.Int("ready", result.Ready))
	return result, nil
}
