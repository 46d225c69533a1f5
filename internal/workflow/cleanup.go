package workflow

import (
	"context"
	"os"
	"time"

	"clipflow/internal/logging"
	"clipflow/internal/services"
)

// CleanupOldClips removes clip rows and artifacts downloaded before the
// retention window. A non-positive retention disables cleanup.
func (o *Orchestrator) CleanupOldClips(ctx context.Context) (int, error) {
	days := o.cfg.Workflow.RetentionDays
	if days <= 0 {
		o.logger.Debug("retention disabled, skipping cleanup")
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -days)
	expired, err := o.store.DeleteClipsOlderThan(ctx, cutoff)
	if err != nil {
		return 0, services.Wrap(services.ErrTransient, "cleanup", "delete expired clips", "", err)
	}

	for _, record := range expired {
		if record.FilePath == "" {
			continue
		}
		if err := os.Remove(record.FilePath); err != nil && !os.IsNotExist(err) {
			o.logger.Warn("failed to remove expired artifact",
				logging.String("file", record.FilePath),
				logging.Error(err))
		}
	}

	if len(expired) > 0 {
		o.logger.Info("retention cleanup finished",
			logging.Int("removed", len(expired)),
			logging.String("cutoff", cutoff.Format(time.RFC3339)))
	}
	return len(expired), nil
}
