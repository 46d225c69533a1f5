package workflow

import (
	"context"
	"log/slog"
	"time"

	"clipflow/internal/analysis"
	"clipflow/internal/clip"
	"clipflow/internal/logging"
	"clipflow/internal/quality"
	"clipflow/internal/services"
	"clipflow/internal/store"
)

// RunChannel executes one full pipeline run for a channel login. The run
// record reflects the outcome even when an error is returned.
func (o *Orchestrator) RunChannel(ctx context.Context, login string, limit int) (*store.WorkflowRun, error) {
	run, err := o.store.CreateRun(ctx, login)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "run", "create run", login, err)
	}

	ctx = services.WithRunID(ctx, run.RunID)
	ctx = services.WithChannel(ctx, login)
	if timeout := o.runTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	logger := logging.WithContext(ctx, o.logger)
	logger.Info("run started", logging.Int("limit", limit))

	candidates, err := o.fetchCandidates(ctx, logger, run, login)
	if err != nil {
		return run, o.failRun(ctx, logger, run, err)
	}
	run.ClipsDiscovered = len(candidates)
	if len(candidates) == 0 {
		logger.Info("no clips in window, completing run")
		return run, o.completeRun(ctx, logger, run)
	}

	o.setStage(ctx, logger, run, store.StageDownloading)
	if limit <= 0 {
		limit = o.cfg.Download.Limit
	}
	downloaded, err := o.downloads.DownloadTop(ctx, candidates, limit)
	if err != nil {
		return run, o.failRun(ctx, logger, run, err)
	}
	run.ClipsDownloaded = len(downloaded)
	for _, record := range downloaded {
		o.notify(ctx, logger, func(ctx context.Context) error {
			return o.notifier.NotifyDownloadCompleted(ctx, record.Title, record.FilePath)
		})
	}

	o.setStage(ctx, logger, run, store.StageAnalyzing)
	for _, record := range downloaded {
		if ctx.Err() != nil {
			return run, o.failRun(ctx, logger, run, ctx.Err())
		}
		ready, err := o.analyzeClip(ctx, logger, record)
		if err != nil {
			if services.IsRunFatal(err) || ctx.Err() != nil {
				return run, o.failRun(ctx, logger, run, err)
			}
			logger.Warn("clip analysis failed",
				logging.String("clip", record.ClipID),
				logging.Error(err))
			if statusErr := o.store.SetClipStatus(ctx, record.ID, store.StatusFailed, services.Summary(err)); statusErr != nil {
				logger.Error("failed to record clip failure", logging.Error(statusErr))
			}
			o.notify(ctx, logger, func(ctx context.Context) error {
				return o.notifier.NotifyError(ctx, err, "clip "+record.ClipID)
			})
			continue
		}
		run.ClipsProcessed++
		if ready {
			run.ClipsReady++
		}
	}

	return run, o.completeRun(ctx, logger, run)
}

func (o *Orchestrator) fetchCandidates(ctx context.Context, logger *slog.Logger, run *store.WorkflowRun, login string) ([]clip.Clip, error) {
	o.setStage(ctx, logger, run, store.StageFetching)

	if err := o.sourcePool.Acquire(ctx); err != nil {
		return nil, err
	}
	channel, err := o.source.ResolveChannel(ctx, login)
	if err != nil {
		return nil, err
	}
	logger.Debug("channel resolved",
		logging.String("channel_id", channel.ID),
		logging.String("display_name", channel.DisplayName))

	if err := o.sourcePool.Acquire(ctx); err != nil {
		return nil, err
	}
	window := clip.RecentWindow(o.cfg.Source.WindowDays)
	candidates, err := o.source.FetchClips(ctx, channel.ID, window)
	if err != nil {
		return nil, err
	}
	logger.Info("clips discovered", logging.Int("count", len(candidates)))
	return candidates, nil
}

// analyzeClip runs the primary and optional enrichment analysis for one
// downloaded clip, applies the quality gate, and persists the outcome.
func (o *Orchestrator) analyzeClip(ctx context.Context, logger *slog.Logger, record *store.DownloadedClip) (bool, error) {
	clipCtx := services.WithClipID(ctx, record.ID)
	clipLogger := logging.WithContext(clipCtx, logger)

	if err := o.store.SetClipStatus(clipCtx, record.ID, store.StatusAnalyzing, ""); err != nil {
		return false, services.Wrap(services.ErrTransient, "analyze", "mark analyzing", record.ClipID, err)
	}

	req := analysis.Request{
		Title:       record.Title,
		Creator:     record.Creator,
		Broadcaster: record.Broadcaster,
		Game:        record.Game,
		Duration:    record.Duration,
	}

	if err := o.analysisPool.Acquire(clipCtx); err != nil {
		return false, err
	}
	primary, err := o.analyzer.Analyze(clipCtx, req)
	if err != nil {
		return false, err
	}

	result := primary
	if o.cfg.Analysis.EnrichmentEnabled {
		if err := o.analysisPool.Acquire(clipCtx); err != nil {
			return false, err
		}
		secondary, err := o.analyzer.AnalyzeEnriched(clipCtx, req, primary)
		if err != nil {
			// Enrichment is best effort. The primary result stands alone.
			clipLogger.Warn("enrichment failed, keeping primary result", logging.Error(err))
		} else {
			result = analysis.Merge(primary, secondary)
		}
	}
	result.ViralScore = analysis.ClampScore(result.ViralScore)
	if len(result.Hashtags) == 0 {
		result.Hashtags = analysis.HashtagsFromTags(result.Tags)
	}

	decision := o.gate.Evaluate(result, quality.ClipFacts{
		Duration:  record.Duration,
		ViewCount: record.ViewCount,
	})

	record.GeneratedTitle = result.Title
	record.GeneratedDescription = result.Description
	record.Tags = result.Tags
	record.Category = result.Category
	record.ViralScore = result.ViralScore
	record.Sentiment = result.Sentiment
	record.EstimatedViews = result.EstimatedViews
	record.BestUploadTime = result.BestUploadTime
	record.Hashtags = result.Hashtags
	record.QualityReason = decision.Reason
	record.ErrorMessage = ""
	record.Processed = true
	if decision.Pass {
		record.ProcessingStatus = store.StatusReady
	} else {
		record.ProcessingStatus = store.StatusSkipped
	}

	if err := o.store.UpdateClipAnalysis(clipCtx, record); err != nil {
		return false, services.Wrap(services.ErrTransient, "analyze", "persist analysis", record.ClipID, err)
	}

	o.notify(clipCtx, clipLogger, func(ctx context.Context) error {
		return o.notifier.NotifyAnalysisCompleted(ctx, record.Title, record.ViralScore)
	})
	if decision.Pass {
		clipLogger.Info("clip ready",
			logging.String("clip", record.ClipID),
			logging.Float64("score", record.ViralScore))
		o.notify(clipCtx, clipLogger, func(ctx context.Context) error {
			return o.notifier.NotifyClipReady(ctx, record.GeneratedTitle, record.ViralScore, record.Hashtags)
		})
	} else {
		clipLogger.Info("clip skipped by quality gate",
			logging.String("clip", record.ClipID),
			logging.String("reason", decision.Reason))
	}
	return decision.Pass, nil
}

func (o *Orchestrator) setStage(ctx context.Context, logger *slog.Logger, run *store.WorkflowRun, stage string) {
	run.Stage = stage
	if err := o.store.UpdateRun(ctx, run); err != nil {
		logger.Warn("failed to persist run stage",
			logging.String("stage", stage),
			logging.Error(err))
	}
}

func (o *Orchestrator) completeRun(ctx context.Context, logger *slog.Logger, run *store.WorkflowRun) error {
	now := time.Now().UTC()
	run.Status = store.RunCompleted
	run.CompletedAt = &now
	if err := o.store.UpdateRun(ctx, run); err != nil {
		return services.Wrap(services.ErrTransient, "run", "complete run", run.RunID, err)
	}
	logger.Info("run completed",
		logging.Int("discovered", run.ClipsDiscovered),
		logging.Int("downloaded", run.ClipsDownloaded),
		logging.Int("processed", run.ClipsProcessed),
		logging.Int("ready", run.ClipsReady))
	o.notify(ctx, logger, func(ctx context.Context) error {
		return o.notifier.NotifyRunCompleted(ctx, run.Channel, run.ClipsReady, run.ClipsProcessed, run.Duration(now))
	})
	return nil
}

func (o *Orchestrator) failRun(ctx context.Context, logger *slog.Logger, run *store.WorkflowRun, cause error) error {
	now := time.Now().UTC()
	run.Status = store.RunFailed
	run.ErrorMessage = services.Summary(cause)
	run.CompletedAt = &now
	if err := o.store.UpdateRun(ctx, run); err != nil {
		logger.Error("failed to persist run failure", logging.Error(err))
	}
	logger.Error("run failed", logging.Error(cause))
	o.notify(ctx, logger, func(ctx context.Context) error {
		return o.notifier.NotifyRunFailed(ctx, run.Channel, run.ErrorMessage)
	})
	return cause
}

// notify sends a best-effort notification on a context that survives run
// timeouts.
func (o *Orchestrator) notify(ctx context.Context, logger *slog.Logger, send func(context.Context) error) {
	if o.notifier == nil {
		return
	}
	notifyCtx := ctx
	if ctx.Err() != nil {
		var cancel context.CancelFunc
		notifyCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
	}
	if err := send(notifyCtx); err != nil {
		logger.Warn("notification failed", logging.Error(err))
	}
}
