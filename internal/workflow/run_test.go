package workflow_test

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"clipflow/internal/services"
	"clipflow/internal/store"
	"clipflow/internal/testsupport"
)

func TestRunChannelCompletes(t *testing.T) {
	h := newHarness(t)
	h.seedClips("chan-1", 3)

	run, err := h.orch.RunChannel(context.Background(), "streamer", 3)
	if err != nil {
		t.Fatalf("RunChannel: %v", err)
	}
	if run.Status != store.RunCompleted {
		t.Fatalf("unexpected run status %s (error %q)", run.Status, run.ErrorMessage)
	}
	if run.ClipsDiscovered != 3 || run.ClipsDownloaded != 3 || run.ClipsProcessed != 3 || run.ClipsReady != 3 {
		t.Fatalf("unexpected counts: %+v", run)
	}
	if run.CompletedAt == nil {
		t.Fatal("expected completion timestamp")
	}

	ready, err := h.store.ClipsByStatus(context.Background(), store.StatusReady)
	if err != nil {
		t.Fatalf("ClipsByStatus: %v", err)
	}
	if len(ready) != 3 {
		t.Fatalf("expected 3 ready clips, got %d", len(ready))
	}
	for _, clip := range ready {
		if clip.GeneratedTitle == "" || len(clip.Hashtags) == 0 {
			t.Fatalf("clip %s missing analysis fields: %+v", clip.ClipID, clip)
		}
		if clip.BestUploadTime != "18:00" {
			t.Fatalf("expected enrichment merge for %s, got %q", clip.ClipID, clip.BestUploadTime)
		}
		if _, err := os.Stat(clip.FilePath); err != nil {
			t.Fatalf("artifact missing for %s: %v", clip.ClipID, err)
		}
	}

	if got := h.notifier.count("download.completed"); got != 3 {
		t.Fatalf("expected 3 download.completed notifications, got %d", got)
	}
	if got := h.notifier.count("clip.ready"); got != 3 {
		t.Fatalf("expected 3 clip.ready notifications, got %d", got)
	}
	if got := h.notifier.count("run.completed"); got != 1 {
		t.Fatalf("expected 1 run.completed notification, got %d", got)
	}
}

func TestRunChannelUnknownChannelFailsRun(t *testing.T) {
	h := newHarness(t)

	run, err := h.orch.RunChannel(context.Background(), "nobody", 3)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
	if run.Status != store.RunFailed {
		t.Fatalf("unexpected run status %s", run.Status)
	}
	if !strings.Contains(run.ErrorMessage, "resolve channel") {
		t.Fatalf("unexpected error message %q", run.ErrorMessage)
	}
	if got := h.notifier.count("run.failed"); got != 1 {
		t.Fatalf("expected run.failed notification, got %d", got)
	}
}

func TestRunChannelEmptyWindowCompletes(t *testing.T) {
	h := newHarness(t)

	run, err := h.orch.RunChannel(context.Background(), "streamer", 3)
	if err != nil {
		t.Fatalf("RunChannel: %v", err)
	}
	if run.Status != store.RunCompleted {
		t.Fatalf("unexpected run status %s", run.Status)
	}
	if run.ClipsDiscovered != 0 || run.ClipsDownloaded != 0 || run.ClipsProcessed != 0 {
		t.Fatalf("expected zero counts, got %+v", run)
	}
	if h.analyzer.analyzeCalls != 0 {
		t.Fatalf("expected no analysis calls, got %d", h.analyzer.analyzeCalls)
	}
}

func TestRunChannelIsolatesClipFailures(t *testing.T) {
	h := newHarness(t)
	h.seedClips("chan-1", 3)
	h.analyzer.failFor["Highlight 2"] = services.Wrap(services.ErrTransient, "analyze", "primary analysis", "provider down", nil)

	run, err := h.orch.RunChannel(context.Background(), "streamer", 3)
	if err != nil {
		t.Fatalf("RunChannel: %v", err)
	}
	if run.Status != store.RunCompleted {
		t.Fatalf("expected completed run despite clip failure, got %s", run.Status)
	}
	if run.ClipsProcessed != 2 || run.ClipsReady != 2 {
		t.Fatalf("unexpected counts: %+v", run)
	}

	failed, err := h.store.ClipsByStatus(context.Background(), store.StatusFailed)
	if err != nil {
		t.Fatalf("ClipsByStatus: %v", err)
	}
	if len(failed) != 1 {
		t.Fatalf("expected 1 failed clip, got %d", len(failed))
	}
	if !strings.Contains(failed[0].ErrorMessage, "primary analysis") {
		t.Fatalf("unexpected failure message %q", failed[0].ErrorMessage)
	}
	if got := h.notifier.count("error"); got != 1 {
		t.Fatalf("expected 1 error notification for the failed clip, got %d", got)
	}
}

func TestRunChannelAbortsOnConfigurationError(t *testing.T) {
	h := newHarness(t)
	h.seedClips("chan-1", 2)
	h.analyzer.failFor["Highlight 1"] = services.Wrap(services.ErrConfiguration, "analyze", "primary analysis", "api key missing", nil)

	run, err := h.orch.RunChannel(context.Background(), "streamer", 2)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if run.Status != store.RunFailed {
		t.Fatalf("unexpected run status %s", run.Status)
	}
}

func TestRunChannelSkipsClipsBelowQualityBar(t *testing.T) {
	h := newHarness(t)
	h.seedClips("chan-1", 2)
	h.analyzer.scoreFor["Highlight 2"] = 3.0

	run, err := h.orch.RunChannel(context.Background(), "streamer", 2)
	if err != nil {
		t.Fatalf("RunChannel: %v", err)
	}
	if run.ClipsProcessed != 2 || run.ClipsReady != 1 {
		t.Fatalf("unexpected counts: %+v", run)
	}

	skipped, err := h.store.ClipsByStatus(context.Background(), store.StatusSkipped)
	if err != nil {
		t.Fatalf("ClipsByStatus: %v", err)
	}
	if len(skipped) != 1 {
		t.Fatalf("expected 1 skipped clip, got %d", len(skipped))
	}
	if !strings.Contains(skipped[0].QualityReason, "viral score") {
		t.Fatalf("unexpected quality reason %q", skipped[0].QualityReason)
	}
	if !skipped[0].Processed {
		t.Fatal("skipped clip must be marked processed")
	}
}

func TestRunChannelEnrichmentFailureKeepsPrimary(t *testing.T) {
	h := newHarness(t)
	h.seedClips("chan-1", 1)
	h.analyzer.enrichErr = services.Wrap(services.ErrTransient, "analyze", "enrichment", "provider down", nil)

	run, err := h.orch.RunChannel(context.Background(), "streamer", 1)
	if err != nil {
		t.Fatalf("RunChannel: %v", err)
	}
	if run.ClipsReady != 1 {
		t.Fatalf("expected primary-only clip to be ready, got %+v", run)
	}

	ready, err := h.store.ClipsByStatus(context.Background(), store.StatusReady)
	if err != nil {
		t.Fatalf("ClipsByStatus: %v", err)
	}
	if len(ready) != 1 || ready[0].BestUploadTime != "" {
		t.Fatalf("expected primary result without enrichment, got %+v", ready[0])
	}
}

func TestRunChannelWithoutEnrichmentSkipsSecondCall(t *testing.T) {
	h := newHarness(t, testsupport.WithEnrichment(false))
	h.seedClips("chan-1", 2)

	if _, err := h.orch.RunChannel(context.Background(), "streamer", 2); err != nil {
		t.Fatalf("RunChannel: %v", err)
	}
	if h.analyzer.enrichCalls != 0 {
		t.Fatalf("expected no enrichment calls, got %d", h.analyzer.enrichCalls)
	}
}

func TestRunChannelSkipsAlreadyDownloadedClips(t *testing.T) {
	h := newHarness(t)
	h.seedClips("chan-1", 2)

	if _, err := h.orch.RunChannel(context.Background(), "streamer", 2); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := h.orch.RunChannel(context.Background(), "streamer", 2)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.ClipsDownloaded != 0 || second.ClipsProcessed != 0 {
		t.Fatalf("expected second run to skip known clips, got %+v", second)
	}
	if second.Status != store.RunCompleted {
		t.Fatalf("unexpected run status %s", second.Status)
	}
	if got := h.notifier.count("download.completed"); got != 2 {
		t.Fatalf("expected download notifications only from the first run, got %d", got)
	}
}

func TestRunChannelCancelledContextLeavesNoRunInProgress(t *testing.T) {
	h := newHarness(t)
	h.seedClips("chan-1", 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	run, err := h.orch.RunChannel(ctx, "streamer", 1)
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if run != nil && run.Status == store.RunInProgress {
		t.Fatalf("run left in progress: %+v", run)
	}

	stale, err := h.store.ListRuns(context.Background(), store.RunFilter{Status: store.RunInProgress})
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(stale) != 0 {
		t.Fatalf("expected no in-progress runs, got %d", len(stale))
	}
}
