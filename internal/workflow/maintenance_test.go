package workflow_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"clipflow/internal/services"
	"clipflow/internal/store"
	"clipflow/internal/testsupport"
)

func seedFailedClip(t *testing.T, h *harness, clipID, title string) *store.DownloadedClip {
	t.Helper()

	if err := os.MkdirAll(h.cfg.Paths.DownloadDir, 0o755); err != nil {
		t.Fatalf("mkdir downloads: %v", err)
	}
	artifact := filepath.Join(h.cfg.Paths.DownloadDir, clipID+".mp4")
	if err := os.WriteFile(artifact, []byte("video-data"), 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	views := 400
	record := testsupport.InsertClip(t, h.store, &store.DownloadedClip{
		ClipID:    clipID,
		URL:       "https://clips.example/" + clipID,
		Title:     title,
		Creator:   "clipper",
		ViewCount: &views,
		Duration:  30,
		FilePath:  artifact,
		FileSize:  10,
	})
	if err := h.store.SetClipStatus(context.Background(), record.ID, store.StatusFailed, "analysis failed"); err != nil {
		t.Fatalf("SetClipStatus: %v", err)
	}
	record.ProcessingStatus = store.StatusFailed
	return record
}

func TestRetryFailedClipsReanalyzes(t *testing.T) {
	h := newHarness(t)
	seedFailedClip(t, h, "retry-1", "Comeback round")
	seedFailedClip(t, h, "retry-2", "Base race")
	h.analyzer.failFor["Base race"] = services.Wrap(services.ErrTransient, "analyze", "primary analysis", "provider down", nil)

	result, err := h.orch.RetryFailedClips(context.Background())
	if err != nil {
		t.Fatalf("RetryFailedClips: %v", err)
	}
	if result.Attempted != 2 || result.Processed != 1 || result.Ready != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}

	ready, err := h.store.ClipsByStatus(context.Background(), store.StatusReady)
	if err != nil {
		t.Fatalf("ClipsByStatus: %v", err)
	}
	if len(ready) != 1 || ready[0].ClipID != "retry-1" {
		t.Fatalf("unexpected ready clips: %+v", ready)
	}

	failed, err := h.store.ClipsByStatus(context.Background(), store.StatusFailed)
	if err != nil {
		t.Fatalf("ClipsByStatus: %v", err)
	}
	if len(failed) != 1 || failed[0].ClipID != "retry-2" {
		t.Fatalf("unexpected failed clips: %+v", failed)
	}
	if got := h.notifier.count("error"); got != 1 {
		t.Fatalf("expected 1 error notification for the clip that failed again, got %d", got)
	}
}

func TestRetryFailedClipsDoesNotRedownload(t *testing.T) {
	h := newHarness(t)
	record := seedFailedClip(t, h, "retry-3", "Pixel perfect")

	if _, err := h.orch.RetryFailedClips(context.Background()); err != nil {
		t.Fatalf("RetryFailedClips: %v", err)
	}

	after, err := h.store.GetClip(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetClip: %v", err)
	}
	if after.FilePath != record.FilePath {
		t.Fatalf("artifact path changed: %q -> %q", record.FilePath, after.FilePath)
	}
	if after.ProcessingStatus != store.StatusReady {
		t.Fatalf("unexpected status %s", after.ProcessingStatus)
	}
}

func TestRetryFailedClipsNothingToDo(t *testing.T) {
	h := newHarness(t)
	result, err := h.orch.RetryFailedClips(context.Background())
	if err != nil {
		t.Fatalf("RetryFailedClips: %v", err)
	}
	if result.Attempted != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCleanupOldClipsRemovesRowsAndArtifacts(t *testing.T) {
	h := newHarness(t, testsupport.WithRetentionDays(7))
	old := seedFailedClip(t, h, "old-1", "Ancient play")
	fresh := seedFailedClip(t, h, "fresh-1", "Recent play")
	testsupport.BackdateClip(t, h.cfg, "old-1", time.Now().UTC().AddDate(0, 0, -10))

	removed, err := h.orch.CleanupOldClips(context.Background())
	if err != nil {
		t.Fatalf("CleanupOldClips: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed clip, got %d", removed)
	}

	if _, err := os.Stat(old.FilePath); !os.IsNotExist(err) {
		t.Fatalf("expected old artifact removed, stat err %v", err)
	}
	if _, err := os.Stat(fresh.FilePath); err != nil {
		t.Fatalf("fresh artifact should remain: %v", err)
	}

	remaining, err := h.store.GetClipByClipID(context.Background(), "old-1")
	if err != nil {
		t.Fatalf("GetClipByClipID: %v", err)
	}
	if remaining != nil {
		t.Fatalf("expected old row removed, got %+v", remaining)
	}
}

func TestCleanupDisabledWithoutRetention(t *testing.T) {
	h := newHarness(t, testsupport.WithRetentionDays(0))
	seedFailedClip(t, h, "keep-1", "Keeper")
	testsupport.BackdateClip(t, h.cfg, "keep-1", time.Now().UTC().AddDate(0, 0, -100))

	removed, err := h.orch.CleanupOldClips(context.Background())
	if err != nil {
		t.Fatalf("CleanupOldClips: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected cleanup skipped, got %d", removed)
	}
}

func TestStatusReport(t *testing.T) {
	h := newHarness(t)
	h.seedClips("chan-1", 2)
	if _, err := h.orch.RunChannel(context.Background(), "streamer", 2); err != nil {
		t.Fatalf("RunChannel: %v", err)
	}

	report, err := h.orch.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if report.ClipCounts[store.StatusReady] != 2 {
		t.Fatalf("unexpected clip counts: %+v", report.ClipCounts)
	}
	if len(report.RecentRuns) != 1 || report.RecentRuns[0].Status != store.RunCompleted {
		t.Fatalf("unexpected runs: %+v", report.RecentRuns)
	}
	if len(report.Pools) == 0 {
		t.Fatal("expected pool status in report")
	}
}
