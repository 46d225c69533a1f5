package workflow_test

import (
	"context"
	"testing"

	"clipflow/internal/clipsource"
	"clipflow/internal/config"
	"clipflow/internal/store"
	"clipflow/internal/testsupport"
)

func TestRunChannelsProcessesEveryChannel(t *testing.T) {
	h := newHarness(t, testsupport.WithEnrichment(false), testsupport.WithPool(config.PoolAnalysis, 1, 1))
	h.source.mu.Lock()
	h.source.channels["second"] = &clipsource.Channel{ID: "chan-2", Login: "second", DisplayName: "Second"}
	h.source.mu.Unlock()
	h.seedClips("chan-1", 1)
	h.seedClips("chan-2", 1)

	runs := h.orch.RunChannels(context.Background(), []config.WatchChannel{
		{Login: "streamer", Limit: 1},
		{Login: "second", Limit: 1},
	})
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	for i, run := range runs {
		if run == nil {
			t.Fatalf("run %d missing", i)
		}
		if run.Status != store.RunCompleted {
			t.Fatalf("run %d status %s (error %q)", i, run.Status, run.ErrorMessage)
		}
		if run.ClipsReady != 1 {
			t.Fatalf("run %d counts: %+v", i, run)
		}
	}

	h.analyzer.mu.Lock()
	maxInFlight := h.analyzer.maxInFlight
	h.analyzer.mu.Unlock()
	if maxInFlight > 1 {
		t.Fatalf("size-1 pool allowed %d concurrent analysis calls", maxInFlight)
	}
}

func TestRunChannelsIsolatesFailingChannel(t *testing.T) {
	h := newHarness(t)
	h.seedClips("chan-1", 1)

	runs := h.orch.RunChannels(context.Background(), []config.WatchChannel{
		{Login: "ghost", Limit: 1},
		{Login: "streamer", Limit: 1},
	})
	if runs[0] == nil || runs[0].Status != store.RunFailed {
		t.Fatalf("expected failed run for unknown channel, got %+v", runs[0])
	}
	if runs[1] == nil || runs[1].Status != store.RunCompleted {
		t.Fatalf("expected completed run for known channel, got %+v", runs[1])
	}
}

func TestRunChannelsEmptyWatchlist(t *testing.T) {
	h := newHarness(t)
	runs := h.orch.RunChannels(context.Background(), nil)
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}
}
