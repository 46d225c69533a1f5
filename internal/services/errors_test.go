package services_test

import (
	"errors"
	"testing"

	"clipflow/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("exit status 1")
	err := services.Wrap(services.ErrExternalTool, "download", "yt-dlp", "fetch failed", base)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "analyze", "", "provider unavailable", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestIsRunFatal(t *testing.T) {
	cases := []struct {
		err   error
		fatal bool
	}{
		{services.Wrap(services.ErrPrecondition, "fetch", "resolve channel", "channel not found", nil), true},
		{services.Wrap(services.ErrConfiguration, "download", "", "download dir unwritable", nil), true},
		{services.Wrap(services.ErrTransient, "analyze", "", "timeout", nil), false},
		{services.Wrap(services.ErrRateLimited, "fetch", "", "no permit", nil), false},
	}
	for _, tc := range cases {
		if got := services.IsRunFatal(tc.err); got != tc.fatal {
			t.Fatalf("IsRunFatal(%v) = %v, want %v", tc.err, got, tc.fatal)
		}
	}
}

func TestSummaryStripsMarkerPrefix(t *testing.T) {
	err := services.Wrap(services.ErrPrecondition, "fetch", "resolve channel", "channel not found", nil)
	got := services.Summary(err)
	want := "fetch: resolve channel: channel not found"
	if got != want {
		t.Fatalf("Summary = %q, want %q", got, want)
	}
	if services.Summary(nil) != "" {
		t.Fatal("expected empty summary for nil error")
	}
}
