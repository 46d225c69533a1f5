package workflow_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"clipflow/internal/analysis"
	"clipflow/internal/clip"
	"clipflow/internal/clipsource"
	"clipflow/internal/config"
	"clipflow/internal/download"
	"clipflow/internal/logging"
	"clipflow/internal/ratelimit"
	"clipflow/internal/services"
	"clipflow/internal/store"
	"clipflow/internal/testsupport"
	"clipflow/internal/workflow"
)

type stubSource struct {
	mu       sync.Mutex
	channels map[string]*clipsource.Channel
	clips    map[string][]clip.Clip
}

func (s *stubSource) ResolveChannel(_ context.Context, login string) (*clipsource.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	channel, ok := s.channels[login]
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "fetch", "resolve channel", login, nil)
	}
	return channel, nil
}

func (s *stubSource) FetchClips(_ context.Context, channelID string, _ clip.Window) ([]clip.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clips[channelID], nil
}

type stubFetcher struct{}

func (stubFetcher) FetchToFile(_ context.Context, _ string, dest string) error {
	return os.WriteFile(dest, []byte("video-data"), 0o644)
}

type stubAnalyzer struct {
	mu           sync.Mutex
	analyzeCalls int
	enrichCalls  int
	inFlight     int
	maxInFlight  int
	failFor      map[string]error
	scoreFor     map[string]float64
	enrichErr    error
}

func (a *stubAnalyzer) Analyze(_ context.Context, req analysis.Request) (analysis.Result, error) {
	a.mu.Lock()
	a.analyzeCalls++
	a.inFlight++
	if a.inFlight > a.maxInFlight {
		a.maxInFlight = a.inFlight
	}
	a.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	a.mu.Lock()
	a.inFlight--
	defer a.mu.Unlock()
	if err, ok := a.failFor[req.Title]; ok {
		return analysis.Result{}, err
	}
	score := 8.0
	if s, ok := a.scoreFor[req.Title]; ok {
		score = s
	}
	return analysis.Result{
		Title:          "Generated " + req.Title,
		Description:    "A highlight from " + req.Broadcaster,
		Tags:           []string{"gaming", "clips", "highlights"},
		Category:       "EPIC",
		ViralScore:     score,
		Sentiment:      "hype",
		EstimatedViews: int(score * 20),
		Structured:     true,
	}, nil
}

func (a *stubAnalyzer) AnalyzeEnriched(_ context.Context, _ analysis.Request, primary analysis.Result) (analysis.Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enrichCalls++
	if a.enrichErr != nil {
		return analysis.Result{}, a.enrichErr
	}
	enriched := primary
	enriched.BestUploadTime = "18:00"
	enriched.Structured = true
	return enriched, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) record(event string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return nil
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, e := range n.events {
		if e == event {
			total++
		}
	}
	return total
}

func (n *recordingNotifier) NotifyDownloadCompleted(context.Context, string, string) error {
	return n.record("download.completed")
}

func (n *recordingNotifier) NotifyAnalysisCompleted(context.Context, string, float64) error {
	return n.record("analysis.completed")
}

func (n *recordingNotifier) NotifyClipReady(context.Context, string, float64, []string) error {
	return n.record("clip.ready")
}

func (n *recordingNotifier) NotifyRunCompleted(context.Context, string, int, int, time.Duration) error {
	return n.record("run.completed")
}

func (n *recordingNotifier) NotifyRunFailed(context.Context, string, string) error {
	return n.record("run.failed")
}

func (n *recordingNotifier) NotifyError(context.Context, error, string) error {
	return n.record("error")
}

func (n *recordingNotifier) TestNotification(context.Context) error {
	return n.record("test")
}

type harness struct {
	cfg      *config.Config
	store    *store.Store
	source   *stubSource
	analyzer *stubAnalyzer
	notifier *recordingNotifier
	orch     *workflow.Orchestrator
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	st := testsupport.MustOpenStore(t, cfg)
	registry, err := ratelimit.FromConfig(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("ratelimit.FromConfig: %v", err)
	}

	source := &stubSource{
		channels: map[string]*clipsource.Channel{
			"streamer": {ID: "chan-1", Login: "streamer", DisplayName: "Streamer"},
		},
		clips: map[string][]clip.Clip{},
	}
	analyzer := &stubAnalyzer{failFor: map[string]error{}, scoreFor: map[string]float64{}}
	notifier := &recordingNotifier{}
	stage := download.NewStage(st, stubFetcher{}, cfg.Paths.DownloadDir, logging.NewNop())

	return &harness{
		cfg:      cfg,
		store:    st,
		source:   source,
		analyzer: analyzer,
		notifier: notifier,
		orch:     workflow.New(cfg, st, source, stage, analyzer, notifier, registry, logging.NewNop()),
	}
}

func (h *harness) seedClips(channelID string, count int) []clip.Clip {
	views := []int{500, 320, 800, 150, 260}
	clips := make([]clip.Clip, 0, count)
	for i := 0; i < count; i++ {
		v := views[i%len(views)]
		clips = append(clips, clip.Clip{
			ID:          fmt.Sprintf("%s-clip-%d", channelID, i+1),
			URL:         fmt.Sprintf("https://clips.example/%s/%d", channelID, i+1),
			Title:       fmt.Sprintf("Highlight %d", i+1),
			Creator:     "clipper",
			Broadcaster: "Streamer",
			Game:        "Apex",
			ViewCount:   &v,
			Duration:    30,
			CreatedAt:   time.Now().UTC().Add(-time.Duration(i) * time.Hour),
		})
	}
	h.source.mu.Lock()
	h.source.clips[channelID] = clips
	h.source.mu.Unlock()
	return clips
}
