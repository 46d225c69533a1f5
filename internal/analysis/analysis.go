package analysis

import "context"

// Request describes the clip being analyzed.
type Request struct {
	Title       string
	Creator     string
	Broadcaster string
	Game        string
	Duration    float64
}

// Result is the publication metadata produced for a clip. ViralScore is on
// a 0-10 scale everywhere; values arriving on other scales are normalized
// at the parse boundary.
type Result struct {
	Title          string
	Description    string
	Tags           []string
	Category       string
	ViralScore     float64
	Sentiment      string
	EstimatedViews int
	BestUploadTime string
	Hashtags       []string

	// Structured is false when the provider returned prose and the result
	// was recovered by heuristic extraction.
	Structured bool
	RawText    string
}

// Analyzer produces metadata for a clip.
type Analyzer interface {
	// Analyze issues the primary analysis call.
	Analyze(ctx context.Context, req Request) (Result, error)
	// AnalyzeEnriched issues the best-effort secondary call that refines a
	// primary result.
	AnalyzeEnriched(ctx context.Context, req Request, primary Result) (Result, error)
}
