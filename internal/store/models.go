package store

import "time"

// ProcessingStatus tracks a clip through the analyze stage.
type ProcessingStatus string

const (
	StatusPending   ProcessingStatus = "PENDING"
	StatusAnalyzing ProcessingStatus = "ANALYZING"
	StatusReady     ProcessingStatus = "READY"
	StatusSkipped   ProcessingStatus = "SKIPPED"
	StatusFailed    ProcessingStatus = "FAILED"
	StatusRetry     ProcessingStatus = "RETRY"
)

// RunStatus tracks a workflow run end to end.
type RunStatus string

const (
	RunInProgress RunStatus = "IN_PROGRESS"
	RunCompleted  RunStatus = "COMPLETED"
	RunFailed     RunStatus = "FAILED"
)

// Run stages persisted on workflow_runs while a run is in progress.
const (
	StageCreated     = "created"
	StageFetching    = "fetching"
	StageDownloading = "downloading"
	StageAnalyzing   = "analyzing"
)

// DownloadedClip is a clip with a stored artifact plus its analysis results.
type DownloadedClip struct {
	ID          int64
	ClipID      string
	URL         string
	Title       string
	Creator     string
	Broadcaster string
	Game        string
	ViewCount   *int
	Duration    float64

	FilePath     string
	FileSize     int64
	DownloadedAt time.Time
	UpdatedAt    time.Time

	Processed        bool
	ProcessingStatus ProcessingStatus
	ErrorMessage     string

	GeneratedTitle       string
	GeneratedDescription string
	Tags                 []string
	Category             string
	ViralScore           float64
	Sentiment            string
	EstimatedViews       int
	BestUploadTime       string
	Hashtags             []string
	QualityReason        string
}

// HasViewCount reports whether the source supplied a popularity metric.
func (c *DownloadedClip) HasViewCount() bool {
	return c.ViewCount != nil
}

// WorkflowRun records one channel processing run.
type WorkflowRun struct {
	ID              int64
	RunID           string
	Channel         string
	Status          RunStatus
	Stage           string
	ClipsDiscovered int
	ClipsDownloaded int
	ClipsProcessed  int
	ClipsReady      int
	ErrorMessage    string
	StartedAt       time.Time
	CompletedAt     *time.Time
}

// Duration returns the elapsed run time, using now for unfinished runs.
func (r *WorkflowRun) Duration(now time.Time) time.Duration {
	end := now
	if r.CompletedAt != nil {
		end = *r.CompletedAt
	}
	return end.Sub(r.StartedAt)
}
