package clip

import "time"

// Clip is a candidate video clip discovered from the source API.
type Clip struct {
	ID          string
	URL         string
	Title       string
	Creator     string
	Broadcaster string
	Game        string
	// ViewCount is nil when the source did not report a popularity metric.
	ViewCount *int
	Duration  float64
	CreatedAt time.Time
}

// HasViewCount reports whether the source supplied a popularity metric.
func (c Clip) HasViewCount() bool {
	return c.ViewCount != nil
}

// Views returns the popularity metric, or zero when absent.
func (c Clip) Views() int {
	if c.ViewCount == nil {
		return 0
	}
	return *c.ViewCount
}

// Window bounds a discovery query in time.
type Window struct {
	Start time.Time
	End   time.Time
}

// RecentWindow returns a window covering the last given number of days.
func RecentWindow(days int) Window {
	end := time.Now().UTC()
	return Window{Start: end.AddDate(0, 0, -days), End: end}
}
