// Package clip defines the clip model shared across the pipeline and the
// selector that ranks freshly discovered clips for download.
package clip
