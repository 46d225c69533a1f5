// Package download fetches clip videos with yt-dlp and records the stored
// artifacts. Batch downloads isolate per-clip failures so one broken clip
// never aborts the rest of the batch.
package download
