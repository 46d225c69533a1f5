// Package store persists downloaded clips and workflow runs in SQLite.
// The clip_id UNIQUE constraint is the dedup authority: a second insert for
// the same clip reports ErrAlreadyDownloaded instead of creating a row, so
// concurrent runs cannot download the same clip twice.
package store
