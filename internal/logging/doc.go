// Package logging builds the slog loggers used across the pipeline. It
// provides a human-readable console handler for interactive use, a JSON
// handler for log files, and helpers that pull structured fields (run id,
// clip id, stage, channel) out of a context.
package logging
