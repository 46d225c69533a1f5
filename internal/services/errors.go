package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrPrecondition marks run-level failures (e.g. channel not found) that
	// terminate the whole workflow run.
	ErrPrecondition = errors.New("run precondition failed")
	// ErrTransient marks single-clip failures that are recorded on the clip
	// and never abort the surrounding batch.
	ErrTransient = errors.New("transient failure")
	// ErrRateLimited marks a permit that was not granted within the caller's
	// timeout; callers may retry or skip.
	ErrRateLimited = errors.New("rate limit exceeded")
	// ErrExternalTool marks failures of external commands such as yt-dlp.
	ErrExternalTool = errors.New("external tool error")
	// ErrValidation marks inputs or artifacts that failed a sanity check.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks invalid or missing configuration; run fatal.
	ErrConfiguration = errors.New("configuration error")
	// ErrNotFound marks lookups that produced no record.
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRunFatal reports whether an error must terminate the whole run rather
// than a single clip.
func IsRunFatal(err error) bool {
	return errors.Is(err, ErrPrecondition) || errors.Is(err, ErrConfiguration)
}

// Summary extracts user-facing error text: the message chain without the
// sentinel prefix, suitable for persisting on a run or clip record.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	text := err.Error()
	for _, marker := range []error{ErrPrecondition, ErrTransient, ErrRateLimited, ErrExternalTool, ErrValidation, ErrConfiguration, ErrNotFound} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(text, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}
	return strings.TrimSpace(text)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
