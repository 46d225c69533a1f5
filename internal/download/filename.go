package download

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const maxTitleLength = 50

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ArtifactFilename builds a filesystem-safe name from the clip title and id.
// Titles are sanitized and capped so generated names stay readable; the clip
// id keeps names unique across clips with identical titles.
func ArtifactFilename(title, clipID string) string {
	sanitized := unsafeFilenameChars.ReplaceAllString(title, "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "clip"
	}
	if len(sanitized) > maxTitleLength {
		sanitized = sanitized[:maxTitleLength]
	}
	return sanitized + "_" + clipID + ".mp4"
}

// artifactPath returns a destination that does not collide with an existing
// file. Collisions should not happen given unique clip ids; the uuid suffix
// keeps a stale leftover artifact from being overwritten.
func artifactPath(dir, title, clipID string) string {
	dest := filepath.Join(dir, ArtifactFilename(title, clipID))
	if _, err := os.Stat(dest); err == nil {
		suffix := uuid.NewString()[:8]
		dest = filepath.Join(dir, ArtifactFilename(title, clipID+"_"+suffix))
	}
	return dest
}
