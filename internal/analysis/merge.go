package analysis

import "strings"

const maxHashtags = 5

// ClampScore normalizes a viral score onto the 0-10 scale. Providers that
// answer on a 0-100 scale are mapped down; anything outside the range is
// clamped.
func ClampScore(score float64) float64 {
	if score > 10 {
		score = score / 10
	}
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// Merge combines the primary result with the best-effort enrichment.
//
// Policy: longer title and description win, tags are the union with primary
// tags first, the higher score and estimated views win, category and
// sentiment stay with the primary unless it left them empty, and the
// enrichment owns best upload time. Hashtags are rebuilt from the merged
// tags.
func Merge(primary, secondary Result) Result {
	merged := primary

	if len(secondary.Title) > len(merged.Title) {
		merged.Title = secondary.Title
	}
	if len(secondary.Description) > len(merged.Description) {
		merged.Description = secondary.Description
	}

	merged.Tags = unionTags(primary.Tags, secondary.Tags)

	if score := ClampScore(secondary.ViralScore); score > merged.ViralScore {
		merged.ViralScore = score
	}
	merged.ViralScore = ClampScore(merged.ViralScore)

	if secondary.EstimatedViews > merged.EstimatedViews {
		merged.EstimatedViews = secondary.EstimatedViews
	}

	if merged.Category == "" {
		merged.Category = secondary.Category
	}
	if merged.Sentiment == "" {
		merged.Sentiment = secondary.Sentiment
	}
	if secondary.BestUploadTime != "" {
		merged.BestUploadTime = secondary.BestUploadTime
	}

	merged.Hashtags = HashtagsFromTags(merged.Tags)
	merged.Structured = primary.Structured && secondary.Structured
	return merged
}

// HashtagsFromTags derives social hashtags from the first few tags.
func HashtagsFromTags(tags []string) []string {
	hashtags := make([]string, 0, maxHashtags)
	for _, tag := range tags {
		cleaned := strings.ReplaceAll(strings.TrimSpace(tag), " ", "")
		if cleaned == "" {
			continue
		}
		hashtags = append(hashtags, "#"+cleaned)
		if len(hashtags) == maxHashtags {
			break
		}
	}
	return hashtags
}

func unionTags(primary, secondary []string) []string {
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	union := make([]string, 0, len(primary)+len(secondary))
	for _, tag := range append(append([]string{}, primary...), secondary...) {
		normalized := strings.TrimSpace(tag)
		if normalized == "" {
			continue
		}
		key := strings.ToLower(normalized)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		union = append(union, normalized)
	}
	return union
}
