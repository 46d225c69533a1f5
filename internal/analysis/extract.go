package analysis

import (
	"regexp"
	"strconv"
	"strings"
)

const estimatedViewsPerPoint = 20

var scorePattern = regexp.MustCompile(`(?i)(?:score|pontuação)\D{0,20}?(\d+(?:\.\d+)?)`)

var defaultTags = []string{"gaming", "clips", "highlights", "viral", "streamer"}

var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"FAIL", []string{"fail", "mistake", "blunder"}},
	{"FUNNY", []string{"funny", "hilarious", "laugh"}},
	{"EDUCATIONAL", []string{"educational", "tutorial", "learn"}},
	{"IMPRESSIVE", []string{"impressive", "insane", "incredible", "skill"}},
	{"EPIC", []string{"epic", "clutch", "amazing"}},
}

// ExtractFromText recovers a result from free-form provider output. It is
// the fallback for providers without structured output support.
func ExtractFromText(text string) Result {
	result := Result{
		Structured: false,
		RawText:    text,
		Category:   extractCategory(text),
		Tags:       extractTags(text),
		ViralScore: extractScore(text),
	}
	result.EstimatedViews = int(result.ViralScore * estimatedViewsPerPoint)
	result.Hashtags = HashtagsFromTags(result.Tags)
	return result
}

func extractScore(text string) float64 {
	match := scorePattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	score, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return ClampScore(score)
}

func extractCategory(text string) string {
	lowered := strings.ToLower(text)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lowered, keyword) {
				return entry.category
			}
		}
	}
	return "GENERAL"
}

func extractTags(text string) []string {
	tags := make([]string, 0, len(defaultTags))
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lowered := strings.ToLower(trimmed)
		if !strings.HasPrefix(lowered, "tags:") {
			continue
		}
		for _, tag := range strings.Split(trimmed[len("tags:"):], ",") {
			cleaned := strings.TrimSpace(strings.Trim(tag, "#"))
			if cleaned == "" {
				continue
			}
			key := strings.ToLower(cleaned)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			tags = append(tags, cleaned)
		}
	}

	// Top up with defaults so downstream checks always see a usable set.
	for _, tag := range defaultTags {
		if len(tags) >= len(defaultTags) {
			break
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
