package quality

import (
	"fmt"
	"strings"

	"clipflow/internal/analysis"
	"clipflow/internal/config"
)

// Thresholds are the limits a clip must clear. All checks must pass.
type Thresholds struct {
	MinViralScore float64
	MinDuration   float64
	MaxDuration   float64
	MinViews      int
	MinTags       int
	BlockedTerms  []string
}

// FromConfig builds thresholds from the quality configuration section.
func FromConfig(cfg config.Quality) Thresholds {
	return Thresholds{
		MinViralScore: cfg.MinViralScore,
		MinDuration:   cfg.MinDurationSeconds,
		MaxDuration:   cfg.MaxDurationSeconds,
		MinViews:      cfg.MinViews,
		MinTags:       cfg.MinTags,
		BlockedTerms:  cfg.BlockedTerms,
	}
}

// ClipFacts are the source-reported properties the gate checks alongside the
// analysis result.
type ClipFacts struct {
	Duration  float64
	ViewCount *int
}

// Decision is the gate outcome. Reason is empty when the clip passes.
type Decision struct {
	Pass   bool
	Reason string
}

func reject(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// Evaluate runs every check against the merged analysis result. A score
// exactly at the minimum passes; the view check only applies when the
// source reported a metric.
func (t Thresholds) Evaluate(result analysis.Result, facts ClipFacts) Decision {
	if result.ViralScore < t.MinViralScore {
		return reject("viral score %.1f below minimum %.1f", result.ViralScore, t.MinViralScore)
	}
	if facts.Duration < t.MinDuration {
		return reject("duration %.1fs below minimum %.1fs", facts.Duration, t.MinDuration)
	}
	if facts.Duration > t.MaxDuration {
		return reject("duration %.1fs above maximum %.1fs", facts.Duration, t.MaxDuration)
	}
	if facts.ViewCount != nil && *facts.ViewCount < t.MinViews {
		return reject("view count %d below minimum %d", *facts.ViewCount, t.MinViews)
	}
	if term := t.blockedTerm(result.Title, result.Description); term != "" {
		return reject("blocked term %q in title or description", term)
	}
	if len(result.Tags) < t.MinTags {
		return reject("only %d tags, need at least %d", len(result.Tags), t.MinTags)
	}
	return Decision{Pass: true}
}

func (t Thresholds) blockedTerm(texts ...string) string {
	var lowered []string
	for _, text := range texts {
		if text != "" {
			lowered = append(lowered, strings.ToLower(text))
		}
	}
	for _, term := range t.BlockedTerms {
		needle := strings.ToLower(term)
		for _, text := range lowered {
			if strings.Contains(text, needle) {
				return term
			}
		}
	}
	return ""
}
