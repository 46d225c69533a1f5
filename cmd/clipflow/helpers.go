package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und)

// displayLabel turns stored enum values like "IN_PROGRESS" into "In Progress".
func displayLabel(value string) string {
	value = strings.ReplaceAll(strings.ToLower(value), "_", " ")
	return titleCaser.String(value)
}

func formatViews(views *int) string {
	if views == nil {
		return "-"
	}
	return strconv.Itoa(*views)
}

func formatScore(score float64) string {
	return fmt.Sprintf("%.1f", score)
}

func formatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	age := now.Sub(t)
	switch {
	case age < time.Minute:
		return "just now"
	case age < time.Hour:
		return fmt.Sprintf("%dm ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(age.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(age.Hours()/24))
	}
}

func truncate(value string, max int) string {
	if max <= 3 || len(value) <= max {
		return value
	}
	return value[:max-3] + "..."
}
