package analysis

import (
	"fmt"
	"strings"
)

const primarySystemPrompt = `You are a social media editor for gaming clips.
Analyze the clip and respond with JSON only, no prose, using exactly this schema:
{"title": string, "description": string, "tags": [string], "category": string,
"viral_score": number, "sentiment": string, "estimated_views": number}
viral_score is on a 0-10 scale. category is one of FAIL, EPIC, FUNNY,
EDUCATIONAL, IMPRESSIVE, GENERAL.`

const enrichmentSystemPrompt = `You refine social media metadata for gaming clips.
Given a clip and a draft analysis, improve the title and description, add any
missing tags, and suggest the best time of day to publish. Respond with JSON
only, using exactly this schema:
{"title": string, "description": string, "tags": [string], "category": string,
"viral_score": number, "sentiment": string, "estimated_views": number,
"best_upload_time": string}
best_upload_time is HH:MM in 24h notation. viral_score is on a 0-10 scale.`

func primaryUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Clip title: %s\n", req.Title)
	if req.Broadcaster != "" {
		fmt.Fprintf(&b, "Broadcaster: %s\n", req.Broadcaster)
	}
	if req.Creator != "" {
		fmt.Fprintf(&b, "Clipped by: %s\n", req.Creator)
	}
	if req.Game != "" {
		fmt.Fprintf(&b, "Game: %s\n", req.Game)
	}
	if req.Duration > 0 {
		fmt.Fprintf(&b, "Duration: %.1f seconds\n", req.Duration)
	}
	return b.String()
}

func enrichmentUserPrompt(req Request, primary Result) string {
	var b strings.Builder
	b.WriteString(primaryUserPrompt(req))
	fmt.Fprintf(&b, "\nDraft title: %s\n", primary.Title)
	fmt.Fprintf(&b, "Draft description: %s\n", primary.Description)
	if len(primary.Tags) > 0 {
		fmt.Fprintf(&b, "Draft tags: %s\n", strings.Join(primary.Tags, ", "))
	}
	fmt.Fprintf(&b, "Draft viral score: %.1f\n", primary.ViralScore)
	return b.String()
}
