package analysis_test

import (
	"reflect"
	"testing"

	"clipflow/internal/analysis"
)

func TestMergePrefersLongerTextAndHigherScore(t *testing.T) {
	primary := analysis.Result{
		Title:       "Nice clutch",
		Description: "A good round.",
		Tags:        []string{"fps", "clutch"},
		Category:    "EPIC",
		ViralScore:  6.0,
		Sentiment:   "hype",
		Structured:  true,
	}
	secondary := analysis.Result{
		Title:          "INSANE 1v5 clutch to win the match",
		Description:    "Short",
		Tags:           []string{"Clutch", "esports"},
		Category:       "IMPRESSIVE",
		ViralScore:     8.0,
		Sentiment:      "excited",
		BestUploadTime: "18:00",
		Structured:     true,
	}

	merged := analysis.Merge(primary, secondary)

	if merged.Title != secondary.Title {
		t.Fatalf("expected longer title to win, got %q", merged.Title)
	}
	if merged.Description != primary.Description {
		t.Fatalf("expected longer description to win, got %q", merged.Description)
	}
	if merged.ViralScore != 8.0 {
		t.Fatalf("expected max score 8.0, got %v", merged.ViralScore)
	}
	if merged.Category != "EPIC" || merged.Sentiment != "hype" {
		t.Fatalf("expected primary category and sentiment, got %q/%q", merged.Category, merged.Sentiment)
	}
	if merged.BestUploadTime != "18:00" {
		t.Fatalf("expected enrichment upload time, got %q", merged.BestUploadTime)
	}
	wantTags := []string{"fps", "clutch", "esports"}
	if !reflect.DeepEqual(merged.Tags, wantTags) {
		t.Fatalf("unexpected tag union: %v", merged.Tags)
	}
	wantHashtags := []string{"#fps", "#clutch", "#esports"}
	if !reflect.DeepEqual(merged.Hashtags, wantHashtags) {
		t.Fatalf("unexpected hashtags: %v", merged.Hashtags)
	}
}

func TestMergeFillsEmptyPrimaryFields(t *testing.T) {
	primary := analysis.Result{ViralScore: 5, Structured: true}
	secondary := analysis.Result{Category: "FUNNY", Sentiment: "amused", Structured: true}

	merged := analysis.Merge(primary, secondary)
	if merged.Category != "FUNNY" || merged.Sentiment != "amused" {
		t.Fatalf("expected secondary to fill empty fields, got %q/%q", merged.Category, merged.Sentiment)
	}
}

func TestClampScoreNormalizesScales(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{7.5, 7.5},
		{75, 7.5},
		{10, 10},
		{-3, 0},
		{500, 10},
	}
	for _, tc := range cases {
		if got := analysis.ClampScore(tc.in); got != tc.want {
			t.Fatalf("ClampScore(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestHashtagsFromTagsStripsSpacesAndLimits(t *testing.T) {
	tags := []string{"rocket league", "save", "", "epic", "gaming", "clips", "extra"}
	got := analysis.HashtagsFromTags(tags)
	want := []string{"#rocketleague", "#save", "#epic", "#gaming", "#clips"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected hashtags: %v", got)
	}
}
