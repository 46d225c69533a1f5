package clip

import "sort"

// DownloadedSet holds the identifiers and URLs of clips that already have a
// stored artifact.
type DownloadedSet map[string]struct{}

// Contains reports whether the clip's ID or URL is in the set.
func (s DownloadedSet) Contains(c Clip) bool {
	if s == nil {
		return false
	}
	if _, ok := s[c.ID]; ok {
		return true
	}
	if _, ok := s[c.URL]; ok {
		return true
	}
	return false
}

// SelectTop ranks candidates and returns at most limit clips.
//
// Already-downloaded clips are dropped first. Ranking prefers the popularity
// metric when the source reports one; candidates without a metric are only
// considered when no candidate carries one, in which case recency decides.
// The input slice is never mutated and repeated calls over the same input
// produce the same order.
func SelectTop(clips []Clip, downloaded DownloadedSet, limit int) []Clip {
	if limit <= 0 || len(clips) == 0 {
		return nil
	}

	withMetric := make([]Clip, 0, len(clips))
	withoutMetric := make([]Clip, 0)
	for _, candidate := range clips {
		if downloaded.Contains(candidate) {
			continue
		}
		if candidate.HasViewCount() {
			withMetric = append(withMetric, candidate)
		} else {
			withoutMetric = append(withoutMetric, candidate)
		}
	}

	ranked := withMetric
	if len(ranked) > 0 {
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].Views() > ranked[j].Views()
		})
	} else {
		ranked = withoutMetric
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].CreatedAt.After(ranked[j].CreatedAt)
		})
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
