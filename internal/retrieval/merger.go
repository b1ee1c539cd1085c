package retrieval

import (
	"sort"

	"github.com/kissanvaani/kissanvaani/internal/models"
)

// Merge deduplicates candidates by ID keeping the maximum score seen for each
// identifier, then returns the top max candidates sorted by score descending.
// The sort is stable: candidates with equal scores retain the relative order
// of their first appearance.
func Merge(candidates []*models.MatchCandidate, max int) []*models.MatchCandidate {
	byID := make(map[string]*models.MatchCandidate)
	merged := make([]*models.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if existing, ok := byID[c.ID]; ok {
			if c.Score > existing.Score {
				existing.Score = c.Score
			}
			continue
		}
		kept := &models.MatchCandidate{ID: c.ID, Score: c.Score, Metadata: c.Metadata}
		byID[c.ID] = kept
		merged = append(merged, kept)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })
	if max > 0 && len(merged) > max {
		merged = merged[:max]
	}
	return merged
}
