package matcher

import (
	"sort"

	"github.com/geo-reconciler/app/models"
	"github.com/geo-reconciler/internal/normalizer"
)

// Candidates generates the first-word shortlist for a query: every directory
// name whose normalized form shares (or fuzzily shares) the query's first
// word, scored by raw similarity, sorted by descending score and truncated
// to limit. Ties keep directory order. Empty input yields nil.
//
// This pass is a cheap pre-filter: clearly-wrong entries never reach the
// whole-string stages, and a strong hit short-circuits resolution.
func Candidates(query string, names []string, limit int, jaroGate float64) []models.Candidate {
	queryNorm := normalizer.Normalize(query)
	if queryNorm == "" {
		return nil
	}

	firstWord := queryNorm
	if i := indexSpace(queryNorm); i >= 0 {
		firstWord = queryNorm[:i]
	}

	var candidates []models.Candidate
	for _, name := range names {
		nameNorm := normalizer.Normalize(name)
		if FirstWordMatches(firstWord, nameNorm, jaroGate) {
			candidates = append(candidates, models.Candidate{
				Name:  name,
				Score: WeightedRatio(queryNorm, nameNorm),
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}
	return candidates
}

func indexSpace(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return i
		}
	}
	return -1
}
