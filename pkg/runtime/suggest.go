package runtime

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxSuggestionDistance bounds how far a typo may be from a visible name.
const maxSuggestionDistance = 2

// suggest picks the visible name closest to an unresolved one, or "".
func suggest(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		sort.Stable(ranks)
		return ranks[0].Target
	}
	best, bestDist := "", maxSuggestionDistance+1
	for _, candidate := range candidates {
		if d := fuzzy.LevenshteinDistance(target, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}
