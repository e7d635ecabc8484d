package util

import (
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// RoughlyMatches is true when the name differs from the target by a typo or two.
func RoughlyMatches(name string, target string) bool {
	return strutil.Similarity(SimplifyName(name), SimplifyName(target), metrics.NewHamming()) >= 0.8
}

// BestMatch returns the index of the candidate most similar to query or -1 if nothing reaches
// minSimilarity.
func BestMatch(query string, candidates []string, minSimilarity float64) int {
	query = SimplifyName(query)
	if query == "" {
		return -1
	}
	metric := metrics.NewJaroWinkler()
	best, bestScore := -1, minSimilarity
	for k, c := range candidates {
		c = SimplifyName(c)
		if c == query {
			return k
		}
		if sim := strutil.Similarity(query, c, metric); sim >= bestScore && (best == -1 || sim > bestScore) {
			best, bestScore = k, sim
		}
	}
	return best
}

func SimplifyName(name string) string {
	return strings.Join(strings.Fields(trimAllPrefix(strings.ToLower(name), "the ")), " ")
}

func trimAllPrefix(str string, trim ...string) string {
	str = strings.TrimSpace(str)
	for _, v := range trim {
		str = strings.TrimSpace(strings.TrimPrefix(str, v))
	}
	return str
}
