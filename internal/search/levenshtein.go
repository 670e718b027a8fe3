package search

import "github.com/Aman-CERP/lexrag/internal/analysis"

// Distance is the Levenshtein edit distance between a and b after case and
// accent folding, counted in runes. It is symmetric and zero only for
// strings that fold to the same value.
func Distance(a, b string) int {
	ra, rb := []rune(analysis.Fold(a)), []rune(analysis.Fold(b))
	return boundedRunes(ra, rb, max(len(ra), len(rb)))
}

// BoundedDistance is Distance capped at limit: any distance above limit is
// reported as limit+1. Capping lets the computation stop early.
func BoundedDistance(a, b string, limit int) int {
	return boundedRunes([]rune(analysis.Fold(a)), []rune(analysis.Fold(b)), limit)
}

// boundedRunes computes the edit distance with two rows, returning limit+1
// as soon as the distance is known to exceed limit.
func boundedRunes(a, b []rune, limit int) int {
	limit = max(limit, 0)
	if abs(len(a)-len(b)) > limit {
		return limit + 1
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		rowMin := curr[0]
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
			rowMin = min(rowMin, curr[j])
		}
		if rowMin > limit {
			return limit + 1
		}
		prev, curr = curr, prev
	}

	if d := prev[len(b)]; d <= limit {
		return d
	}
	return limit + 1
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
