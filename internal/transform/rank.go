package transform

import "sort"

// DenseRank ranks rows by metric and returns the ranks aligned with the input
// order. Rank 1 is the best value: the largest when ascending is false, the
// smallest when it is true. Equal values share a rank and the next distinct
// value gets the previous rank + 1.
func DenseRank[T any](rows []T, metric func(T) float64, ascending bool) []int {
	ranks := make([]int, len(rows))
	if len(rows) == 0 {
		return ranks
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := metric(rows[order[a]]), metric(rows[order[b]])
		if ascending {
			return va < vb
		}
		return va > vb
	})

	rank := 0
	var prev float64
	for i, idx := range order {
		v := metric(rows[idx])
		if i == 0 || v != prev {
			rank++
			prev = v
		}
		ranks[idx] = rank
	}
	return ranks
}

// Best returns the indexes of the rows holding rank 1.
func Best(ranks []int) []int {
	var out []int
	for i, r := range ranks {
		if r == 1 {
			out = append(out, i)
		}
	}
	return out
}
