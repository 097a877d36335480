package transform

// WeightedAverage returns sum(value*weight)/sum(weight) over rows.
//
// An empty input yields 0 and a single row yields its raw value, unweighted.
// Several rows whose weights sum to zero also yield 0.
func WeightedAverage[T any](rows []T, value, weight func(T) float64) float64 {
	switch len(rows) {
	case 0:
		return 0
	case 1:
		return value(rows[0])
	}

	var num, den float64
	for _, r := range rows {
		w := weight(r)
		num += value(r) * w
		den += w
	}
	if den == 0 {
		return 0
	}
	return num / den
}

// ExcludeAndAverage returns the weighted average of every row whose key is not
// exclude. The weight sum is taken over the remaining rows only.
//
// ok is false, with a zero average, when exclude does not occur among the
// rows' keys.
func ExcludeAndAverage[T any, K comparable](rows []T, key func(T) K, exclude K, value, weight func(T) float64) (avg float64, ok bool) {
	remaining := make([]T, 0, len(rows))
	for _, r := range rows {
		if key(r) == exclude {
			ok = true
			continue
		}
		remaining = append(remaining, r)
	}
	if !ok {
		return 0, false
	}
	return WeightedAverage(remaining, value, weight), true
}
