// Package transform holds the in-memory filters, rankings and aggregations
// applied to pre-aggregated listening tables before they are charted.
//
// Every function here is pure: the same input always yields the same output,
// input slices are never modified, and an empty input yields an empty or zero
// result rather than an error.
package transform

import (
	"fmt"
	"math"
	"sort"
)

// Direction selects which side of a quantile cut Classify keeps.
type Direction int

const (
	// AtMost keeps rows whose metric is <= the cut ("bottom N%").
	AtMost Direction = iota
	// AtLeast keeps rows whose metric is >= the cut ("top N%").
	AtLeast
)

func (d Direction) String() string {
	switch d {
	case AtMost:
		return "at-most"
	case AtLeast:
		return "at-least"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Cut is a resolved quantile threshold. Value is always a member of the
// observed value set, unless the input was empty.
type Cut struct {
	Quantile float64
	Value    float64
}

// ValidateQuantile reports ErrInvalidQuantile for q outside [0, 1].
func ValidateQuantile(q float64) error {
	if math.IsNaN(q) || q < 0 || q > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidQuantile, q)
	}
	return nil
}

// QuantileLower returns the value at quantile q using lower interpolation:
// the observed value at index floor((n-1)*q) of the sorted values. It never
// synthesizes a value absent from the input. An empty input yields 0.
func QuantileLower(values []float64, q float64) (float64, error) {
	if err := ValidateQuantile(q); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	// No rounding slack: 100*0.29 is 28.999..., so index 28 matches numpy's
	// lower interpolation.
	idx := int(math.Floor(float64(len(sorted)-1) * q))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx], nil
}

// Values extracts the metric column from rows.
func Values[T any](rows []T, metric func(T) float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = metric(r)
	}
	return out
}

// Classify resolves the q-quantile cut of metric over rows and returns the
// rows on the side selected by dir, in input order.
func Classify[T any](rows []T, metric func(T) float64, q float64, dir Direction) ([]T, Cut, error) {
	value, err := QuantileLower(Values(rows, metric), q)
	if err != nil {
		return nil, Cut{}, err
	}
	cut := Cut{Quantile: q, Value: value}
	return ApplyCut(rows, metric, cut, dir), cut, nil
}

// ApplyCut filters rows against a cut that may have been computed over a
// different (usually larger) table.
func ApplyCut[T any](rows []T, metric func(T) float64, cut Cut, dir Direction) []T {
	out := make([]T, 0, len(rows))
	for _, r := range rows {
		v := metric(r)
		switch dir {
		case AtMost:
			if v <= cut.Value {
				out = append(out, r)
			}
		case AtLeast:
			if v >= cut.Value {
				out = append(out, r)
			}
		}
	}
	return out
}

// CountAtLeast returns how many rows have metric >= cut.
func CountAtLeast[T any](rows []T, metric func(T) float64, cut Cut) int {
	n := 0
	for _, r := range rows {
		if metric(r) >= cut.Value {
			n++
		}
	}
	return n
}
