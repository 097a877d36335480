package transform

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func ident(v float64) float64 { return v }

func TestDenseRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		values    []float64
		ascending bool
		want      []int
	}{
		{"ties descending", []float64{5, 5, 3}, false, []int{1, 1, 2}},
		{"ties ascending", []float64{5, 5, 3}, true, []int{2, 2, 1}},
		{"all equal", []float64{0.4, 0.4, 0.4, 0.4}, false, []int{1, 1, 1, 1}},
		{"all distinct", []float64{3, 1, 4, 2}, false, []int{2, 4, 1, 3}},
		{"no gaps after ties", []float64{9, 9, 9, 7, 7, 1}, false, []int{1, 1, 1, 2, 2, 3}},
		{"empty", nil, false, []int{}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DenseRank(tt.values, ident, tt.ascending))
		})
	}
}

func TestDenseRankIdempotentUnderResort(t *testing.T) {
	values := []float64{0.2, 0.9, 0.2, 0.5, 0.9, 0.1}
	ranks := DenseRank(values, ident, false)

	type ranked struct {
		value float64
		rank  int
	}
	rows := make([]ranked, len(values))
	for i, v := range values {
		rows[i] = ranked{v, ranks[i]}
	}
	sort.Slice(rows, func(a, b int) bool { return rows[a].rank < rows[b].rank })

	again := DenseRank(rows, func(r ranked) float64 { return r.value }, false)
	for i, r := range rows {
		assert.Equal(t, r.rank, again[i])
	}

	byRank := DenseRank(rows, func(r ranked) float64 { return float64(r.rank) }, true)
	for i, r := range rows {
		assert.Equal(t, r.rank, byRank[i])
	}
}

func TestBest(t *testing.T) {
	assert.Equal(t, []int{0, 2}, Best([]int{1, 2, 1, 3}))
	assert.Empty(t, Best(nil))
}
