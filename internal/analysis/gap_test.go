package analysis

import (
	"testing"
	"time"

	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/ademuri/listening-dashboard/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gapNow = time.Date(2026, time.January, 23, 12, 0, 0, 0, taipei)

func gapData(d *store.Dataset) GapData {
	return GapData{
		Plays:     d.Tracks[store.ListPlays],
		Forgotten: d.Tracks[store.ListForgotten],
		Frequent:  d.Tracks[store.ListFrequentNotLiked],
		Long:      d.Tracks[store.ListLong],
		Likes:     d.Likes,
	}
}

func TestDefaultGapConfig(t *testing.T) {
	w := testWindow(t)
	cfg := DefaultGapConfig(w)
	assert.Equal(t, 1.0, cfg.TopPercent)
	assert.Equal(t, 5.0, cfg.BottomPercent)
	assert.Equal(t, day("2025-07-27"), cfg.LikedStart)
	assert.Equal(t, day("2026-01-18"), cfg.LikedEnd)
	assert.Equal(t, 5.0, cfg.LongTopPercent)
	assert.Equal(t, 180, cfg.LongDays)
	assert.NoError(t, cfg.Validate(w))

	short, err := NewWindow(day("2025-10-25"), day("2025-10-27"), taipei)
	require.NoError(t, err)
	assert.Equal(t, short.Start, DefaultGapConfig(short).LikedEnd)
}

func TestGapConfigValidate(t *testing.T) {
	w := testWindow(t)
	tests := []struct {
		name   string
		modify func(*GapConfig)
	}{
		{"top above 50", func(c *GapConfig) { c.TopPercent = 51 }},
		{"negative bottom", func(c *GapConfig) { c.BottomPercent = -1 }},
		{"long top above 50", func(c *GapConfig) { c.LongTopPercent = 50.5 }},
		{"long days too short", func(c *GapConfig) { c.LongDays = 29 }},
		{"long days too long", func(c *GapConfig) { c.LongDays = 1501 }},
		{"liked start too early", func(c *GapConfig) { c.LikedStart = day("2024-10-24") }},
		{"liked start after data start", func(c *GapConfig) { c.LikedStart = day("2025-10-26") }},
		{"liked end before data start", func(c *GapConfig) { c.LikedEnd = day("2025-10-24") }},
		{"liked end after data end", func(c *GapConfig) { c.LikedEnd = day("2026-01-24") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultGapConfig(w)
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(w), ErrInvalidSetting)
		})
	}

	edges := DefaultGapConfig(w)
	edges.TopPercent, edges.BottomPercent = 0, 50
	edges.LikedStart, edges.LikedEnd = day("2024-10-25"), w.End
	edges.LongDays = 1500
	assert.NoError(t, edges.Validate(w))
}

func TestResolveGapCuts(t *testing.T) {
	d := testDataset(t)
	cuts, err := ResolveGapCuts(d.Tracks[store.ListPlays], DefaultGapConfig(testWindow(t)))
	require.NoError(t, err)
	assert.Equal(t, 1.0, cuts.Bottom.Value)
	assert.Equal(t, 5.0, cuts.Top.Value)
	assert.Equal(t, 5.0, cuts.LongTop.Value)
	assert.InDelta(t, 0.99, cuts.Top.Quantile, 1e-9)

	empty, err := ResolveGapCuts(nil, DefaultGapConfig(testWindow(t)))
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty.Top.Value)
}

func TestBuildGap(t *testing.T) {
	w := testWindow(t)
	page, err := BuildGap(gapData(testDataset(t)), w, DefaultGapConfig(w), gapNow)
	require.NoError(t, err)

	assert.Equal(t, "2025-07-27 ~ 2026-01-18", page.Liked)
	require.Len(t, page.Forgotten, 1)
	assert.Equal(t, "t1", page.Forgotten[0].TrackID)
	require.Len(t, page.Frequent, 1)
	assert.Equal(t, "t4", page.Frequent[0].TrackID)
	require.Len(t, page.Long, 1)
	assert.Equal(t, "t3", page.Long[0].TrackID)

	// t1 and t5 were liked in the liked window, t5 alone in the data window.
	assert.Equal(t, 0.5, page.Metrics.ForgottenRatio)
	// t3 and t4 reach the top cut; only t4 is unliked.
	assert.Equal(t, 0.5, page.Metrics.FrequentRatio)
	assert.Equal(t, 0.25, page.Metrics.LikeRatio)
}

func TestBuildGapLikedWindow(t *testing.T) {
	w := testWindow(t)
	cfg := DefaultGapConfig(w)
	cfg.LikedStart = day("2025-10-01")

	page, err := BuildGap(gapData(testDataset(t)), w, cfg, gapNow)
	require.NoError(t, err)
	assert.Empty(t, page.Forgotten)
	assert.Equal(t, 0.0, page.Metrics.ForgottenRatio)
}

func TestBuildGapOrdering(t *testing.T) {
	w := testWindow(t)
	data := GapData{
		Plays: []store.TrackPlay{
			{TrackID: "a", Count: 1}, {TrackID: "b", Count: 1}, {TrackID: "c", Count: 1}, {TrackID: "d", Count: 9},
		},
		Frequent: []store.TrackPlay{
			{TrackID: "low", Count: 1}, {TrackID: "high", Count: 9}, {TrackID: "mid", Count: 3},
		},
		Long: []store.TrackPlay{
			{TrackID: "newer", Count: 9, AddedAt: ts(t, "2024-06-01T00:00:00Z")},
			{TrackID: "older", Count: 9, AddedAt: ts(t, "2023-01-01T00:00:00Z")},
			{TrackID: "recent", Count: 9, AddedAt: ts(t, "2026-01-01T00:00:00Z")},
		},
	}
	cfg := DefaultGapConfig(w)
	cfg.TopPercent = 50

	page, err := BuildGap(data, w, cfg, gapNow)
	require.NoError(t, err)

	var frequent []string
	for _, r := range page.Frequent {
		frequent = append(frequent, r.TrackID)
	}
	assert.Equal(t, []string{"high", "mid", "low"}, frequent)

	require.Len(t, page.Long, 2)
	assert.Equal(t, "older", page.Long[0].TrackID)
	assert.Equal(t, "newer", page.Long[1].TrackID)
}

func TestBuildGapEmpty(t *testing.T) {
	w := testWindow(t)
	page, err := BuildGap(GapData{}, w, DefaultGapConfig(w), gapNow)
	require.NoError(t, err)
	assert.Empty(t, page.Forgotten)
	assert.Empty(t, page.Frequent)
	assert.Empty(t, page.Long)
	assert.Equal(t, GapMetrics{}, page.Metrics)
}

func TestBuildGapNaiveDates(t *testing.T) {
	w := testWindow(t)
	data := gapData(testDataset(t))
	data.Forgotten = []store.TrackPlay{
		{TrackID: "late", Count: 1, AddedAt: ts(t, "2025-10-25 23:59:00")},
		{TrackID: "next", Count: 1, AddedAt: ts(t, "2025-10-26 00:00:00")},
	}
	data.Long = []store.TrackPlay{{TrackID: "t3", Count: 5, AddedAt: ts(t, "2024-01-01 00:00:00")}}
	data.Likes = []store.LikedTrack{
		{TrackID: "late", AddedAt: ts(t, "2025-10-25 23:59:00")},
		{TrackID: "next", AddedAt: ts(t, "2025-10-26 00:00:00")},
	}
	cfg := DefaultGapConfig(w)
	cfg.LikedEnd = day("2025-10-25")

	page, err := BuildGap(data, w, cfg, gapNow)
	require.NoError(t, err)
	require.Len(t, page.Forgotten, 1)
	assert.Equal(t, "late", page.Forgotten[0].TrackID)
	assert.Equal(t, "2025-10-25T23:59:00+08:00", page.Forgotten[0].AddedAt.String())
	require.Len(t, page.Long, 1)
	assert.Equal(t, 1.0, page.Metrics.ForgottenRatio)
}

func TestBuildGapMixedZones(t *testing.T) {
	w := testWindow(t)
	data := gapData(testDataset(t))
	data.Forgotten = []store.TrackPlay{
		{TrackID: "t1", Count: 1, AddedAt: ts(t, "2025-09-01 10:00:00")},
		{TrackID: "t2", Count: 1, AddedAt: ts(t, "2025-09-01T10:00:00Z")},
	}

	_, err := BuildGap(data, w, DefaultGapConfig(w), gapNow)
	assert.ErrorIs(t, err, transform.ErrTimestampTimezoneMismatch)
}
