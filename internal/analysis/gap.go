package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/ademuri/listening-dashboard/internal/transform"
)

const (
	DefaultTopPercent     = 1.0
	DefaultBottomPercent  = 5.0
	DefaultLongTopPercent = 5.0
	DefaultLongDays       = 180
	MinLongDays           = 30
	MaxLongDays           = 1500
	MaxPercent            = 50.0

	// Default liked-date window, relative to the data window.
	defaultLikedLead = 90
	defaultLikedLag  = 5
	// How far before the data window the liked-date window may start.
	maxLikedLead = 365
)

// GapConfig holds the gap page widgets. Percentages are in [0, 50].
type GapConfig struct {
	TopPercent    float64
	BottomPercent float64
	// LikedStart and LikedEnd bound the like dates the forgotten list looks
	// at, as calendar days.
	LikedStart     time.Time
	LikedEnd       time.Time
	LongTopPercent float64
	LongDays       int
}

// DefaultGapConfig returns the widget defaults for a data window.
func DefaultGapConfig(w Window) GapConfig {
	likedEnd := w.End.AddDate(0, 0, -defaultLikedLag)
	if likedEnd.Before(w.Start) {
		likedEnd = w.Start
	}
	return GapConfig{
		TopPercent:     DefaultTopPercent,
		BottomPercent:  DefaultBottomPercent,
		LikedStart:     w.Start.AddDate(0, 0, -defaultLikedLead),
		LikedEnd:       likedEnd,
		LongTopPercent: DefaultLongTopPercent,
		LongDays:       DefaultLongDays,
	}
}

func validPercent(name string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > MaxPercent {
		return invalidSetting("%s %v%% outside [0, %v]", name, p, MaxPercent)
	}
	return nil
}

// Validate checks the widgets against their ranges. The liked-date window may
// start up to a year before the data window and must end inside it.
func (c GapConfig) Validate(w Window) error {
	if err := validPercent("top", c.TopPercent); err != nil {
		return err
	}
	if err := validPercent("bottom", c.BottomPercent); err != nil {
		return err
	}
	if err := validPercent("long top", c.LongTopPercent); err != nil {
		return err
	}
	if c.LongDays < MinLongDays || c.LongDays > MaxLongDays {
		return invalidSetting("long days %d outside [%d, %d]", c.LongDays, MinLongDays, MaxLongDays)
	}

	earliest := w.Start.AddDate(0, 0, -maxLikedLead)
	if c.LikedStart.Before(earliest) || c.LikedStart.After(w.Start) {
		return invalidSetting("liked start %s outside [%s, %s]", c.LikedStart.Format(store.DateLayout),
			earliest.Format(store.DateLayout), w.Start.Format(store.DateLayout))
	}
	if c.LikedEnd.Before(w.Start) || c.LikedEnd.After(w.End) {
		return invalidSetting("liked end %s outside [%s, %s]", c.LikedEnd.Format(store.DateLayout),
			w.Start.Format(store.DateLayout), w.End.Format(store.DateLayout))
	}
	return nil
}

// GapCuts are the play-count thresholds, all computed over the whole play
// distribution.
type GapCuts struct {
	Bottom  transform.Cut `yaml:"bottom"`
	Top     transform.Cut `yaml:"top"`
	LongTop transform.Cut `yaml:"long_top"`
}

type GapMetrics struct {
	// ForgottenRatio is the share of likes in the liked-date window that are
	// rarely played.
	ForgottenRatio float64 `yaml:"forgotten_ratio"`
	// FrequentRatio is the share of the most played tracks never liked.
	FrequentRatio float64 `yaml:"frequent_ratio"`
	// LikeRatio is likes in the data window per distinct played track.
	LikeRatio float64 `yaml:"like_ratio"`
}

// GapPage holds the three full lists; reveal cursors page through them.
type GapPage struct {
	Window    string            `yaml:"window"`
	Liked     string            `yaml:"liked_window"`
	Cuts      GapCuts           `yaml:"cuts"`
	Metrics   GapMetrics        `yaml:"metrics"`
	Forgotten []store.TrackPlay `yaml:"forgotten"`
	Frequent  []store.TrackPlay `yaml:"frequent_not_liked"`
	Long      []store.TrackPlay `yaml:"long"`
}

// GapData is the store content the gap page needs.
type GapData struct {
	Plays     []store.TrackPlay
	Forgotten []store.TrackPlay
	Frequent  []store.TrackPlay
	Long      []store.TrackPlay
	Likes     []store.LikedTrack
}

func LoadGap(src Source, w Window, cfg GapConfig, now time.Time) (*GapPage, error) {
	if err := cfg.Validate(w); err != nil {
		return nil, err
	}

	var data GapData
	lists := map[store.TrackList]*[]store.TrackPlay{
		store.ListPlays:            &data.Plays,
		store.ListForgotten:        &data.Forgotten,
		store.ListFrequentNotLiked: &data.Frequent,
		store.ListLong:             &data.Long,
	}
	for _, list := range store.TrackLists {
		rows, err := src.TrackPlays(list)
		if err != nil {
			return nil, fmt.Errorf("loading %s tracks: %w", list, err)
		}
		*lists[list] = rows
	}
	likes, err := src.Likes()
	if err != nil {
		return nil, fmt.Errorf("loading likes: %w", err)
	}
	data.Likes = likes
	return BuildGap(data, w, cfg, now)
}

func playCount(t store.TrackPlay) float64 { return float64(t.Count) }
func addedAt(t store.TrackPlay) transform.Timestamp { return t.AddedAt }
func likedAt(l store.LikedTrack) transform.Timestamp { return l.AddedAt }

// ResolveGapCuts computes the three thresholds over the play distribution.
func ResolveGapCuts(plays []store.TrackPlay, cfg GapConfig) (GapCuts, error) {
	counts := transform.Values(plays, playCount)
	var cuts GapCuts
	for _, c := range []struct {
		cut *transform.Cut
		q   float64
	}{
		{&cuts.Bottom, cfg.BottomPercent / 100},
		{&cuts.Top, 1 - cfg.TopPercent/100},
		{&cuts.LongTop, 1 - cfg.LongTopPercent/100},
	} {
		v, err := transform.QuantileLower(counts, c.q)
		if err != nil {
			return GapCuts{}, err
		}
		*c.cut = transform.Cut{Quantile: c.q, Value: v}
	}
	return cuts, nil
}

func byCountDesc(rows []store.TrackPlay) []store.TrackPlay {
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].Count > rows[b].Count })
	return rows
}

// LikedBounds converts the liked-date widgets to zoned bounds.
func (c GapConfig) LikedBounds(w Window) (transform.Timestamp, transform.Timestamp) {
	return transform.DayBounds(c.LikedStart, c.LikedEnd, w.loc())
}

// localizeTracks reads an all-naive table as wall clocks in loc. Tables that
// mix naive and zoned rows are left alone so the filters reject them.
func localizeTracks(rows []store.TrackPlay, loc *time.Location) []store.TrackPlay {
	if !transform.AllNaive(rows, addedAt) {
		return rows
	}
	out := make([]store.TrackPlay, len(rows))
	for i, r := range rows {
		r.AddedAt = r.AddedAt.Localize(loc)
		out[i] = r
	}
	return out
}

func localizeLikes(rows []store.LikedTrack, loc *time.Location) []store.LikedTrack {
	if !transform.AllNaive(rows, likedAt) {
		return rows
	}
	out := make([]store.LikedTrack, len(rows))
	for i, r := range rows {
		r.AddedAt = r.AddedAt.Localize(loc)
		out[i] = r
	}
	return out
}

// BuildGap assembles the gap page. Naive like dates are taken to be in the
// window's timezone.
func BuildGap(data GapData, w Window, cfg GapConfig, now time.Time) (*GapPage, error) {
	if err := cfg.Validate(w); err != nil {
		return nil, err
	}
	data.Forgotten = localizeTracks(data.Forgotten, w.loc())
	data.Long = localizeTracks(data.Long, w.loc())
	data.Likes = localizeLikes(data.Likes, w.loc())
	cuts, err := ResolveGapCuts(data.Plays, cfg)
	if err != nil {
		return nil, err
	}
	likedStart, likedEnd := cfg.LikedBounds(w)

	rare := transform.ApplyCut(data.Forgotten, playCount, cuts.Bottom, transform.AtMost)
	forgotten, err := transform.InWindow(rare, addedAt, likedStart, likedEnd)
	if err != nil {
		return nil, fmt.Errorf("filtering forgotten likes: %w", err)
	}
	frequent := transform.ApplyCut(data.Frequent, playCount, cuts.Top, transform.AtLeast)

	loved := transform.ApplyCut(data.Long, playCount, cuts.LongTop, transform.AtLeast)
	long, err := transform.AgeAtLeast(loved, addedAt, cfg.LongDays, transform.Zoned(now))
	if err != nil {
		return nil, fmt.Errorf("filtering long-liked tracks: %w", err)
	}
	// AgeAtLeast only keeps timestamps comparable with now, so the wall
	// clocks order correctly.
	sort.SliceStable(long, func(a, b int) bool { return long[a].AddedAt.Time.Before(long[b].AddedAt.Time) })

	metrics, err := gapMetrics(data, w, cuts, len(forgotten), len(frequent), likedStart, likedEnd)
	if err != nil {
		return nil, err
	}

	return &GapPage{
		Window:    w.String(),
		Liked:     fmt.Sprintf("%s ~ %s", cfg.LikedStart.Format(store.DateLayout), cfg.LikedEnd.Format(store.DateLayout)),
		Cuts:      cuts,
		Metrics:   metrics,
		Forgotten: byCountDesc(forgotten),
		Frequent:  byCountDesc(frequent),
		Long:      long,
	}, nil
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}

func gapMetrics(data GapData, w Window, cuts GapCuts, forgotten, frequent int, likedStart, likedEnd transform.Timestamp) (GapMetrics, error) {
	likedInAnalysis, err := transform.CountInWindow(data.Likes, likedAt, likedStart, likedEnd)
	if err != nil {
		return GapMetrics{}, fmt.Errorf("counting likes in liked window: %w", err)
	}
	start, end := w.Bounds()
	likedInData, err := transform.CountInWindow(data.Likes, likedAt, start, end)
	if err != nil {
		return GapMetrics{}, fmt.Errorf("counting likes in data window: %w", err)
	}

	tracks := map[string]bool{}
	for _, p := range data.Plays {
		tracks[p.TrackID] = true
	}

	return GapMetrics{
		ForgottenRatio: ratio(forgotten, likedInAnalysis),
		FrequentRatio:  ratio(frequent, transform.CountAtLeast(data.Plays, playCount, cuts.Top)),
		LikeRatio:      ratio(likedInData, len(tracks)),
	}, nil
}
