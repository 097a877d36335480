package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/ademuri/listening-dashboard/internal/transform"
)

// Metric is a column of the time-pattern cube.
type Metric string

const (
	TotalTime           Metric = "total_time"
	SkipRate            Metric = "avg_skip_rate"
	NewTrackRatio       Metric = "new_track_ratio"
	SessionTime         Metric = "avg_session_time"
	ArtistConcentration Metric = "artist_concentration"
	RepeatRate          Metric = "repeat_rate"
)

// Metrics lists every metric.
var Metrics = []Metric{TotalTime, SkipRate, NewTrackRatio, SessionTime, ArtistConcentration, RepeatRate}

// HeatmapMetrics are the metrics offered for the heatmap, in menu order.
var HeatmapMetrics = []Metric{TotalTime, SkipRate, NewTrackRatio, ArtistConcentration, RepeatRate}

// ComparedMetrics are the bars of a mode comparison, in display order.
var ComparedMetrics = []Metric{RepeatRate, SkipRate, NewTrackRatio, ArtistConcentration}

func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: metric %q", transform.ErrUnknownDimensionKey, s)
}

// Value reads m from a row.
func (m Metric) Value(r store.SlotRow) float64 {
	switch m {
	case TotalTime:
		return r.TotalTime
	case SkipRate:
		return r.AvgSkipRate
	case NewTrackRatio:
		return r.NewTrackRatio
	case SessionTime:
		return r.AvgSessionTime
	case ArtistConcentration:
		return r.ArtistConcentration
	case RepeatRate:
		return r.RepeatRate
	}
	return 0
}

// LowerIsBetter reports whether rank 1 goes to the smallest value.
func (m Metric) LowerIsBetter() bool {
	return m == SkipRate || m == ArtistConcentration
}

// IsRatio reports whether m is a fraction in [0, 1].
func (m Metric) IsRatio() bool {
	return m != TotalTime && m != SessionTime
}

func (m Metric) Title() string {
	switch m {
	case TotalTime:
		return "Duration"
	case SkipRate:
		return "Skip Rate"
	case NewTrackRatio:
		return "New Track Ratio"
	case SessionTime:
		return "Session Time"
	case ArtistConcentration:
		return "Artist Concentration"
	case RepeatRate:
		return "Repeat Rate"
	}
	return string(m)
}

func slotWeight(r store.SlotRow) float64 { return r.TotalTime }

var dayNames = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// DayName is the short name of d.
func DayName(d time.Weekday) string {
	return dayNames[d]
}

// ParseDayName accepts a short day name ("Mon") or a full one ("Monday").
func ParseDayName(s string) (time.Weekday, error) {
	for i, n := range dayNames {
		if strings.EqualFold(s, n) || strings.EqualFold(s, time.Weekday(i).String()) {
			return time.Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("%w: day %q", transform.ErrUnknownDimensionKey, s)
}

// SlotLabel names a detail slot, e.g. "Sun Late Night".
func SlotLabel(r store.SlotRow) string {
	if !r.IsDetail() {
		return ""
	}
	return DayName(*r.Day) + " " + string(*r.Period)
}

// RankedSlot is a detail slot with its dense rank per metric.
type RankedSlot struct {
	Row   store.SlotRow  `yaml:"row"`
	Label string         `yaml:"label"`
	Ranks map[Metric]int `yaml:"ranks"`
}

// RankSlots ranks the detail slots on every metric and returns them in week
// order: by day, then by period.
func RankSlots(rows []store.SlotRow) []RankedSlot {
	var detail []store.SlotRow
	for _, r := range rows {
		if r.IsDetail() {
			detail = append(detail, r)
		}
	}

	ranked := make([]RankedSlot, len(detail))
	for i, r := range detail {
		ranked[i] = RankedSlot{Row: r, Label: SlotLabel(r), Ranks: map[Metric]int{}}
	}
	for _, m := range Metrics {
		ranks := transform.DenseRank(detail, m.Value, m.LowerIsBetter())
		for i, rank := range ranks {
			ranked[i].Ranks[m] = rank
		}
	}

	sort.SliceStable(ranked, func(a, b int) bool {
		ra, rb := ranked[a].Row, ranked[b].Row
		if *ra.Day != *rb.Day {
			return *ra.Day < *rb.Day
		}
		return ra.Period.Order() < rb.Period.Order()
	})
	return ranked
}

// Baseline returns the row with both dimensions null, or a zero row.
func Baseline(rows []store.SlotRow) store.SlotRow {
	for _, r := range rows {
		if r.IsBaseline() {
			return r
		}
	}
	return store.SlotRow{}
}

// Card is a headline number with a sparkline over the detail slots. Value is
// the baseline figure in hours or percent. Sparkline is aligned with Labels
// and Reference is drawn as a flat line behind it.
type Card struct {
	Metric    Metric    `yaml:"metric"`
	Value     float64   `yaml:"value"`
	Unit      string    `yaml:"unit"`
	Best      []string  `yaml:"best"`
	Sparkline []float64 `yaml:"sparkline"`
	Labels    []string  `yaml:"labels"`
	Reference float64   `yaml:"reference"`
}

// HeadlineMetrics are the time-pattern cards in display order.
var HeadlineMetrics = []Metric{TotalTime, SkipRate, NewTrackRatio, ArtistConcentration}

// Cards builds the headline cards. Durations are shown in hours and ratios
// in percent.
func Cards(rows []store.SlotRow, ranked []RankedSlot) []Card {
	base := Baseline(rows)
	detail := make([]store.SlotRow, len(ranked))
	labels := make([]string, len(ranked))
	for i, r := range ranked {
		detail[i] = r.Row
		labels[i] = r.Label
	}

	cards := make([]Card, 0, len(HeadlineMetrics))
	for _, m := range HeadlineMetrics {
		scale, unit := 100.0, "%"
		if !m.IsRatio() {
			scale, unit = 1.0/3600, "hrs"
		}

		card := Card{
			Metric:    m,
			Value:     m.Value(base) * scale,
			Unit:      unit,
			Labels:    labels,
			Sparkline: make([]float64, len(detail)),
		}
		var sum float64
		for i, r := range detail {
			card.Sparkline[i] = m.Value(r) * scale
			sum += card.Sparkline[i]
		}
		ranks := make([]int, len(ranked))
		for i, r := range ranked {
			ranks[i] = r.Ranks[m]
		}
		for _, i := range transform.Best(ranks) {
			card.Best = append(card.Best, labels[i])
		}

		switch m {
		case TotalTime:
			if len(detail) > 0 {
				card.Reference = sum / float64(len(detail))
			}
		case ArtistConcentration:
			card.Reference = transform.WeightedAverage(detail, m.Value, slotWeight) * scale
		default:
			card.Reference = m.Value(base) * scale
		}
		cards = append(cards, card)
	}
	return cards
}

// CompareMode picks which roll-up rows a comparison uses.
type CompareMode string

const (
	ModeWeekdayWeekend CompareMode = "weekday-weekend"
	ModePeriod         CompareMode = "period"
	ModeDay            CompareMode = "day"
)

// Others as the second side of a comparison averages everything but the
// first side.
const Others = "others"

const (
	weekdayLabel = "Weekday"
	weekendLabel = "Weekend"
)

func ParseCompareMode(s string) (CompareMode, error) {
	switch CompareMode(s) {
	case ModeWeekdayWeekend, ModePeriod, ModeDay:
		return CompareMode(s), nil
	}
	return "", fmt.Errorf("%w: comparison mode %q", transform.ErrUnknownDimensionKey, s)
}

// Side is the duration-weighted average of the compared metrics over a
// selection of rows.
type Side struct {
	Label  string             `yaml:"label"`
	Rows   int                `yaml:"rows"`
	Values map[Metric]float64 `yaml:"values"`
}

// Comparison contrasts two sides. Same is set when both name one selection.
type Comparison struct {
	Mode   CompareMode `yaml:"mode"`
	First  Side        `yaml:"first"`
	Second Side        `yaml:"second"`
	Same   bool        `yaml:"same,omitempty"`
}

func average(rows []store.SlotRow, label string) Side {
	side := Side{Label: label, Rows: len(rows), Values: map[Metric]float64{}}
	for _, m := range ComparedMetrics {
		side.Values[m] = transform.WeightedAverage(rows, m.Value, slotWeight)
	}
	return side
}

func selectRows(rows []store.SlotRow, keep func(store.SlotRow) bool) []store.SlotRow {
	var out []store.SlotRow
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Compare contrasts two selections of the cube. Weekday/weekend ignores first
// and second. The other modes take a period or day name for first, and for
// second either a name or Others.
func Compare(rows []store.SlotRow, mode CompareMode, first, second string) (Comparison, error) {
	cmp := Comparison{Mode: mode}
	switch mode {
	case ModeWeekdayWeekend:
		dayOnly := selectRows(rows, store.SlotRow.IsDayOnly)
		weekday := selectRows(dayOnly, func(r store.SlotRow) bool { return *r.Day >= time.Monday && *r.Day <= time.Friday })
		weekend := selectRows(dayOnly, func(r store.SlotRow) bool { return *r.Day == time.Sunday || *r.Day == time.Saturday })
		cmp.First = average(weekday, weekdayLabel)
		cmp.Second = average(weekend, weekendLabel)
		return cmp, nil

	case ModePeriod:
		p1, err := store.ParsePeriod(first)
		if err != nil {
			return Comparison{}, err
		}
		periodOnly := selectRows(rows, store.SlotRow.IsPeriodOnly)
		period := func(r store.SlotRow) store.Period { return *r.Period }
		cmp.First = average(selectRows(periodOnly, func(r store.SlotRow) bool { return period(r) == p1 }), string(p1))
		if strings.EqualFold(second, Others) {
			cmp.Second = othersSide(periodOnly, period, p1, "Other periods (avg)")
			return cmp, nil
		}
		p2, err := store.ParsePeriod(second)
		if err != nil {
			return Comparison{}, err
		}
		cmp.Second = average(selectRows(periodOnly, func(r store.SlotRow) bool { return period(r) == p2 }), string(p2))
		cmp.Same = p1 == p2
		return cmp, nil

	case ModeDay:
		d1, err := ParseDayName(first)
		if err != nil {
			return Comparison{}, err
		}
		dayOnly := selectRows(rows, store.SlotRow.IsDayOnly)
		day := func(r store.SlotRow) time.Weekday { return *r.Day }
		cmp.First = average(selectRows(dayOnly, func(r store.SlotRow) bool { return day(r) == d1 }), DayName(d1))
		if strings.EqualFold(second, Others) {
			cmp.Second = othersSide(dayOnly, day, d1, "Other days (avg)")
			return cmp, nil
		}
		d2, err := ParseDayName(second)
		if err != nil {
			return Comparison{}, err
		}
		cmp.Second = average(selectRows(dayOnly, func(r store.SlotRow) bool { return day(r) == d2 }), DayName(d2))
		cmp.Same = d1 == d2
		return cmp, nil
	}
	return Comparison{}, fmt.Errorf("%w: comparison mode %q", transform.ErrUnknownDimensionKey, mode)
}

// othersSide averages every row whose key is not exclude. When exclude has no
// rows the side is empty.
func othersSide[K comparable](rows []store.SlotRow, key func(store.SlotRow) K, exclude K, label string) Side {
	side := Side{Label: label, Values: map[Metric]float64{}}
	for _, r := range rows {
		if key(r) != exclude {
			side.Rows++
		}
	}
	for _, m := range ComparedMetrics {
		avg, ok := transform.ExcludeAndAverage(rows, key, exclude, m.Value, slotWeight)
		if !ok {
			side.Rows = 0
		}
		side.Values[m] = avg
	}
	return side
}

// Grid is the 7 x 4 day-by-period matrix of one metric. Missing slots are NaN.
type Grid struct {
	Metric  Metric      `yaml:"metric"`
	Unit    string      `yaml:"unit"`
	Days    []string    `yaml:"days"`
	Periods []string    `yaml:"periods"`
	Values  [][]float64 `yaml:"values"`
}

// SlotGrid pivots the detail slots. Durations are converted to hours.
func SlotGrid(rows []store.SlotRow, m Metric) Grid {
	g := Grid{Metric: m, Unit: "%", Days: append([]string(nil), dayNames...)}
	if !m.IsRatio() {
		g.Unit = "hrs"
	}
	for _, p := range store.Periods {
		g.Periods = append(g.Periods, string(p))
	}

	g.Values = make([][]float64, len(dayNames))
	for d := range g.Values {
		g.Values[d] = make([]float64, len(store.Periods))
		for p := range g.Values[d] {
			g.Values[d][p] = math.NaN()
		}
	}
	for _, r := range rows {
		if !r.IsDetail() {
			continue
		}
		v := m.Value(r)
		if !m.IsRatio() {
			v /= 3600
		}
		g.Values[*r.Day][r.Period.Order()] = v
	}
	return g
}

type TimePatternConfig struct {
	Mode    CompareMode
	First   string
	Second  string
	Heatmap Metric
}

func DefaultTimePatternConfig() TimePatternConfig {
	return TimePatternConfig{Mode: ModeWeekdayWeekend, Heatmap: TotalTime}
}

type TimePatternPage struct {
	Window     string       `yaml:"window"`
	Cards      []Card       `yaml:"cards"`
	Slots      []RankedSlot `yaml:"slots"`
	Comparison Comparison   `yaml:"comparison"`
	Heatmap    Grid         `yaml:"heatmap"`
}

func LoadTimePattern(src Source, w Window, cfg TimePatternConfig) (*TimePatternPage, error) {
	rows, err := src.Slots()
	if err != nil {
		return nil, fmt.Errorf("loading time slots: %w", err)
	}
	return BuildTimePattern(rows, w, cfg)
}

func BuildTimePattern(rows []store.SlotRow, w Window, cfg TimePatternConfig) (*TimePatternPage, error) {
	if _, err := ParseMetric(string(cfg.Heatmap)); err != nil {
		return nil, err
	}
	cmp, err := Compare(rows, cfg.Mode, cfg.First, cfg.Second)
	if err != nil {
		return nil, err
	}

	ranked := RankSlots(rows)
	return &TimePatternPage{
		Window:     w.String(),
		Cards:      Cards(rows, ranked),
		Slots:      ranked,
		Comparison: cmp,
		Heatmap:    SlotGrid(rows, cfg.Heatmap),
	}, nil
}
