package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/ademuri/listening-dashboard/internal/store"
)

const (
	DefaultTopN = 10
	MinTopN     = 5
	MaxTopN     = 100
)

type OverviewConfig struct {
	TopKind store.TopKind
	TopN    int
}

func DefaultOverviewConfig() OverviewConfig {
	return OverviewConfig{TopKind: store.TopArtist, TopN: DefaultTopN}
}

func (c OverviewConfig) Validate() error {
	if _, err := store.ParseTopKind(string(c.TopKind)); err != nil {
		return err
	}
	if c.TopN < MinTopN || c.TopN > MaxTopN {
		return invalidSetting("top n %d outside [%d, %d]", c.TopN, MinTopN, MaxTopN)
	}
	return nil
}

type OverviewPage struct {
	Window     string             `yaml:"window"`
	Summary    store.Summary      `yaml:"summary"`
	Context    store.ContextTexts `yaml:"context"`
	Highlights store.Highlights   `yaml:"highlights"`
	Contexts   []ContextShare     `yaml:"contexts"`
	TopKind    store.TopKind      `yaml:"top_kind"`
	Top        []TopRow           `yaml:"top"`
	Calendar   Calendar           `yaml:"calendar"`
}

// ContextShare is a context type's share of all plays.
type ContextShare struct {
	ContextType string  `yaml:"context_type"`
	Count       int     `yaml:"count"`
	Share       float64 `yaml:"share"`
}

type TopRow struct {
	Rank  int     `yaml:"rank"`
	Name  string  `yaml:"name"`
	Hours float64 `yaml:"hours"`
}

// Calendar is one dot per day, laid out in week columns and weekday rows.
type Calendar struct {
	Start  time.Time      `yaml:"start"`
	End    time.Time      `yaml:"end"`
	Cells  []CalendarCell `yaml:"cells"`
	Months []MonthMarker  `yaml:"months"`
}

// CalendarCell is one day. Week counts columns from the week holding
// Calendar.Start and Weekday is the row, Monday being 0.
type CalendarCell struct {
	Day     time.Time `yaml:"day"`
	Week    int       `yaml:"week"`
	Weekday int       `yaml:"weekday"`
	Hours   float64   `yaml:"hours"`
}

// MonthMarker labels the first week column of a month.
type MonthMarker struct {
	Week  int        `yaml:"week"`
	Month time.Month `yaml:"month"`
}

// OverviewData is the store content the overview page needs.
type OverviewData struct {
	Summary    store.Summary
	Texts      store.ContextTexts
	Contexts   []store.ContextCount
	Daily      []store.DailyDuration
	Top        []store.TopEntry
	Highlights store.Highlights
}

// LoadOverview reads the overview tables and builds the page.
func LoadOverview(src Source, w Window, cfg OverviewConfig) (*OverviewPage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var data OverviewData
	var err error
	if data.Summary, err = src.Summary(); err != nil {
		return nil, fmt.Errorf("loading summary: %w", err)
	}
	if data.Texts, err = src.ContextTexts(); err != nil {
		return nil, fmt.Errorf("loading context texts: %w", err)
	}
	if data.Contexts, err = src.ContextCounts(); err != nil {
		return nil, fmt.Errorf("loading contexts: %w", err)
	}
	if data.Daily, err = src.DailyDurations(); err != nil {
		return nil, fmt.Errorf("loading daily durations: %w", err)
	}
	if data.Top, err = src.TopEntries(cfg.TopKind); err != nil {
		return nil, fmt.Errorf("loading top %ss: %w", cfg.TopKind, err)
	}
	if data.Highlights, err = src.Highlights(); err != nil {
		return nil, fmt.Errorf("loading highlights: %w", err)
	}
	return BuildOverview(data, w, cfg)
}

func BuildOverview(data OverviewData, w Window, cfg OverviewConfig) (*OverviewPage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start, end := HeatmapRange(w.Start, w.End)
	return &OverviewPage{
		Window:     w.String(),
		Summary:    data.Summary,
		Context:    data.Texts,
		Highlights: data.Highlights,
		Contexts:   ContextShares(data.Contexts),
		TopKind:    cfg.TopKind,
		Top:        TopN(data.Top, cfg.TopN),
		Calendar:   BuildCalendar(data.Daily, start, end),
	}, nil
}

// ContextShares converts counts to shares of the total. All shares are 0 when
// there are no plays.
func ContextShares(rows []store.ContextCount) []ContextShare {
	total := 0
	for _, r := range rows {
		total += r.Count
	}
	out := make([]ContextShare, 0, len(rows))
	for _, r := range rows {
		share := 0.0
		if total > 0 {
			share = float64(r.Count) / float64(total)
		}
		out = append(out, ContextShare{ContextType: r.ContextType, Count: r.Count, Share: share})
	}
	return out
}

// TopN keeps the first n entries of a ranking, in hours rounded to 2 places.
func TopN(entries []store.TopEntry, n int) []TopRow {
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]TopRow, 0, n)
	for i, e := range entries[:n] {
		out = append(out, TopRow{
			Rank:  i + 1,
			Name:  e.Name,
			Hours: math.Round(e.Duration/3600*100) / 100,
		})
	}
	return out
}

// HeatmapRange picks the calendar span for a data window. A window shorter
// than a year within one calendar year is padded to that whole year. A short
// window crossing a year boundary ends at the end of its last month and
// starts 365 days before that, or at the window start if earlier. Longer
// windows are kept as they are.
func HeatmapRange(start, end time.Time) (time.Time, time.Time) {
	days := int(end.Sub(start).Hours() / 24)
	if days >= 365 {
		return start, end
	}
	if start.Year() == end.Year() {
		return time.Date(start.Year(), time.January, 1, 0, 0, 0, 0, time.UTC),
			time.Date(end.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	}

	// Day 0 of the next month is the last day of this one.
	heatEnd := time.Date(end.Year(), end.Month()+1, 0, 0, 0, 0, 0, time.UTC)
	heatStart := heatEnd.AddDate(0, 0, -365)
	if heatStart.After(start) {
		heatStart = start
	}
	return heatStart, heatEnd
}

// mondayIndex maps time.Weekday to a Monday-first row.
func mondayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// BuildCalendar lays out every day in [start, end]. Days without listening
// get 0 hours.
func BuildCalendar(daily []store.DailyDuration, start, end time.Time) Calendar {
	hours := make(map[string]float64, len(daily))
	for _, d := range daily {
		hours[d.Day.Format(store.DateLayout)] += d.Duration / 3600
	}

	cal := Calendar{Start: start, End: end}
	firstMonday := start.AddDate(0, 0, -mondayIndex(start.Weekday()))
	monthWeek := map[int]int{}
	var monthOrder []int
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		week := int(day.Sub(firstMonday).Hours()/24) / 7
		cal.Cells = append(cal.Cells, CalendarCell{
			Day:     day,
			Week:    week,
			Weekday: mondayIndex(day.Weekday()),
			Hours:   hours[day.Format(store.DateLayout)],
		})

		key := day.Year()*100 + int(day.Month())
		if _, ok := monthWeek[key]; !ok {
			monthWeek[key] = week
			monthOrder = append(monthOrder, key)
		}
	}

	// Two months starting in one week column share it; the later one wins.
	for i, key := range monthOrder {
		week := monthWeek[key]
		if i+1 < len(monthOrder) && monthWeek[monthOrder[i+1]] == week {
			continue
		}
		cal.Months = append(cal.Months, MonthMarker{Week: week, Month: time.Month(key % 100)})
	}
	return cal
}

// FormatDuration renders seconds as "N s", "N mins" or "N.N hrs".
func FormatDuration(seconds float64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%d s", int(math.Round(seconds)))
	case seconds < 3600:
		return fmt.Sprintf("%d mins", int(math.Round(seconds/60)))
	default:
		return fmt.Sprintf("%.1f hrs", seconds/3600)
	}
}
