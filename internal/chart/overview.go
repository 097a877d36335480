package chart

import (
	"fmt"

	"github.com/ademuri/listening-dashboard/internal/analysis"
	"github.com/ademuri/listening-dashboard/internal/store"
)

var topColors = map[store.TopKind]string{
	store.TopArtist: "#605B84",
	store.TopTrack:  "#5B7184",
	store.TopAlbum:  "#84785B",
}

var weekdayRows = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// CalendarDot is one day of a calendar heatmap.
type CalendarDot struct {
	Day     string  `yaml:"day"`
	Week    int     `yaml:"week"`
	Weekday int     `yaml:"weekday"`
	Hours   float64 `yaml:"hours"`
	Hover   string  `yaml:"hover"`
}

type MonthLabel struct {
	Week  int    `yaml:"week"`
	Label string `yaml:"label"`
}

// CalendarChart is a dot per day in week columns, rows Monday first.
type CalendarChart struct {
	Title  string        `yaml:"title"`
	Rows   []string      `yaml:"rows"`
	Dots   []CalendarDot `yaml:"dots"`
	Months []MonthLabel  `yaml:"months"`
	Scale  Scale         `yaml:"scale"`
}

func Calendar(cal analysis.Calendar, scheme CalendarScheme) CalendarChart {
	c := CalendarChart{
		Title: "Listening Calendar Heatmap",
		Rows:  weekdayRows,
		Scale: scheme.Scale(),
	}
	for _, cell := range cal.Cells {
		day := cell.Day.Format(store.DateLayout)
		c.Dots = append(c.Dots, CalendarDot{
			Day:     day,
			Week:    cell.Week,
			Weekday: cell.Weekday,
			Hours:   cell.Hours,
			Hover:   fmt.Sprintf("%s: %.1f hrs", day, cell.Hours),
		})
	}
	for _, m := range cal.Months {
		c.Months = append(c.Months, MonthLabel{Week: m.Week, Label: m.Month.String()[:3]})
	}
	return c
}

func topTitle(kind store.TopKind, n int) string {
	return fmt.Sprintf("Top %d %ss", n, kind)
}

// Top is a horizontal bar per ranked entry, best first.
func Top(kind store.TopKind, rows []analysis.TopRow) Bar {
	s := Series{Name: string(kind), Color: topColors[kind]}
	for _, r := range rows {
		s.Labels = append(s.Labels, r.Name)
		s.Values = append(s.Values, r.Hours)
		s.Text = append(s.Text, fmt.Sprintf("%.2f", r.Hours))
	}
	return Bar{
		Title:       topTitle(kind, len(rows)),
		Orientation: Horizontal,
		Mode:        Single,
		AxisTitle:   "Listening Hours",
		Series:      []Series{s},
	}
}

// ContextPie is a donut of play counts per context type.
func ContextPie(shares []analysis.ContextShare) Pie {
	p := Pie{Title: "Listening Context", Colors: cycle(blues, len(shares)), Hole: 0.4}
	for _, s := range shares {
		p.Labels = append(p.Labels, s.ContextType)
		p.Values = append(p.Values, float64(s.Count))
	}
	return p
}

// ContextBar is a single stacked bar with one segment per context type.
func ContextBar(shares []analysis.ContextShare) Bar {
	b := Bar{Title: "Listening Context", Orientation: Horizontal, Mode: Stacked}
	colors := cycle(blues, len(shares))
	for i, s := range shares {
		b.Series = append(b.Series, Series{
			Name:   s.ContextType,
			Labels: []string{""},
			Values: []float64{float64(s.Count)},
			Text:   []string{fmt.Sprintf("%s %s", s.ContextType, percent(s.Share))},
			Color:  colors[i],
		})
	}
	return b
}

type OverviewCharts struct {
	Calendar   CalendarChart `yaml:"calendar"`
	Top        Bar           `yaml:"top"`
	Context    Pie           `yaml:"context"`
	ContextBar Bar           `yaml:"context_bar"`
}

func Overview(page *analysis.OverviewPage, scheme CalendarScheme) OverviewCharts {
	return OverviewCharts{
		Calendar:   Calendar(page.Calendar, scheme),
		Top:        Top(page.TopKind, page.Top),
		Context:    ContextPie(page.Contexts),
		ContextBar: ContextBar(page.Contexts),
	}
}
