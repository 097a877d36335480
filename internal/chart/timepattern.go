package chart

import (
	"math"
	"time"

	"github.com/ademuri/listening-dashboard/internal/analysis"
)

type metricStyle struct {
	title    string
	colorBar string
	scale    Scale
	line     string
	fill     string
}

var metricStyles = map[analysis.Metric]metricStyle{
	analysis.TotalTime: {
		"Listening Duration by Time Slot", "Hours",
		Scale{"#D7E3F0", "#5C748D"}, "#67809A", "rgba(119, 136, 193, 0.2)",
	},
	analysis.SkipRate: {
		"Skip Rate by Time Slot", "Skip Rate",
		Scale{"#E0F1E0", "#689468"}, "#8FBC8F", "rgba(143, 188, 143, 0.2)",
	},
	analysis.NewTrackRatio: {
		"New Track Exploration by Time Slot", "New Track %",
		Scale{"#D9D3E5", "#695395"}, "#8267B8", "rgba(130, 103, 184, 0.2)",
	},
	analysis.ArtistConcentration: {
		"Artist Concentration by Time Slot", "Concentration",
		Scale{"#EEE6DE", "#CD853F"}, "#CD853F", "rgba(205, 133, 63, 0.2)",
	},
	analysis.RepeatRate: {
		"Repeat Rate by Time Slot", "Repeat Rate",
		Scale{"#EEE6DE", "#CD853F"}, "#CD853F", "rgba(205, 133, 63, 0.2)",
	},
	analysis.SessionTime: {
		"Session Time by Time Slot", "Hours",
		Scale{"#CED6DE", "#476f95"}, "#476f95", "rgba(71, 111, 149, 0.2)",
	},
}

const (
	firstSideColor  = "#91A2B3"
	secondSideColor = "#BADABA"
)

// SlotHeatmap draws a day by period grid, Sunday on top.
func SlotHeatmap(g analysis.Grid) Heatmap {
	style := metricStyles[g.Metric]
	h := Heatmap{
		Title:    style.title,
		ColorBar: style.colorBar,
		Unit:     g.Unit,
		X:        append([]string(nil), g.Periods...),
		Scale:    style.scale,
		XAxis:    "Time of Day",
		YAxis:    "Day of Week",
	}
	for d, row := range g.Values {
		h.Y = append(h.Y, time.Weekday(d).String())
		z := append([]float64(nil), row...)
		text := make([]string, len(row))
		for i, v := range row {
			if g.Unit == "%" {
				text[i] = percent(v)
			} else {
				text[i] = hours(v)
			}
		}
		h.Z = append(h.Z, z)
		h.Text = append(h.Text, text)
	}
	return h
}

// Sparklines draws one line per headline card.
func Sparklines(cards []analysis.Card) []Sparkline {
	out := make([]Sparkline, 0, len(cards))
	for _, c := range cards {
		style := metricStyles[c.Metric]
		title := c.Metric.Title()
		if c.Unit == "%" {
			title += " %"
		}
		out = append(out, Sparkline{
			Title:     title,
			Values:    c.Sparkline,
			Labels:    c.Labels,
			Reference: c.Reference,
			Color:     style.line,
			Fill:      style.fill,
		})
	}
	return out
}

// CompareBar groups the compared metrics of both sides, leaving headroom for
// the value labels.
func CompareBar(cmp analysis.Comparison) Bar {
	b := Bar{Orientation: Vertical, Mode: Grouped, AxisTitle: "%"}
	var labels []string
	for _, m := range analysis.ComparedMetrics {
		labels = append(labels, m.Title())
	}

	var top float64
	for i, side := range []analysis.Side{cmp.First, cmp.Second} {
		s := Series{Name: side.Label, Labels: labels, Color: firstSideColor}
		if i == 1 {
			s.Color = secondSideColor
		}
		for _, m := range analysis.ComparedMetrics {
			v := side.Values[m]
			s.Values = append(s.Values, v)
			s.Text = append(s.Text, percent(v))
			top = math.Max(top, v)
		}
		b.Series = append(b.Series, s)
	}
	b.Title = cmp.First.Label + " vs " + cmp.Second.Label
	b.Max = top * 1.15
	return b
}

type TimePatternCharts struct {
	Sparklines []Sparkline `yaml:"sparklines"`
	Comparison Bar         `yaml:"comparison"`
	Heatmap    Heatmap     `yaml:"heatmap"`
}

func TimePattern(page *analysis.TimePatternPage) TimePatternCharts {
	return TimePatternCharts{
		Sparklines: Sparklines(page.Cards),
		Comparison: CompareBar(page.Comparison),
		Heatmap:    SlotHeatmap(page.Heatmap),
	}
}
