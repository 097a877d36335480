// Package chart turns dashboard pages into chart specifications: plain data
// a renderer can draw without knowing how the numbers were derived.
package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ademuri/listening-dashboard/internal/analysis"
)

// Scale is a two-stop continuous colour scale.
type Scale struct {
	Low  string `yaml:"low"`
	High string `yaml:"high"`
}

// Orientation of a bar chart.
type Orientation string

const (
	Horizontal Orientation = "h"
	Vertical   Orientation = "v"
)

// BarMode says how several series share a category.
type BarMode string

const (
	Single  BarMode = "single"
	Grouped BarMode = "group"
	Stacked BarMode = "stack"
)

// Series is one trace of a bar chart. Text, when set, is aligned with Values.
type Series struct {
	Name   string    `yaml:"name"`
	Labels []string  `yaml:"labels"`
	Values []float64 `yaml:"values"`
	Text   []string  `yaml:"text,omitempty"`
	Color  string    `yaml:"color,omitempty"`
	Colors []string  `yaml:"colors,omitempty"`
}

type Bar struct {
	Title       string      `yaml:"title"`
	Orientation Orientation `yaml:"orientation"`
	Mode        BarMode     `yaml:"mode"`
	AxisTitle   string      `yaml:"axis_title,omitempty"`
	// Max is the value axis limit; 0 lets the renderer choose.
	Max    float64  `yaml:"max,omitempty"`
	Series []Series `yaml:"series"`
}

// Heatmap is a labelled matrix. Z[i][j] is the cell at row Y[i] and column
// X[j]; NaN marks a missing cell and has empty Text.
type Heatmap struct {
	Title    string      `yaml:"title"`
	ColorBar string      `yaml:"color_bar"`
	Unit     string      `yaml:"unit"`
	X        []string    `yaml:"x"`
	Y        []string    `yaml:"y"`
	Z        [][]float64 `yaml:"z"`
	Text     [][]string  `yaml:"text"`
	Scale    Scale       `yaml:"scale"`
	XAxis    string      `yaml:"x_axis"`
	YAxis    string      `yaml:"y_axis"`
}

type Sparkline struct {
	Title     string    `yaml:"title"`
	Values    []float64 `yaml:"values"`
	Labels    []string  `yaml:"labels"`
	Reference float64   `yaml:"reference"`
	Color     string    `yaml:"color"`
	Fill      string    `yaml:"fill"`
}

type TreemapNode struct {
	Label string  `yaml:"label"`
	Value float64 `yaml:"value"`
	Hover string  `yaml:"hover"`
}

// Treemap areas and colours both follow Value.
type Treemap struct {
	Title  string        `yaml:"title"`
	Nodes  []TreemapNode `yaml:"nodes"`
	Scale  Scale         `yaml:"scale"`
	Border string        `yaml:"border"`
}

type ScatterPoint struct {
	X     time.Time `yaml:"x"`
	Y     string    `yaml:"y"`
	Color float64   `yaml:"color"`
	Hover string    `yaml:"hover"`
}

type Scatter struct {
	Title  string         `yaml:"title"`
	XAxis  string         `yaml:"x_axis"`
	YAxis  string         `yaml:"y_axis"`
	Points []ScatterPoint `yaml:"points"`
	Scale  Scale          `yaml:"scale"`
}

type Pie struct {
	Title  string    `yaml:"title"`
	Labels []string  `yaml:"labels"`
	Values []float64 `yaml:"values"`
	Colors []string  `yaml:"colors"`
	// Hole is the donut hole as a fraction of the radius.
	Hole float64 `yaml:"hole"`
}

// percent renders a fraction as "12.3%".
func percent(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

// hours renders a value as "1.2 hrs".
func hours(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.1f hrs", v)
}

// blues is a sequential palette, lightest first.
var blues = []string{
	"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6",
	"#4292c6", "#2171b5", "#08519c", "#08306b",
}

// cycle returns n colours from palette, wrapping around.
func cycle(palette []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = palette[i%len(palette)]
	}
	return out
}

// CalendarScheme is a named calendar colour scale.
type CalendarScheme string

const (
	SchemeBlue   CalendarScheme = "blue"
	SchemeGreen  CalendarScheme = "green"
	SchemePurple CalendarScheme = "purple"
	SchemeWarm   CalendarScheme = "warm"
)

var calendarScales = map[CalendarScheme]Scale{
	SchemeBlue:   {"#e9eff1", "#3B5D7D"},
	SchemeGreen:  {"#dce6dd", "#466E48"},
	SchemePurple: {"#e8dcea", "#6b487a"},
	SchemeWarm:   {"#e6e3de", "#AC5C30"},
}

// CalendarSchemes lists the schemes, default first.
var CalendarSchemes = []CalendarScheme{SchemeBlue, SchemeGreen, SchemePurple, SchemeWarm}

func ParseCalendarScheme(s string) (CalendarScheme, error) {
	for _, c := range CalendarSchemes {
		if strings.EqualFold(string(c), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: calendar scheme %q", analysis.ErrInvalidSetting, s)
}

func (c CalendarScheme) Scale() Scale {
	if s, ok := calendarScales[c]; ok {
		return s
	}
	return calendarScales[SchemeBlue]
}
