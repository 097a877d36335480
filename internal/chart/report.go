package chart

import "github.com/ademuri/listening-dashboard/internal/analysis"

// Charts holds the chart specifications of every page. The gap page has
// cards and lists only.
type Charts struct {
	Overview    *OverviewCharts    `yaml:"overview,omitempty"`
	TimePattern *TimePatternCharts `yaml:"time_pattern,omitempty"`
	Albums      *AlbumsCharts      `yaml:"albums,omitempty"`
}

// ForReport builds the charts of every page present in r.
func ForReport(r *analysis.Report, scheme CalendarScheme) Charts {
	var c Charts
	if r.Overview != nil {
		o := Overview(r.Overview, scheme)
		c.Overview = &o
	}
	if r.TimePattern != nil {
		t := TimePattern(r.TimePattern)
		c.TimePattern = &t
	}
	if r.Albums != nil {
		a := Albums(r.Albums)
		c.Albums = &a
	}
	return c
}
