/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ademuri/listening-dashboard/internal/analysis"
	"github.com/ademuri/listening-dashboard/internal/chart"
	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var timePatternMode string
var timePatternFirst string
var timePatternSecond string
var timePatternHeatmap string

var timePatternCmd = &cobra.Command{
	Use:   "time-pattern",
	Short: "Shows listening habits by weekday and time of day",
	Long: `Ranks the 28 day and period slots, compares two selections of them and
draws a heatmap of one metric. Modes: weekday-weekend, period (--first
"Morning" --second others) and day (--first Mon --second Sat).`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := timePatternConfig(timePatternMode, timePatternFirst, timePatternSecond, timePatternHeatmap)
		if err == nil {
			err = printTimePattern(os.Stdout, viper.GetString("database"), viper.GetString("format"), cfg)
		}
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(timePatternCmd)

	timePatternCmd.Flags().StringVar(&timePatternMode, "mode", string(analysis.ModeWeekdayWeekend), "comparison: weekday-weekend, period or day")
	timePatternCmd.Flags().StringVar(&timePatternFirst, "first", "", "period or day name to compare")
	timePatternCmd.Flags().StringVar(&timePatternSecond, "second", analysis.Others, "period or day name to compare against, or 'others'")
	timePatternCmd.Flags().StringVar(&timePatternHeatmap, "heatmap", string(analysis.TotalTime), "heatmap metric")
}

// timePatternConfig validates the flags. An empty first side defaults to the
// first period or Monday.
func timePatternConfig(mode, first, second, heatmap string) (analysis.TimePatternConfig, error) {
	cfg := analysis.TimePatternConfig{First: first, Second: second}
	var err error
	if cfg.Mode, err = analysis.ParseCompareMode(mode); err != nil {
		return cfg, err
	}
	if cfg.Heatmap, err = analysis.ParseMetric(heatmap); err != nil {
		return cfg, err
	}
	if cfg.First == "" {
		switch cfg.Mode {
		case analysis.ModePeriod:
			cfg.First = string(store.Periods[0])
		case analysis.ModeDay:
			cfg.First = analysis.DayName(time.Monday)
		}
	}
	return cfg, nil
}

type timePatternDoc struct {
	Page   *analysis.TimePatternPage `yaml:"page"`
	Charts chart.TimePatternCharts   `yaml:"charts"`
}

func printTimePattern(out io.Writer, dbPath, format string, cfg analysis.TimePatternConfig) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	w, err := loadWindow(nil)
	if err != nil {
		return err
	}

	s, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("printTimePattern: %w", err)
	}
	defer s.Close()

	page, err := analysis.LoadTimePattern(s, w, cfg)
	if err != nil {
		return fmt.Errorf("printTimePattern: %w", err)
	}
	log.Info("built time pattern", "slots", len(page.Slots), "mode", cfg.Mode)

	doc := timePatternDoc{Page: page, Charts: chart.TimePattern(page)}
	return printPage(out, format, doc, timePatternTables(page))
}

func cardValue(v float64, unit string) string {
	if unit == "%" {
		return fmt.Sprintf("%.1f%%", v)
	}
	return fmt.Sprintf("%.1f %s", v, unit)
}

func timePatternTables(page *analysis.TimePatternPage) []Analysis {
	cards := Analysis{
		title:   "Headline " + page.Window,
		results: [][]string{{"Metric", "Overall", "Best slot", "Slot average"}},
	}
	for _, c := range page.Cards {
		best := strings.Join(c.Best, ", ")
		if best == "" {
			best = "-"
		}
		cards.results = append(cards.results, []string{
			c.Metric.Title(), cardValue(c.Value, c.Unit), best, cardValue(c.Reference, c.Unit),
		})
	}

	cmp := page.Comparison
	comparison := Analysis{
		title:   cmp.First.Label + " vs " + cmp.Second.Label,
		results: [][]string{{"Metric", cmp.First.Label, cmp.Second.Label}},
	}
	for _, m := range analysis.ComparedMetrics {
		comparison.results = append(comparison.results, []string{m.Title(), pct(cmp.First.Values[m]), pct(cmp.Second.Values[m])})
	}
	if cmp.Same {
		comparison.summary = "Both sides are the same selection."
	}

	g := page.Heatmap
	heatmap := Analysis{
		title:   g.Metric.Title() + " by time slot",
		results: [][]string{append([]string{""}, g.Periods...)},
	}
	for d, row := range g.Values {
		line := []string{g.Days[d]}
		for _, v := range row {
			if g.Unit == "%" {
				line = append(line, pct(v))
			} else {
				line = append(line, hrs(v))
			}
		}
		heatmap.results = append(heatmap.results, line)
	}

	return []Analysis{cards, comparison, heatmap}
}
