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
	"strconv"

	"github.com/ademuri/listening-dashboard/internal/analysis"
	"github.com/ademuri/listening-dashboard/internal/chart"
	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var overviewTop string
var overviewNumber int
var overviewScheme string

var overviewCmd = &cobra.Command{
	Use:   "overview [from] [to (optional)]",
	Short: "Shows the summary, highlights, top ranking and listening calendar",
	Long: `Uses the configured data window unless a date or date range is given. Date
strings look like 'yyyy', 'yyyy-mm', or 'yyyy-mm-dd'.`,
	Args: cobra.RangeArgs(0, 2),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := analysis.OverviewConfig{TopKind: store.TopKind(overviewTop), TopN: overviewNumber}
		err := printOverview(os.Stdout, viper.GetString("database"), viper.GetString("format"), cfg, overviewScheme, args)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(overviewCmd)

	overviewCmd.Flags().StringVar(&overviewTop, "top", string(store.TopArtist), "ranking to show: artist, track or album")
	overviewCmd.Flags().IntVarP(&overviewNumber, "number", "n", analysis.DefaultTopN, "number of ranked entries to show")
	overviewCmd.Flags().StringVar(&overviewScheme, "scheme", string(chart.SchemeBlue), "calendar colours: blue, green, purple or warm")
}

type overviewDoc struct {
	Page   *analysis.OverviewPage `yaml:"page"`
	Charts chart.OverviewCharts   `yaml:"charts"`
}

func printOverview(out io.Writer, dbPath, format string, cfg analysis.OverviewConfig, scheme string, args []string) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	calendarScheme, err := chart.ParseCalendarScheme(scheme)
	if err != nil {
		return err
	}
	w, err := loadWindow(args)
	if err != nil {
		return err
	}

	s, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("printOverview: %w", err)
	}
	defer s.Close()

	page, err := analysis.LoadOverview(s, w, cfg)
	if err != nil {
		return fmt.Errorf("printOverview: %w", err)
	}
	log.Info("built overview", "window", page.Window, "top", len(page.Top), "days", len(page.Calendar.Cells))

	doc := overviewDoc{Page: page, Charts: chart.Overview(page, calendarScheme)}
	return printPage(out, format, doc, overviewTables(page))
}

func overviewTables(page *analysis.OverviewPage) []Analysis {
	sum := page.Summary
	summary := Analysis{
		title: "Summary " + page.Window,
		results: [][]string{
			{"Listening time", "Tracks", "Artists", "Albums"},
			{sum.TotalDuration, count(sum.UniqueTracks), count(sum.UniqueArtists), count(sum.UniqueAlbums)},
		},
		summary: page.Context.Primary,
	}

	h := page.Highlights
	highlights := Analysis{
		title: "Highlights",
		results: [][]string{
			{"Record", "Who", "Detail"},
			{"Longest day", h.HighestDay.PlayDate.Format(store.DateLayout), analysis.FormatDuration(h.HighestDay.Duration)},
			{"Most repeated track", h.TrackRepeat.Track, fmt.Sprintf("%s plays since %s",
				count(h.TrackRepeat.RepeatCount), h.TrackRepeat.FirstPlayed.Format(store.DateLayout))},
			{"Longest artist streak", h.ArtistStreak.Artist, fmt.Sprintf("%d days, %s ~ %s", h.ArtistStreak.ConsecutiveDays,
				h.ArtistStreak.StreakStart.Format(store.DateLayout), h.ArtistStreak.StreakEnd.Format(store.DateLayout))},
			{"Most days with one artist", h.ArtistDays.Artist, fmt.Sprintf("%d days", h.ArtistDays.TotalDays)},
			{"Biggest artist day", h.ArtistDay.Artist, fmt.Sprintf("%s on %s",
				analysis.FormatDuration(h.ArtistDay.Duration), h.ArtistDay.PlayDate.Format(store.DateLayout))},
		},
	}

	top := Analysis{
		title:   fmt.Sprintf("Top %d %ss", len(page.Top), page.TopKind),
		results: [][]string{{"Rank", titler.String(string(page.TopKind)), "Hours"}},
	}
	for _, r := range page.Top {
		top.results = append(top.results, []string{strconv.Itoa(r.Rank), r.Name, fmt.Sprintf("%.2f", r.Hours)})
	}

	contexts := Analysis{
		title:   "Listening context",
		results: [][]string{{"Context", "Plays", "Share"}},
		summary: page.Context.Full,
	}
	for _, c := range page.Contexts {
		contexts.results = append(contexts.results, []string{c.ContextType, count(c.Count), pct(c.Share)})
	}

	var listened int
	var total float64
	for _, c := range page.Calendar.Cells {
		if c.Hours > 0 {
			listened++
		}
		total += c.Hours
	}
	calendar := Analysis{
		title: "Calendar",
		summary: fmt.Sprintf("%s ~ %s: listened on %d of %d days, %s in total",
			page.Calendar.Start.Format(store.DateLayout), page.Calendar.End.Format(store.DateLayout),
			listened, len(page.Calendar.Cells), hrs(total)),
	}

	return []Analysis{summary, highlights, top, contexts, calendar}
}
