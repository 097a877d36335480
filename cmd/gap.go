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
	"time"

	"github.com/ademuri/listening-dashboard/internal/analysis"
	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/ademuri/listening-dashboard/internal/transform"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var gapTop float64
var gapBottom float64
var gapLikedStart string
var gapLikedEnd string
var gapLongTop float64
var gapLongDays int
var gapReveal map[string]int

var gapCmd = &cobra.Command{
	Use:   "gap",
	Short: "Compares what was liked with what was played",
	Long: `Lists liked tracks that are rarely played, frequently played tracks that were
never liked, and tracks liked long ago that are still among the most played.
Each list shows three tracks per reveal; --reveal forgotten=2,long=0 sets how
many times each list is revealed.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := printGap(os.Stdout, viper.GetString("database"), viper.GetString("format"), cmd.Flags(), gapReveal)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(gapCmd)
	addGapFlags(gapCmd.Flags())

	gapCmd.Flags().StringToIntVar(&gapReveal, "reveal", map[string]int{}, "reveals per list: forgotten, frequent, long (default 1 each)")
}

// addGapFlags registers the gap widgets. The liked-date window defaults
// depend on the data window, so empty dates mean the default.
func addGapFlags(flags *pflag.FlagSet) {
	flags.Float64Var(&gapTop, "top", analysis.DefaultTopPercent, "percent of most played tracks, 0 to 50")
	flags.Float64Var(&gapBottom, "bottom", analysis.DefaultBottomPercent, "percent of least played tracks, 0 to 50")
	flags.StringVar(&gapLikedStart, "liked_start", "", "first like date of the forgotten list (default 90 days before the window)")
	flags.StringVar(&gapLikedEnd, "liked_end", "", "last like date of the forgotten list (default 5 days before the window ends)")
	flags.Float64Var(&gapLongTop, "long_top", analysis.DefaultLongTopPercent, "percent of most played tracks for the liked long ago list")
	flags.IntVar(&gapLongDays, "long_days", analysis.DefaultLongDays, "minimum days since a like for the liked long ago list")
}

// gapConfig reads the gap widgets from flags, falling back to the defaults
// for w.
func gapConfig(flags *pflag.FlagSet, w analysis.Window) (analysis.GapConfig, error) {
	cfg := analysis.DefaultGapConfig(w)
	var err error
	if cfg.TopPercent, err = flags.GetFloat64("top"); err != nil {
		return cfg, err
	}
	if cfg.BottomPercent, err = flags.GetFloat64("bottom"); err != nil {
		return cfg, err
	}
	if cfg.LongTopPercent, err = flags.GetFloat64("long_top"); err != nil {
		return cfg, err
	}
	if cfg.LongDays, err = flags.GetInt("long_days"); err != nil {
		return cfg, err
	}

	dates := []struct {
		flag string
		dest *time.Time
	}{
		{"liked_start", &cfg.LikedStart},
		{"liked_end", &cfg.LikedEnd},
	}
	for _, d := range dates {
		s, err := flags.GetString(d.flag)
		if err != nil {
			return cfg, err
		}
		if s == "" {
			continue
		}
		if *d.dest, err = time.Parse(store.DateLayout, s); err != nil {
			return cfg, fmt.Errorf("%w: %s %q", analysis.ErrInvalidSetting, d.flag, s)
		}
	}
	return cfg, cfg.Validate(w)
}

// revealSession applies the requested number of reveals to each list.
// Lists not named are revealed once.
func revealSession(page *analysis.GapPage, cfg analysis.GapConfig, reveals map[string]int) (analysis.GapSession, error) {
	counts := map[analysis.GapList]int{}
	for _, l := range analysis.GapLists {
		counts[l] = 1
	}
	for name, n := range reveals {
		l, err := analysis.ParseGapList(name)
		if err != nil {
			return analysis.GapSession{}, err
		}
		if n < 0 {
			return analysis.GapSession{}, fmt.Errorf("%w: %d reveals of %s", analysis.ErrInvalidSetting, n, name)
		}
		counts[l] = n
	}

	session := analysis.NewGapSession(page, cfg)
	for _, l := range analysis.GapLists {
		for i := 0; i < counts[l]; i++ {
			session = session.Reveal(l)
		}
	}
	return session, nil
}

// revealedList is what one list shows after its reveals.
type revealedList struct {
	State     string            `yaml:"state"`
	Shown     []store.TrackPlay `yaml:"shown"`
	Remaining int               `yaml:"remaining"`
}

type gapDoc struct {
	Page     *analysis.GapPage                 `yaml:"page"`
	Revealed map[analysis.GapList]revealedList `yaml:"revealed"`
}

func printGap(out io.Writer, dbPath, format string, flags *pflag.FlagSet, reveals map[string]int) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	w, err := loadWindow(nil)
	if err != nil {
		return err
	}
	cfg, err := gapConfig(flags, w)
	if err != nil {
		return err
	}

	s, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("printGap: %w", err)
	}
	defer s.Close()

	page, err := analysis.LoadGap(s, w, cfg, now())
	if err != nil {
		return fmt.Errorf("printGap: %w", err)
	}
	session, err := revealSession(page, cfg, reveals)
	if err != nil {
		return err
	}
	log.Info("built gap", "forgotten", len(page.Forgotten), "frequent", len(page.Frequent), "long", len(page.Long))

	doc := gapDoc{Page: page, Revealed: map[analysis.GapList]revealedList{}}
	for _, l := range analysis.GapLists {
		c := session.Cursors[l]
		doc.Revealed[l] = revealedList{State: c.State().String(), Shown: c.Shown, Remaining: c.Remaining}
	}
	return printPage(out, format, doc, gapTables(session))
}

func gapTables(session analysis.GapSession) []Analysis {
	page := session.Page
	cfg := session.Config

	metrics := Analysis{
		title: "Like/listen gap " + page.Window,
		results: [][]string{
			{"Metric", "Value"},
			{"Liked in " + page.Liked + " but rarely played", pct(page.Metrics.ForgottenRatio)},
			{"Most played but never liked", pct(page.Metrics.FrequentRatio)},
			{"Likes per played track", pct(page.Metrics.LikeRatio)},
		},
		summary: fmt.Sprintf("Rarely played: at most %.0f plays. Most played: at least %.0f plays.",
			page.Cuts.Bottom.Value, page.Cuts.Top.Value),
	}

	titles := map[analysis.GapList]string{
		analysis.GapForgotten: fmt.Sprintf("Liked but rarely played (bottom %.1f%%)", cfg.BottomPercent),
		analysis.GapFrequent:  fmt.Sprintf("Played often, never liked (top %.1f%%)", cfg.TopPercent),
		analysis.GapLong:      fmt.Sprintf("Liked over %d days ago, still played (top %.1f%%)", cfg.LongDays, cfg.LongTopPercent),
	}

	tables := []Analysis{metrics}
	for _, l := range analysis.GapLists {
		c := session.Cursors[l]
		t := Analysis{
			title:   titles[l],
			results: [][]string{{"Track", "Artist", "Plays", "Liked"}},
		}
		for _, row := range c.Shown {
			t.results = append(t.results, []string{row.Track, row.Artist, count(row.Count), row.AddedAt.Format(store.DateLayout)})
		}
		switch c.State() {
		case transform.Exhausted:
			t.summary = "No more tracks"
		case transform.Revealing:
			t.summary = fmt.Sprintf("%d more", c.Remaining)
		default:
			t.summary = fmt.Sprintf("%d tracks", len(session.Rows(l)))
		}
		tables = append(tables, t)
	}
	return tables
}
