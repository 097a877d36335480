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
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const sessionLayout = "01/02 15:04"

var albumsCompletion float64
var albumsMarathon float64
var albumsNumber int

var albumsCmd = &cobra.Command{
	Use:   "albums",
	Short: "Shows completed albums and marathon listening sessions",
	Long: `An album is completed when the share of its tracks played reaches
--completion. A marathon session covers at least --marathon of an album's tracks
in one sitting.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := analysis.AlbumsConfig{Completion: albumsCompletion, Marathon: albumsMarathon, TopN: albumsNumber}
		err := printAlbums(os.Stdout, viper.GetString("database"), viper.GetString("format"), cfg)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(albumsCmd)

	def := analysis.DefaultAlbumsConfig()
	albumsCmd.Flags().Float64Var(&albumsCompletion, "completion", def.Completion, "share of tracks played, 0 to 1")
	albumsCmd.Flags().Float64Var(&albumsMarathon, "marathon", def.Marathon, "share of tracks one session covers, 0 to 1")
	albumsCmd.Flags().IntVarP(&albumsNumber, "number", "n", def.TopN, "albums with the most sessions to show")
}

type albumsDoc struct {
	Page   *analysis.AlbumsPage `yaml:"page"`
	Charts chart.AlbumsCharts   `yaml:"charts"`
}

func printAlbums(out io.Writer, dbPath, format string, cfg analysis.AlbumsConfig) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	w, err := loadWindow(nil)
	if err != nil {
		return err
	}

	s, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("printAlbums: %w", err)
	}
	defer s.Close()

	page, err := analysis.LoadAlbums(s, w, cfg)
	if err != nil {
		return fmt.Errorf("printAlbums: %w", err)
	}
	log.Info("built albums", "completed", len(page.Completed), "sessions", len(page.Marathons))

	doc := albumsDoc{Page: page, Charts: chart.Albums(page)}
	return printPage(out, format, doc, albumsTables(page))
}

func albumsTables(page *analysis.AlbumsPage) []Analysis {
	completed := Analysis{
		title:   fmt.Sprintf("Albums with at least %s of tracks played", pct(page.Completion)),
		results: [][]string{{"Album", "Artists", "Listening time", "Played"}},
	}
	var hours float64
	for _, a := range page.Completed {
		completed.results = append(completed.results, []string{a.Album, a.MainArtists, a.TotalDuration, pct(a.Prop)})
		hours += a.Hours
	}
	completed.summary = fmt.Sprintf("Found %d albums, %s in total", len(page.Completed), hrs(hours))

	sessions := Analysis{
		title:   fmt.Sprintf("Marathon sessions covering at least %s of an album", pct(page.Marathon)),
		results: [][]string{{"Album", "Artists", "Session", "Tracks", "Sessions"}},
	}
	albums := map[string]bool{}
	for _, p := range page.Marathons {
		sessions.results = append(sessions.results, []string{
			p.Label,
			p.MainArtists,
			p.SessionStart.Format(sessionLayout) + " ~ " + p.SessionEnd.Format(sessionLayout),
			fmt.Sprintf("%d/%d", p.UniqueTracks, p.TotalTracks),
			strconv.Itoa(p.PlayCount),
		})
		albums[p.Album] = true
	}
	sessions.summary = fmt.Sprintf("Found %d sessions over %d albums", len(page.Marathons), len(albums))

	return []Analysis{completed, sessions}
}
