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
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ademuri/listening-dashboard/internal/analysis"
	"github.com/ademuri/listening-dashboard/internal/tui"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

var errNotTerminal = errors.New("browse needs an interactive terminal; use the gap or time-pattern commands instead")

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Explores the gap lists and time slot heatmap interactively",
	Long: `Opens a terminal view of the like/listen gap lists, revealing three tracks at
a time, and of the time slot heatmap. Press ? for keys.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := runBrowse(cmd.Context(), viper.GetString("database"), cmd.Flags(), term.IsTerminal(int(os.Stdout.Fd())))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	addGapFlags(browseCmd.Flags())
}

// newBrowser loads the data behind the browser. The gap page is rebuilt from
// the store each time a widget changes.
func newBrowser(dbPath string, flags *pflag.FlagSet) (tui.Model, func() error, error) {
	w, err := loadWindow(nil)
	if err != nil {
		return tui.Model{}, nil, err
	}
	cfg, err := gapConfig(flags, w)
	if err != nil {
		return tui.Model{}, nil, err
	}

	s, err := openStore(dbPath)
	if err != nil {
		return tui.Model{}, nil, fmt.Errorf("newBrowser: %w", err)
	}
	slots, err := s.Slots()
	if err != nil {
		s.Close()
		return tui.Model{}, nil, fmt.Errorf("newBrowser: %w", err)
	}

	build := func(cfg analysis.GapConfig) (*analysis.GapPage, error) {
		log.Debug("building gap page", "top", cfg.TopPercent, "bottom", cfg.BottomPercent)
		return analysis.LoadGap(s, w, cfg, now())
	}
	m, err := tui.New(build, cfg, slots, w)
	if err != nil {
		s.Close()
		return tui.Model{}, nil, fmt.Errorf("newBrowser: %w", err)
	}
	return m, s.Close, nil
}

func runBrowse(ctx context.Context, dbPath string, flags *pflag.FlagSet, interactive bool) error {
	if !interactive {
		return errNotTerminal
	}
	m, closeStore, err := newBrowser(dbPath, flags)
	if err != nil {
		return err
	}
	defer closeStore()

	if ctx == nil {
		ctx = context.Background()
	}
	return tui.Run(ctx, m)
}
