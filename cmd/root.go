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
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ademuri/listening-dashboard/internal/analysis"
	"github.com/ademuri/listening-dashboard/internal/logger"
	"github.com/ademuri/listening-dashboard/internal/store"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	formatTable = "table"
	formatYAML  = "yaml"
)

var cfgFile string
var databasePath string
var timezone string
var windowStart string
var windowEnd string
var outputFormat string
var logLevel string
var logFormat string

// log is replaced once the config is read.
var log = logger.Noop()

// now is the clock behind the "liked long ago" list and report dates.
var now = time.Now

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "listening-dashboard",
	Short: "Explores pre-aggregated listening history",
	Long: `Imports the tables of a listening-history export and shows them as dashboard
pages: overview, time pattern, album completion and the like/listen gap.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default is $HOME/.listening-dashboard.yaml)")

	rootCmd.PersistentFlags().StringVarP(
		&databasePath, "database", "d", "./dashboard.db", "Path to the SQLite database")
	viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("database"))

	rootCmd.PersistentFlags().StringVar(
		&timezone, "timezone", "+08:00", "UTC offset or IANA zone the export was aggregated in")
	viper.BindPFlag("timezone", rootCmd.PersistentFlags().Lookup("timezone"))

	rootCmd.PersistentFlags().StringVar(
		&windowStart, "window_start", "2025-10-25", "first day of the data window")
	viper.BindPFlag("window_start", rootCmd.PersistentFlags().Lookup("window_start"))

	rootCmd.PersistentFlags().StringVar(
		&windowEnd, "window_end", "2026-01-23", "last day of the data window")
	viper.BindPFlag("window_end", rootCmd.PersistentFlags().Lookup("window_end"))

	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "format", "f", formatTable, "output format: table or yaml")
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))

	rootCmd.PersistentFlags().StringVar(&logLevel, "log_level", "warn", "debug, info, warn or error")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log_level"))

	rootCmd.PersistentFlags().StringVar(&logFormat, "log_format", "text", "text or json")
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log_format"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".listening-dashboard" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".listening-dashboard")
	}

	viper.SetEnvPrefix("dashboard")
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	// See https://github.com/spf13/viper/pull/852
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && viper.IsSet(f.Name) && viper.GetString(f.Name) != "" {
			rootCmd.PersistentFlags().Set(f.Name, viper.GetString(f.Name))
		}
	})
}

func setupLogger() error {
	level := viper.GetString("log_level")
	if !logger.ValidLevel(level) {
		return fmt.Errorf("%w: log level %q", analysis.ErrInvalidSetting, level)
	}
	log = logger.New(logger.Config{
		Level:  level,
		Output: "stderr",
		Format: viper.GetString("log_format"),
	})
	return nil
}

// parseTimezone accepts a UTC offset such as "+08:00" or an IANA zone name.
func parseTimezone(s string) (*time.Location, error) {
	if s == "" || strings.EqualFold(s, "utc") {
		return time.UTC, nil
	}
	if t, err := time.Parse("-07:00", s); err == nil {
		_, offset := t.Zone()
		return time.FixedZone("UTC"+s, offset), nil
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q", analysis.ErrInvalidSetting, s)
	}
	return loc, nil
}

// loadWindow builds the data window from the config, or from one or two date
// arguments when given. A single argument covers a whole year, month or day.
func loadWindow(args []string) (analysis.Window, error) {
	loc, err := parseTimezone(viper.GetString("timezone"))
	if err != nil {
		return analysis.Window{}, err
	}

	if len(args) > 0 {
		start, end, err := parseDateRangeFromArgs(args)
		if err != nil {
			return analysis.Window{}, err
		}
		if len(args) == 1 {
			end = end.AddDate(0, 0, -1)
		}
		return analysis.NewWindow(start, end, loc)
	}

	start, err := time.Parse(store.DateLayout, viper.GetString("window_start"))
	if err != nil {
		return analysis.Window{}, fmt.Errorf("parsing window_start: %w", err)
	}
	end, err := time.Parse(store.DateLayout, viper.GetString("window_end"))
	if err != nil {
		return analysis.Window{}, fmt.Errorf("parsing window_end: %w", err)
	}
	return analysis.NewWindow(start, end, loc)
}

func checkFormat(format string) error {
	switch format {
	case formatTable, formatYAML:
		return nil
	}
	return fmt.Errorf("%w: output format %q", analysis.ErrInvalidSetting, format)
}

// openStore opens the imported database read-only.
func openStore(dbPath string) (*store.Store, error) {
	s, err := store.Open(dbPath)
	if errors.Is(err, store.ErrNotImported) {
		return nil, fmt.Errorf("%s: %w", dbPath, err)
	}
	if err != nil {
		return nil, err
	}
	log.Debug("opened database", "path", dbPath)
	return s, nil
}
