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
	"os"
	"time"

	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type ImportConfig struct {
	DbPath string
	Dir    string
	// Source is recorded with the import; defaults to Dir.
	Source string
}

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Loads an export into the database",
	Long: `Reads the CSV tables under overview/, time_pattern/, albums/ and gap/ plus
overview/texts.json, validates them and replaces the database contents. Missing
tables are imported empty.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config := ImportConfig{
			DbPath: viper.GetString("database"),
			Dir:    args[0],
			Source: viper.GetString("source"),
		}
		if err := importExport(config); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	var source string
	importCmd.Flags().StringVar(&source, "source", "", "label recorded for this export (default is the directory)")
	viper.BindPFlag("source", importCmd.Flags().Lookup("source"))
}

func importExport(config ImportConfig) error {
	start := time.Now()
	d, missing, err := store.ReadExport(config.Dir)
	if err != nil {
		return fmt.Errorf("reading export: %w", err)
	}
	for _, name := range missing {
		log.Warn("export table missing, importing it empty", "table", name)
	}

	s, err := store.New(config.DbPath)
	if err != nil {
		return fmt.Errorf("importExport: %w", err)
	}
	defer s.Close()

	source := config.Source
	if source == "" {
		source = config.Dir
	}
	if err := s.Import(d, source, now()); err != nil {
		return fmt.Errorf("importExport: %w", err)
	}

	log.Info("imported export",
		"source", source,
		"slots", len(d.Slots),
		"albums", len(d.Albums),
		"tracks", len(d.Tracks[store.ListPlays]),
		"likes", len(d.Likes),
		"took", time.Since(start).String())
	return nil
}
