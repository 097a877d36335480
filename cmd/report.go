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

	"github.com/ademuri/listening-dashboard/internal/analysis"
	"github.com/ademuri/listening-dashboard/internal/chart"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var reportScheme string
var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Writes every page as one YAML document",
	Long:  `Builds all four pages with their default settings, plus the chart specifications a renderer needs to draw them.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportScheme, "scheme", string(chart.SchemeBlue), "calendar colours: blue, green, purple or warm")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "file to write instead of stdout")
}

type reportDoc struct {
	Report *analysis.Report `yaml:"report"`
	Charts chart.Charts     `yaml:"charts"`
}

func runReport() error {
	out := io.Writer(os.Stdout)
	if reportOutput != "" {
		f, err := os.Create(reportOutput)
		if err != nil {
			return fmt.Errorf("creating %s: %w", reportOutput, err)
		}
		defer f.Close()
		out = f
	}
	return writeReport(out, viper.GetString("database"), reportScheme)
}

func writeReport(out io.Writer, dbPath, scheme string) error {
	calendarScheme, err := chart.ParseCalendarScheme(scheme)
	if err != nil {
		return err
	}
	w, err := loadWindow(nil)
	if err != nil {
		return err
	}

	s, err := openStore(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	report, err := analysis.GenerateReport(s, w, analysis.DefaultReportConfig(w), now())
	if err != nil {
		return fmt.Errorf("analyzing data: %w", err)
	}
	log.Info("generated report", "window", report.Metadata.Window, "source", report.Metadata.Source)

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	err = encoder.Encode(reportDoc{Report: report, Charts: chart.ForReport(report, calendarScheme)})
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return encoder.Close()
}
