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
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

var numbers = message.NewPrinter(language.English)
var titler = cases.Title(language.English)

// Analysis is one titled table of a page. The first row of results is the
// header.
type Analysis struct {
	title   string
	results [][]string
	summary string
}

func (a Analysis) String() string {
	out := new(bytes.Buffer)
	if a.title != "" {
		fmt.Fprintf(out, "%s\n", a.title)
	}
	if len(a.results) > 0 {
		table := tablewriter.NewWriter(out)
		table.Header(a.results[0])
		for _, row := range a.results[1:] {
			if err := table.Append(row); err != nil {
				return fmt.Sprintf("Error rendering table: %v", err)
			}
		}
		if err := table.Render(); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if a.summary != "" {
		fmt.Fprintf(out, "%s\n", a.summary)
	}
	return out.String()
}

// printPage writes doc as YAML, or the tables one after another.
func printPage(out io.Writer, format string, doc interface{}, tables []Analysis) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	}
	for _, t := range tables {
		fmt.Fprintln(out, t)
	}
	return nil
}

func count(n int) string {
	return numbers.Sprintf("%d", n)
}

func pct(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

func hrs(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return numbers.Sprintf("%.1f hrs", v)
}
