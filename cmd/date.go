package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ademuri/listening-dashboard/internal/store"
)

// ParsedDate is a parsed date string and the unit it was written in.
type ParsedDate struct {
	Date     time.Time
	Year     bool
	Month    bool
	Day      bool
	Relative bool
}

var relativeDate = regexp.MustCompile(`^(\d+)([dwmy])$`)

func parseDateRangeFromArgs(args []string) (start time.Time, end time.Time, err error) {
	switch len(args) {
	case 1:
		start, end, err = getImplicitDateRange(args[0])

	case 2:
		start, end, err = getExplicitDateRange(args[0], args[1])

	default:
		err = fmt.Errorf("Expected one or two date arguments")
	}
	return
}

func getImplicitDateRange(ds string) (start time.Time, end time.Time, err error) {
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return
	}

	start = date.Date
	switch {
	case date.Year:
		end = start.AddDate(1, 0, 0)

	case date.Month:
		end = start.AddDate(0, 1, 0)

	case date.Day:
		end = start.AddDate(0, 0, 1)

	case date.Relative:
		today := now()
		end = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
	}

	return
}

func getExplicitDateRange(startString, endString string) (start time.Time, end time.Time, err error) {
	startParsed, err := parseSingleDatestring(startString)
	if err != nil {
		return
	}
	start = startParsed.Date

	endParsed, err := parseSingleDatestring(endString)
	if err != nil {
		return
	}
	end = endParsed.Date

	return
}

// dateForms are the absolute date strings, most general first.
var dateForms = []struct {
	name    string
	pattern *regexp.Regexp
	layout  string
	mark    func(*ParsedDate)
}{
	{"year", regexp.MustCompile(`^\d{4}$`), "2006", func(d *ParsedDate) { d.Year = true }},
	{"month", regexp.MustCompile(`^\d{4}-\d{2}$`), "2006-01", func(d *ParsedDate) { d.Month = true }},
	{"day", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`), store.DateLayout, func(d *ParsedDate) { d.Day = true }},
}

func parseSingleDatestring(ds string) (date ParsedDate, err error) {
	if m := relativeDate.FindStringSubmatch(ds); m != nil {
		return parseRelativeDatestring(m[1], m[2])
	}

	for _, form := range dateForms {
		if !form.pattern.MatchString(ds) {
			continue
		}
		if date.Date, err = time.Parse(form.layout, ds); err != nil {
			return ParsedDate{}, fmt.Errorf("Parsing datestring as %s: %w", form.name, err)
		}
		form.mark(&date)
		return date, nil
	}
	return ParsedDate{}, fmt.Errorf("Invalid format: %q", ds)
}

// parseRelativeDatestring handles "30d", "12w", "6m" and "10y": that long
// before today.
func parseRelativeDatestring(amount, unit string) (date ParsedDate, err error) {
	n, err := strconv.Atoi(amount)
	if err != nil {
		err = fmt.Errorf("Parsing relative datestring: %w", err)
		return
	}

	today := now()
	date.Date = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	switch unit {
	case "d":
		date.Date = date.Date.AddDate(0, 0, -n)
	case "w":
		date.Date = date.Date.AddDate(0, 0, -7*n)
	case "m":
		date.Date = date.Date.AddDate(0, -n, 0)
	case "y":
		date.Date = date.Date.AddDate(-n, 0, 0)
	}
	date.Relative = true
	return
}
