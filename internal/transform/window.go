package transform

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Timestamp is an instant that remembers whether its source carried a zone.
// Naive timestamps keep their wall clock in time.UTC and compare only with
// other naive timestamps.
type Timestamp struct {
	Time  time.Time
	Zoned bool
}

// Zoned wraps a zone-aware time.
func Zoned(t time.Time) Timestamp {
	return Timestamp{Time: t, Zoned: true}
}

// Naive wraps the wall clock of t, dropping its location.
func Naive(t time.Time) Timestamp {
	return Timestamp{
		Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC),
	}
}

// IsZero reports whether the timestamp is unset (a missing value).
func (t Timestamp) IsZero() bool {
	return t.Time.IsZero()
}

// Localize reads a naive timestamp's wall clock as a time in loc. Zoned and
// zero timestamps are returned unchanged.
func (t Timestamp) Localize(loc *time.Location) Timestamp {
	if t.Zoned || t.IsZero() {
		return t
	}
	w := t.Time
	return Zoned(time.Date(w.Year(), w.Month(), w.Day(), w.Hour(), w.Minute(), w.Second(), w.Nanosecond(), loc))
}

// AllNaive reports whether rows hold at least one timestamp and none of them
// carry a zone. Zero timestamps are ignored.
func AllNaive[T any](rows []T, ts func(T) Timestamp) bool {
	seen := false
	for _, r := range rows {
		t := ts(r)
		if t.IsZero() {
			continue
		}
		if t.Zoned {
			return false
		}
		seen = true
	}
	return seen
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	if t.Zoned {
		return t.Time.Format(time.RFC3339)
	}
	return t.Time.Format("2006-01-02T15:04:05")
}

// Format formats the wall clock of the timestamp.
func (t Timestamp) Format(layout string) string {
	if t.IsZero() {
		return ""
	}
	return t.Time.Format(layout)
}

// MarshalYAML renders the timestamp as its string form.
func (t Timestamp) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02T15:04:05-0700",
}

var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses s. Strings carrying a UTC offset or a unix epoch are
// zoned; plain wall-clock strings are naive. An empty string is the zero
// Timestamp.
func ParseTimestamp(s string) (Timestamp, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}, nil
	}

	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Zoned(time.Unix(unix, 0).UTC()), nil
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Zoned(t), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("parsing timestamp %q: unrecognized format", s)
}

// Compare returns -1, 0 or +1 like time.Time.Compare. Mixing naive and zoned
// timestamps fails with ErrTimestampTimezoneMismatch.
func Compare(a, b Timestamp) (int, error) {
	if a.Zoned != b.Zoned {
		return 0, fmt.Errorf("%w: %s vs %s", ErrTimestampTimezoneMismatch, a, b)
	}
	return a.Time.Compare(b.Time), nil
}

// EndOfDay returns the last instant of t's calendar day, in t's own zone.
func EndOfDay(t Timestamp) Timestamp {
	wall := t.Time
	next := time.Date(wall.Year(), wall.Month(), wall.Day()+1, 0, 0, 0, 0, wall.Location())
	return Timestamp{Time: next.Add(-time.Nanosecond), Zoned: t.Zoned}
}

// DayBounds builds zoned window bounds in loc from two date-only values. The
// end bound is midnight of the end date; InWindow extends it to end of day.
func DayBounds(start, end time.Time, loc *time.Location) (Timestamp, Timestamp) {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc)
	return Zoned(s), Zoned(e)
}

// InWindow returns the rows whose timestamp falls in [start, endOfDay(end)].
// Rows with a zero timestamp never match.
func InWindow[T any](rows []T, ts func(T) Timestamp, start, end Timestamp) ([]T, error) {
	if start.Zoned != end.Zoned {
		return nil, fmt.Errorf("window bounds: %w", ErrTimestampTimezoneMismatch)
	}
	last := EndOfDay(end)

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		t := ts(r)
		if t.IsZero() {
			continue
		}
		afterStart, err := Compare(t, start)
		if err != nil {
			return nil, err
		}
		beforeEnd, err := Compare(t, last)
		if err != nil {
			return nil, err
		}
		if afterStart >= 0 && beforeEnd <= 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

// CountInWindow is InWindow without materializing the rows.
func CountInWindow[T any](rows []T, ts func(T) Timestamp, start, end Timestamp) (int, error) {
	matched, err := InWindow(rows, ts, start, end)
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// AgeAtLeast returns the rows whose timestamp is at least minDays days before
// now. Rows with a zero timestamp never match.
func AgeAtLeast[T any](rows []T, ts func(T) Timestamp, minDays int, now Timestamp) ([]T, error) {
	minAge := time.Duration(minDays) * 24 * time.Hour

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		t := ts(r)
		if t.IsZero() {
			continue
		}
		if t.Zoned != now.Zoned {
			return nil, fmt.Errorf("%w: %s vs now %s", ErrTimestampTimezoneMismatch, t, now)
		}
		if now.Time.Sub(t.Time) >= minAge {
			out = append(out, r)
		}
	}
	return out, nil
}
