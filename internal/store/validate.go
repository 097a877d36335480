package store

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrInvalidRow is returned when a table row fails validation.
var ErrInvalidRow = errors.New("invalid row")

func invalid(table string, row int, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s row %d: %s", ErrInvalidRow, table, row+1, fmt.Sprintf(format, args...))
}

func isRatio(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func isDuration(v float64) bool {
	return !math.IsNaN(v) && v >= 0
}

// Validate checks every table of the dataset.
func (d *Dataset) Validate() error {
	if err := validateSummary(d.Summary); err != nil {
		return err
	}
	if err := validateContexts(d.Contexts); err != nil {
		return err
	}
	if err := validateDaily(d.Daily); err != nil {
		return err
	}
	for kind, entries := range d.Top {
		if err := validateTop(kind, entries); err != nil {
			return err
		}
	}
	if err := validateSlots(d.Slots); err != nil {
		return err
	}
	if err := validateAlbums(d.Albums); err != nil {
		return err
	}
	if err := validateMarathons(d.Marathons); err != nil {
		return err
	}
	for list, rows := range d.Tracks {
		if err := validateTracks(list, MergeArtists(rows)); err != nil {
			return err
		}
	}
	return nil
}

func validateSummary(s Summary) error {
	if s.UniqueTracks < 0 || s.UniqueArtists < 0 || s.UniqueAlbums < 0 {
		return invalid("summary", 0, "negative count")
	}
	return nil
}

func validateContexts(rows []ContextCount) error {
	seen := make(map[string]bool, len(rows))
	for i, r := range rows {
		if r.Count < 0 {
			return invalid("context", i, "negative count %d", r.Count)
		}
		if seen[r.ContextType] {
			return invalid("context", i, "duplicate context type %q", r.ContextType)
		}
		seen[r.ContextType] = true
	}
	return nil
}

func validateDaily(rows []DailyDuration) error {
	seen := make(map[string]bool, len(rows))
	for i, r := range rows {
		if !isDuration(r.Duration) {
			return invalid("daily", i, "bad duration %v", r.Duration)
		}
		day := r.Day.Format(DateLayout)
		if seen[day] {
			return invalid("daily", i, "duplicate day %s", day)
		}
		seen[day] = true
	}
	return nil
}

func validateTop(kind TopKind, rows []TopEntry) error {
	table := "top_" + string(kind) + "s"
	for i, r := range rows {
		if !isDuration(r.Duration) {
			return invalid(table, i, "bad duration %v", r.Duration)
		}
	}
	return nil
}

func validateSlots(rows []SlotRow) error {
	seen := make(map[string]bool, len(rows))
	for i, r := range rows {
		if r.Day != nil {
			if _, err := ParseWeekday(int(*r.Day)); err != nil {
				return invalid("slots", i, "%v", err)
			}
		}
		if r.Period != nil && r.Period.Order() < 0 {
			return invalid("slots", i, "unknown time period %q", *r.Period)
		}
		if !isDuration(r.TotalTime) || !isDuration(r.AvgSessionTime) {
			return invalid("slots", i, "bad duration")
		}
		for name, v := range map[string]float64{
			"avg_skip_rate":        r.AvgSkipRate,
			"new_track_ratio":      r.NewTrackRatio,
			"artist_concentration": r.ArtistConcentration,
			"repeat_rate":          r.RepeatRate,
		} {
			if !isRatio(v) {
				return invalid("slots", i, "%s %v outside [0, 1]", name, v)
			}
		}
		k := r.key()
		if seen[k] {
			return invalid("slots", i, "duplicate dimensions %s", k)
		}
		seen[k] = true
	}
	return nil
}

func validateAlbums(rows []AlbumCompletion) error {
	for i, r := range rows {
		if !isDuration(r.Seconds) {
			return invalid("completion", i, "bad duration %v", r.Seconds)
		}
		if !isRatio(r.Prop) {
			return invalid("completion", i, "prop %v outside [0, 1]", r.Prop)
		}
	}
	return nil
}

func validateMarathons(rows []MarathonSession) error {
	for i, r := range rows {
		if r.UniqueTracks < 0 || r.TotalTracks < 0 {
			return invalid("marathon", i, "negative track count")
		}
		if r.SessionStart.Zoned != r.SessionEnd.Zoned {
			return invalid("marathon", i, "session bounds mix zoned and naive timestamps")
		}
	}
	return nil
}

func validateTracks(list TrackList, rows []TrackPlay) error {
	seen := make(map[string]bool, len(rows))
	for i, r := range rows {
		if r.Count < 0 {
			return invalid(string(list), i, "negative count %d", r.Count)
		}
		if seen[r.TrackID] {
			return invalid(string(list), i, "duplicate track id %q", r.TrackID)
		}
		seen[r.TrackID] = true
	}
	return nil
}

// MergeArtists folds the export's one-row-per-artist layout into one row per
// track, joining the artists with ", " in order of appearance. Rows are kept
// apart when they disagree on anything but the artist.
func MergeArtists(rows []TrackPlay) []TrackPlay {
	type group struct {
		row     TrackPlay
		artists []string
	}
	var groups []*group
	index := make(map[string]*group)
	for _, r := range rows {
		k := fmt.Sprintf("%s\x00%s\x00%d\x00%s", r.TrackID, r.Track, r.Count, r.AddedAt)
		g, ok := index[k]
		if !ok {
			g = &group{row: r}
			index[k] = g
			groups = append(groups, g)
		}
		if r.Artist != "" {
			g.artists = append(g.artists, r.Artist)
		}
	}

	out := make([]TrackPlay, 0, len(groups))
	for _, g := range groups {
		g.row.Artist = strings.Join(g.artists, ", ")
		out = append(out, g.row)
	}
	return out
}
