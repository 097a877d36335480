package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ademuri/listening-dashboard/internal/transform"
	"gopkg.in/yaml.v3"
)

// TextsFile holds the overview's context descriptions. Every other table of
// an export is a CSV file, one directory per page.
const TextsFile = "overview/texts.json"

type table struct {
	path   string
	header map[string]int
	rows   [][]string
}

func readTable(dir, name string) (*table, error) {
	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if err == io.EOF {
		return &table{path: name, header: map[string]int{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", name, err)
	}

	t := &table{path: name, header: make(map[string]int, len(header))}
	for i, h := range header {
		t.header[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	t.rows, err = r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return t, nil
}

// cell looks up a column, accepting any of names. Missing optional columns
// read as "".
func (t *table) cell(row []string, names ...string) (string, bool) {
	for _, n := range names {
		if i, ok := t.header[n]; ok && i < len(row) {
			return strings.TrimSpace(row[i]), true
		}
	}
	return "", false
}

type rowReader struct {
	t   *table
	row []string
	idx int
	err error
}

func (t *table) each(fn func(r *rowReader) error) error {
	for i, row := range t.rows {
		r := &rowReader{t: t, row: row, idx: i}
		if err := fn(r); err != nil {
			return err
		}
		if r.err != nil {
			return r.err
		}
	}
	return nil
}

func (r *rowReader) fail(col, format string, args ...interface{}) {
	if r.err == nil {
		r.err = invalid(r.t.path, r.idx, "%s: %s", col, fmt.Sprintf(format, args...))
	}
}

func (r *rowReader) str(names ...string) string {
	v, ok := r.t.cell(r.row, names...)
	if !ok {
		r.fail(names[0], "missing column")
	}
	return v
}

func (r *rowReader) optStr(names ...string) string {
	v, _ := r.t.cell(r.row, names...)
	return v
}

func (r *rowReader) integer(names ...string) int {
	s := r.str(names...)
	if r.err != nil {
		return 0
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	// Float-typed integer columns ("12.0") are common in exports.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		r.fail(names[0], "not an integer: %q", s)
		return 0
	}
	return int(f)
}

func (r *rowReader) float(names ...string) float64 {
	s := r.str(names...)
	if r.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		r.fail(names[0], "not a number: %q", s)
		return 0
	}
	return f
}

func (r *rowReader) date(names ...string) time.Time {
	s := r.str(names...)
	if r.err != nil || s == "" {
		return time.Time{}
	}
	// Dates may carry a time part; only the calendar day is kept.
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		r.fail(names[0], "not a date: %q", s)
	}
	return t
}

func (r *rowReader) timestamp(names ...string) transform.Timestamp {
	s := r.optStr(names...)
	ts, err := transform.ParseTimestamp(s)
	if err != nil {
		r.fail(names[0], "%v", err)
	}
	return ts
}

// nullable returns nil for an empty or NaN cell.
func (r *rowReader) nullable(name string) *string {
	s := r.optStr(name)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") || strings.EqualFold(s, "none") {
		return nil
	}
	return &s
}

type tableSpec struct {
	name string
	read func(*table, *Dataset) error
}

var exportTables = []tableSpec{
	{"overview/summary.csv", readSummary},
	{"overview/context.csv", readContexts},
	{"overview/daily.csv", readDaily},
	{"overview/top_artists.csv", readTop(TopArtist)},
	{"overview/top_tracks.csv", readTop(TopTrack)},
	{"overview/top_albums.csv", readTop(TopAlbum)},
	{"overview/highest_duration_day.csv", readHighestDay},
	{"overview/track_repeat_max.csv", readTrackRepeat},
	{"overview/artist_streak_consecutive.csv", readArtistStreak},
	{"overview/artist_total_days.csv", readArtistDays},
	{"overview/highest_artist_day.csv", readArtistDay},
	{"time_pattern/slots.csv", readSlots},
	{"albums/completion.csv", readAlbums},
	{"albums/marathon.csv", readMarathons},
	{"gap/plays.csv", readTracks(ListPlays)},
	{"gap/forgotten.csv", readTracks(ListForgotten)},
	{"gap/frequent_not_liked.csv", readTracks(ListFrequentNotLiked)},
	{"gap/long.csv", readTracks(ListLong)},
	{"gap/liked.csv", readLikes},
}

// ReadExport reads an export directory. Missing files leave their tables
// empty and are returned in missing, relative to dir.
func ReadExport(dir string) (d *Dataset, missing []string, err error) {
	d = NewDataset()
	for _, spec := range exportTables {
		t, err := readTable(dir, spec.name)
		if errors.Is(err, os.ErrNotExist) {
			missing = append(missing, spec.name)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		if err := spec.read(t, d); err != nil {
			return nil, nil, err
		}
	}

	texts, err := os.ReadFile(filepath.Join(dir, TextsFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
		missing = append(missing, TextsFile)
	case err != nil:
		return nil, nil, fmt.Errorf("reading %s: %w", TextsFile, err)
	default:
		// JSON is a subset of YAML.
		if err := yaml.Unmarshal(texts, &d.Texts); err != nil {
			return nil, nil, fmt.Errorf("decoding %s: %w", TextsFile, err)
		}
	}
	return d, missing, nil
}

func readSummary(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		if r.idx > 0 {
			return nil
		}
		d.Summary = Summary{
			TotalDuration: r.str("total_duration"),
			UniqueTracks:  r.integer("unique_tracks"),
			UniqueArtists: r.integer("unique_artists"),
			UniqueAlbums:  r.integer("unique_albums"),
		}
		return nil
	})
}

func readContexts(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		d.Contexts = append(d.Contexts, ContextCount{
			ContextType: r.str("context_type"),
			Count:       r.integer("count"),
		})
		return nil
	})
}

func readDaily(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		d.Daily = append(d.Daily, DailyDuration{
			Day:      r.date("day", "play_date"),
			Duration: r.float("duration"),
		})
		return nil
	})
}

func readTop(kind TopKind) func(*table, *Dataset) error {
	return func(t *table, d *Dataset) error {
		return t.each(func(r *rowReader) error {
			d.Top[kind] = append(d.Top[kind], TopEntry{
				Name:     r.str(string(kind), "name"),
				Duration: r.float("duration"),
			})
			return nil
		})
	}
}

func readHighestDay(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		if r.idx == 0 {
			d.Highlights.HighestDay = HighestDay{
				PlayDate: r.date("play_date"),
				Duration: r.float("duration"),
			}
		}
		return nil
	})
}

func readTrackRepeat(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		if r.idx == 0 {
			d.Highlights.TrackRepeat = TrackRepeat{
				Track:       r.str("track"),
				RepeatCount: r.integer("repeat_count"),
				FirstPlayed: r.date("first_played"),
			}
		}
		return nil
	})
}

func readArtistStreak(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		if r.idx == 0 {
			d.Highlights.ArtistStreak = ArtistStreak{
				Artist:          r.str("artist"),
				ConsecutiveDays: r.integer("consecutive_days"),
				StreakStart:     r.date("streak_start"),
				StreakEnd:       r.date("streak_end"),
			}
		}
		return nil
	})
}

func readArtistDays(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		if r.idx == 0 {
			d.Highlights.ArtistDays = ArtistDays{
				Artist:    r.str("artist"),
				TotalDays: r.integer("total_days"),
			}
		}
		return nil
	})
}

func readArtistDay(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		if r.idx == 0 {
			d.Highlights.ArtistDay = ArtistDay{
				PlayDate: r.date("play_date"),
				Artist:   r.str("artist"),
				Duration: r.float("duration"),
			}
		}
		return nil
	})
}

func readSlots(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		row := SlotRow{
			TotalTime:           r.float("total_time"),
			AvgSkipRate:         r.float("avg_skip_rate"),
			NewTrackRatio:       r.float("new_track_ratio"),
			AvgSessionTime:      r.float("avg_session_time"),
			ArtistConcentration: r.float("artist_concentration"),
			RepeatRate:          r.float("repeat_rate"),
		}
		if s := r.nullable("day_of_week"); s != nil {
			f, err := strconv.ParseFloat(*s, 64)
			if err != nil || f != float64(int(f)) {
				return invalid(t.path, r.idx, "day_of_week: not an integer: %q", *s)
			}
			day, err := ParseWeekday(int(f))
			if err != nil {
				return invalid(t.path, r.idx, "%v", err)
			}
			row.Day = &day
		}
		if s := r.nullable("time_period"); s != nil {
			p, err := ParsePeriod(*s)
			if err != nil {
				return invalid(t.path, r.idx, "%v", err)
			}
			row.Period = &p
		}
		d.Slots = append(d.Slots, row)
		return nil
	})
}

func readAlbums(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		d.Albums = append(d.Albums, AlbumCompletion{
			Album:         r.str("album"),
			MainArtists:   r.optStr("main_artists"),
			Seconds:       r.float("sum", "seconds"),
			TotalDuration: r.optStr("total_duration"),
			Prop:          r.float("prop"),
		})
		return nil
	})
}

func readMarathons(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		d.Marathons = append(d.Marathons, MarathonSession{
			Album:        r.str("album"),
			MainArtists:  r.optStr("main_artists"),
			SessionStart: r.timestamp("session_start"),
			SessionEnd:   r.timestamp("session_end"),
			UniqueTracks: r.integer("unique_tracks"),
			TotalTracks:  r.integer("total_tracks"),
		})
		return nil
	})
}

func readTracks(list TrackList) func(*table, *Dataset) error {
	return func(t *table, d *Dataset) error {
		return t.each(func(r *rowReader) error {
			d.Tracks[list] = append(d.Tracks[list], TrackPlay{
				TrackID: r.str("track_id", "id"),
				Track:   r.str("track"),
				Artist:  r.optStr("artist"),
				Count:   r.integer("count"),
				AddedAt: r.timestamp("added_at"),
			})
			return nil
		})
	}
}

func readLikes(t *table, d *Dataset) error {
	return t.each(func(r *rowReader) error {
		d.Likes = append(d.Likes, LikedTrack{
			TrackID: r.optStr("track_id", "id"),
			AddedAt: r.timestamp("added_at"),
		})
		return nil
	})
}
