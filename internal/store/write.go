package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ademuri/listening-dashboard/internal/migration"
	"github.com/ademuri/listening-dashboard/internal/transform"
)

const (
	metaImportedAt = "imported_at"
	metaSource     = "source"
)

// Import replaces every table with the contents of d in one transaction.
// Nothing is written if d fails validation.
func (s *Store) Import(d *Dataset, source string, importedAt time.Time) error {
	if err := d.Validate(); err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range migration.Tables {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	if _, err := tx.Exec("DELETE FROM Meta"); err != nil {
		return fmt.Errorf("clearing Meta: %w", err)
	}

	steps := []struct {
		name string
		fn   func(*sql.Tx, *Dataset) error
	}{
		{"overview", insertOverview},
		{"highlights", insertHighlights},
		{"time pattern", insertSlots},
		{"albums", insertAlbums},
		{"gap", insertTracks},
	}
	for _, step := range steps {
		if err := step.fn(tx, d); err != nil {
			return fmt.Errorf("importing %s: %w", step.name, err)
		}
	}

	meta := map[string]string{
		metaSource:     source,
		metaImportedAt: importedAt.UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT INTO Meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return fmt.Errorf("writing meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

func nullTimestamp(t transform.Timestamp) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.String(), Valid: true}
}

func insertOverview(tx *sql.Tx, d *Dataset) error {
	s := d.Summary
	if _, err := tx.Exec(
		"INSERT INTO Summary (total_duration, unique_tracks, unique_artists, unique_albums) VALUES (?, ?, ?, ?)",
		s.TotalDuration, s.UniqueTracks, s.UniqueArtists, s.UniqueAlbums); err != nil {
		return fmt.Errorf("inserting summary: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO ContextText (primary_des, full_des) VALUES (?, ?)", d.Texts.Primary, d.Texts.Full); err != nil {
		return fmt.Errorf("inserting context texts: %w", err)
	}
	for _, c := range d.Contexts {
		if _, err := tx.Exec("INSERT INTO ContextCount (context_type, count) VALUES (?, ?)", c.ContextType, c.Count); err != nil {
			return fmt.Errorf("inserting context %q: %w", c.ContextType, err)
		}
	}
	for _, day := range d.Daily {
		if _, err := tx.Exec("INSERT INTO DailyDuration (day, duration) VALUES (?, ?)", formatDate(day.Day), day.Duration); err != nil {
			return fmt.Errorf("inserting day %s: %w", formatDate(day.Day), err)
		}
	}
	for _, kind := range TopKinds {
		for i, e := range d.Top[kind] {
			if _, err := tx.Exec("INSERT INTO TopEntry (kind, position, name, duration) VALUES (?, ?, ?, ?)",
				string(kind), i, e.Name, e.Duration); err != nil {
				return fmt.Errorf("inserting top %s %q: %w", kind, e.Name, err)
			}
		}
	}
	return nil
}

func insertHighlights(tx *sql.Tx, d *Dataset) error {
	h := d.Highlights
	queries := []struct {
		query string
		args  []interface{}
	}{
		{"INSERT INTO HighestDay (play_date, duration) VALUES (?, ?)",
			[]interface{}{formatDate(h.HighestDay.PlayDate), h.HighestDay.Duration}},
		{"INSERT INTO TrackRepeat (track, repeat_count, first_played) VALUES (?, ?, ?)",
			[]interface{}{h.TrackRepeat.Track, h.TrackRepeat.RepeatCount, formatDate(h.TrackRepeat.FirstPlayed)}},
		{"INSERT INTO ArtistStreak (artist, consecutive_days, streak_start, streak_end) VALUES (?, ?, ?, ?)",
			[]interface{}{h.ArtistStreak.Artist, h.ArtistStreak.ConsecutiveDays, formatDate(h.ArtistStreak.StreakStart), formatDate(h.ArtistStreak.StreakEnd)}},
		{"INSERT INTO ArtistDays (artist, total_days) VALUES (?, ?)",
			[]interface{}{h.ArtistDays.Artist, h.ArtistDays.TotalDays}},
		{"INSERT INTO ArtistDay (play_date, artist, duration) VALUES (?, ?, ?)",
			[]interface{}{formatDate(h.ArtistDay.PlayDate), h.ArtistDay.Artist, h.ArtistDay.Duration}},
	}
	for _, q := range queries {
		if _, err := tx.Exec(q.query, q.args...); err != nil {
			return err
		}
	}
	return nil
}

func insertSlots(tx *sql.Tx, d *Dataset) error {
	const query = `
	INSERT INTO TimeSlot (day_of_week, time_period, total_time, avg_skip_rate, new_track_ratio,
	  avg_session_time, artist_concentration, repeat_rate)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, r := range d.Slots {
		var day sql.NullInt64
		if r.Day != nil {
			day = sql.NullInt64{Int64: int64(*r.Day), Valid: true}
		}
		var period sql.NullString
		if r.Period != nil {
			period = sql.NullString{String: string(*r.Period), Valid: true}
		}
		if _, err := tx.Exec(query, day, period, r.TotalTime, r.AvgSkipRate, r.NewTrackRatio,
			r.AvgSessionTime, r.ArtistConcentration, r.RepeatRate); err != nil {
			return fmt.Errorf("inserting slot %s: %w", r.key(), err)
		}
	}
	return nil
}

func insertAlbums(tx *sql.Tx, d *Dataset) error {
	for _, a := range d.Albums {
		if _, err := tx.Exec(
			"INSERT INTO AlbumCompletion (album, main_artists, seconds, total_duration, prop) VALUES (?, ?, ?, ?, ?)",
			a.Album, a.MainArtists, a.Seconds, a.TotalDuration, a.Prop); err != nil {
			return fmt.Errorf("inserting album %q: %w", a.Album, err)
		}
	}
	for _, m := range d.Marathons {
		if _, err := tx.Exec(`
		INSERT INTO MarathonSession (album, main_artists, session_start, session_end, unique_tracks, total_tracks)
		VALUES (?, ?, ?, ?, ?, ?)`,
			m.Album, m.MainArtists, nullTimestamp(m.SessionStart), nullTimestamp(m.SessionEnd), m.UniqueTracks, m.TotalTracks); err != nil {
			return fmt.Errorf("inserting marathon %q: %w", m.Album, err)
		}
	}
	return nil
}

func insertTracks(tx *sql.Tx, d *Dataset) error {
	stmt, err := tx.Prepare("INSERT INTO TrackPlay (list, track_id, track, artist, count, added_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("preparing track insert: %w", err)
	}
	defer stmt.Close()

	for _, list := range TrackLists {
		for _, t := range d.Tracks[list] {
			if _, err := stmt.Exec(string(list), t.TrackID, t.Track, t.Artist, t.Count, nullTimestamp(t.AddedAt)); err != nil {
				return fmt.Errorf("inserting %s track %q: %w", list, t.TrackID, err)
			}
		}
	}

	for _, l := range d.Likes {
		if _, err := tx.Exec("INSERT INTO LikedTrack (track_id, added_at) VALUES (?, ?)", l.TrackID, nullTimestamp(l.AddedAt)); err != nil {
			return fmt.Errorf("inserting like %q: %w", l.TrackID, err)
		}
	}
	return nil
}
