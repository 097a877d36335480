package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ademuri/listening-dashboard/internal/transform"
)

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return t, nil
}

func parseNullTimestamp(s sql.NullString) (transform.Timestamp, error) {
	if !s.Valid {
		return transform.Timestamp{}, nil
	}
	return transform.ParseTimestamp(s.String)
}

// ImportedAt returns when the database was last imported and from where.
func (s *Store) ImportedAt() (time.Time, string, error) {
	var at, source string
	if err := s.db.QueryRow("SELECT value FROM Meta WHERE key = ?", metaImportedAt).Scan(&at); err != nil {
		return time.Time{}, "", fmt.Errorf("reading import time: %w", err)
	}
	if err := s.db.QueryRow("SELECT value FROM Meta WHERE key = ?", metaSource).Scan(&source); err != nil && err != sql.ErrNoRows {
		return time.Time{}, "", fmt.Errorf("reading import source: %w", err)
	}
	t, err := time.Parse(time.RFC3339, at)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("parsing import time %q: %w", at, err)
	}
	return t, source, nil
}

// Load reads every table.
func (s *Store) Load() (*Dataset, error) {
	d := NewDataset()
	var err error

	if d.Summary, err = s.Summary(); err != nil {
		return nil, err
	}
	if d.Texts, err = s.ContextTexts(); err != nil {
		return nil, err
	}
	if d.Contexts, err = s.ContextCounts(); err != nil {
		return nil, err
	}
	if d.Daily, err = s.DailyDurations(); err != nil {
		return nil, err
	}
	for _, kind := range TopKinds {
		if d.Top[kind], err = s.TopEntries(kind); err != nil {
			return nil, err
		}
	}
	if d.Highlights, err = s.Highlights(); err != nil {
		return nil, err
	}
	if d.Slots, err = s.Slots(); err != nil {
		return nil, err
	}
	if d.Albums, err = s.AlbumCompletions(); err != nil {
		return nil, err
	}
	if d.Marathons, err = s.MarathonSessions(); err != nil {
		return nil, err
	}
	for _, list := range TrackLists {
		if d.Tracks[list], err = s.TrackPlays(list); err != nil {
			return nil, err
		}
	}
	if d.Likes, err = s.Likes(); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Store) Summary() (Summary, error) {
	var sum Summary
	row := s.db.QueryRow("SELECT total_duration, unique_tracks, unique_artists, unique_albums FROM Summary LIMIT 1")
	err := row.Scan(&sum.TotalDuration, &sum.UniqueTracks, &sum.UniqueArtists, &sum.UniqueAlbums)
	if err == sql.ErrNoRows {
		return Summary{}, nil
	}
	if err != nil {
		return Summary{}, fmt.Errorf("reading summary: %w", err)
	}
	return sum, validateSummary(sum)
}

func (s *Store) ContextTexts() (ContextTexts, error) {
	var t ContextTexts
	err := s.db.QueryRow("SELECT primary_des, full_des FROM ContextText LIMIT 1").Scan(&t.Primary, &t.Full)
	if err == sql.ErrNoRows {
		return ContextTexts{}, nil
	}
	if err != nil {
		return ContextTexts{}, fmt.Errorf("reading context texts: %w", err)
	}
	return t, nil
}

// ContextCounts returns the context types by count, largest first.
func (s *Store) ContextCounts() ([]ContextCount, error) {
	rows, err := s.db.Query("SELECT context_type, count FROM ContextCount ORDER BY count DESC, context_type")
	if err != nil {
		return nil, fmt.Errorf("querying context counts: %w", err)
	}
	defer rows.Close()

	var results []ContextCount
	for rows.Next() {
		var c ContextCount
		if err := rows.Scan(&c.ContextType, &c.Count); err != nil {
			return nil, err
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, validateContexts(results)
}

// DailyDurations returns the per-day listening time in date order.
func (s *Store) DailyDurations() ([]DailyDuration, error) {
	rows, err := s.db.Query("SELECT day, duration FROM DailyDuration ORDER BY day")
	if err != nil {
		return nil, fmt.Errorf("querying daily durations: %w", err)
	}
	defer rows.Close()

	var results []DailyDuration
	for rows.Next() {
		var day string
		var d DailyDuration
		if err := rows.Scan(&day, &d.Duration); err != nil {
			return nil, err
		}
		if d.Day, err = parseDate(day); err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, validateDaily(results)
}

// TopEntries returns one ranking in its exported order.
func (s *Store) TopEntries(kind TopKind) ([]TopEntry, error) {
	rows, err := s.db.Query("SELECT name, duration FROM TopEntry WHERE kind = ? ORDER BY position", string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying top %ss: %w", kind, err)
	}
	defer rows.Close()

	var results []TopEntry
	for rows.Next() {
		var e TopEntry
		if err := rows.Scan(&e.Name, &e.Duration); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, validateTop(kind, results)
}

// Highlights reads the first row of each record table. A missing row leaves
// the zero value.
func (s *Store) Highlights() (Highlights, error) {
	var h Highlights
	var d1, d2, d3 string

	err := s.db.QueryRow("SELECT play_date, duration FROM HighestDay LIMIT 1").Scan(&d1, &h.HighestDay.Duration)
	if err != nil && err != sql.ErrNoRows {
		return h, fmt.Errorf("reading highest day: %w", err)
	}
	if h.HighestDay.PlayDate, err = parseDate(d1); err != nil {
		return h, err
	}

	d1 = ""
	err = s.db.QueryRow("SELECT track, repeat_count, first_played FROM TrackRepeat LIMIT 1").
		Scan(&h.TrackRepeat.Track, &h.TrackRepeat.RepeatCount, &d1)
	if err != nil && err != sql.ErrNoRows {
		return h, fmt.Errorf("reading track repeat: %w", err)
	}
	if h.TrackRepeat.FirstPlayed, err = parseDate(d1); err != nil {
		return h, err
	}

	err = s.db.QueryRow("SELECT artist, consecutive_days, streak_start, streak_end FROM ArtistStreak LIMIT 1").
		Scan(&h.ArtistStreak.Artist, &h.ArtistStreak.ConsecutiveDays, &d2, &d3)
	if err != nil && err != sql.ErrNoRows {
		return h, fmt.Errorf("reading artist streak: %w", err)
	}
	if h.ArtistStreak.StreakStart, err = parseDate(d2); err != nil {
		return h, err
	}
	if h.ArtistStreak.StreakEnd, err = parseDate(d3); err != nil {
		return h, err
	}

	err = s.db.QueryRow("SELECT artist, total_days FROM ArtistDays LIMIT 1").
		Scan(&h.ArtistDays.Artist, &h.ArtistDays.TotalDays)
	if err != nil && err != sql.ErrNoRows {
		return h, fmt.Errorf("reading artist days: %w", err)
	}

	d1 = ""
	err = s.db.QueryRow("SELECT play_date, artist, duration FROM ArtistDay LIMIT 1").
		Scan(&d1, &h.ArtistDay.Artist, &h.ArtistDay.Duration)
	if err != nil && err != sql.ErrNoRows {
		return h, fmt.Errorf("reading artist day: %w", err)
	}
	if h.ArtistDay.PlayDate, err = parseDate(d1); err != nil {
		return h, err
	}
	return h, nil
}

// Slots returns the whole time-pattern cube in stored order.
func (s *Store) Slots() ([]SlotRow, error) {
	const query = `
	SELECT day_of_week, time_period, total_time, avg_skip_rate, new_track_ratio,
	  avg_session_time, artist_concentration, repeat_rate
	FROM TimeSlot
	ORDER BY rowid
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying time slots: %w", err)
	}
	defer rows.Close()

	var results []SlotRow
	for rows.Next() {
		var day sql.NullInt64
		var period sql.NullString
		var r SlotRow
		if err := rows.Scan(&day, &period, &r.TotalTime, &r.AvgSkipRate, &r.NewTrackRatio,
			&r.AvgSessionTime, &r.ArtistConcentration, &r.RepeatRate); err != nil {
			return nil, err
		}
		if day.Valid {
			wd, err := ParseWeekday(int(day.Int64))
			if err != nil {
				return nil, invalid("slots", len(results), "%v", err)
			}
			r.Day = &wd
		}
		if period.Valid {
			p, err := ParsePeriod(period.String)
			if err != nil {
				return nil, invalid("slots", len(results), "%v", err)
			}
			r.Period = &p
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, validateSlots(results)
}

func (s *Store) AlbumCompletions() ([]AlbumCompletion, error) {
	rows, err := s.db.Query("SELECT album, main_artists, seconds, total_duration, prop FROM AlbumCompletion ORDER BY seconds DESC, album")
	if err != nil {
		return nil, fmt.Errorf("querying album completion: %w", err)
	}
	defer rows.Close()

	var results []AlbumCompletion
	for rows.Next() {
		var a AlbumCompletion
		if err := rows.Scan(&a.Album, &a.MainArtists, &a.Seconds, &a.TotalDuration, &a.Prop); err != nil {
			return nil, err
		}
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, validateAlbums(results)
}

func (s *Store) MarathonSessions() ([]MarathonSession, error) {
	const query = `
	SELECT album, main_artists, session_start, session_end, unique_tracks, total_tracks
	FROM MarathonSession
	ORDER BY rowid
	`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("querying marathon sessions: %w", err)
	}
	defer rows.Close()

	var results []MarathonSession
	for rows.Next() {
		var start, end sql.NullString
		var m MarathonSession
		if err := rows.Scan(&m.Album, &m.MainArtists, &start, &end, &m.UniqueTracks, &m.TotalTracks); err != nil {
			return nil, err
		}
		if m.SessionStart, err = parseNullTimestamp(start); err != nil {
			return nil, err
		}
		if m.SessionEnd, err = parseNullTimestamp(end); err != nil {
			return nil, err
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, validateMarathons(results)
}

// TrackPlays returns one gap table with its artists merged per track.
func (s *Store) TrackPlays(list TrackList) ([]TrackPlay, error) {
	rows, err := s.db.Query("SELECT track_id, track, artist, count, added_at FROM TrackPlay WHERE list = ? ORDER BY rowid", string(list))
	if err != nil {
		return nil, fmt.Errorf("querying %s tracks: %w", list, err)
	}
	defer rows.Close()

	var results []TrackPlay
	for rows.Next() {
		var added sql.NullString
		var t TrackPlay
		if err := rows.Scan(&t.TrackID, &t.Track, &t.Artist, &t.Count, &added); err != nil {
			return nil, err
		}
		if t.AddedAt, err = parseNullTimestamp(added); err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	merged := MergeArtists(results)
	return merged, validateTracks(list, merged)
}

func (s *Store) Likes() ([]LikedTrack, error) {
	rows, err := s.db.Query("SELECT track_id, added_at FROM LikedTrack ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("querying likes: %w", err)
	}
	defer rows.Close()

	var results []LikedTrack
	for rows.Next() {
		var added sql.NullString
		var l LikedTrack
		if err := rows.Scan(&l.TrackID, &added); err != nil {
			return nil, err
		}
		if l.AddedAt, err = parseNullTimestamp(added); err != nil {
			return nil, err
		}
		results = append(results, l)
	}
	return results, rows.Err()
}
