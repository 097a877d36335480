// Package migration holds the schema of the aggregate database.
package migration

// Create builds every aggregate table. One table per upstream export file;
// nullable dimension columns mark roll-up rows.
const Create = `
CREATE TABLE IF NOT EXISTS Meta (
  key TEXT PRIMARY KEY,
  value TEXT
);

CREATE TABLE IF NOT EXISTS Summary (
  total_duration TEXT,
  unique_tracks INTEGER,
  unique_artists INTEGER,
  unique_albums INTEGER
);

CREATE TABLE IF NOT EXISTS ContextText (
  primary_des TEXT,
  full_des TEXT
);

CREATE TABLE IF NOT EXISTS ContextCount (
  context_type TEXT PRIMARY KEY,
  count INTEGER
);

CREATE TABLE IF NOT EXISTS DailyDuration (
  day TEXT PRIMARY KEY,
  duration REAL
);

CREATE TABLE IF NOT EXISTS TopEntry (
  kind TEXT,
  position INTEGER,
  name TEXT,
  duration REAL,
  PRIMARY KEY (kind, position)
);

CREATE TABLE IF NOT EXISTS HighestDay (
  play_date TEXT,
  duration REAL
);

CREATE TABLE IF NOT EXISTS TrackRepeat (
  track TEXT,
  repeat_count INTEGER,
  first_played TEXT
);

CREATE TABLE IF NOT EXISTS ArtistStreak (
  artist TEXT,
  consecutive_days INTEGER,
  streak_start TEXT,
  streak_end TEXT
);

CREATE TABLE IF NOT EXISTS ArtistDays (
  artist TEXT,
  total_days INTEGER
);

CREATE TABLE IF NOT EXISTS ArtistDay (
  play_date TEXT,
  artist TEXT,
  duration REAL
);

CREATE TABLE IF NOT EXISTS TimeSlot (
  day_of_week INTEGER,
  time_period TEXT,
  total_time REAL,
  avg_skip_rate REAL,
  new_track_ratio REAL,
  avg_session_time REAL,
  artist_concentration REAL,
  repeat_rate REAL
);

CREATE TABLE IF NOT EXISTS AlbumCompletion (
  album TEXT,
  main_artists TEXT,
  seconds REAL,
  total_duration TEXT,
  prop REAL
);

CREATE TABLE IF NOT EXISTS MarathonSession (
  album TEXT,
  main_artists TEXT,
  session_start TEXT,
  session_end TEXT,
  unique_tracks INTEGER,
  total_tracks INTEGER
);

CREATE TABLE IF NOT EXISTS TrackPlay (
  list TEXT,
  track_id TEXT,
  track TEXT,
  artist TEXT,
  count INTEGER,
  added_at TEXT
);

CREATE INDEX IF NOT EXISTS TrackPlayList ON TrackPlay (list);

CREATE TABLE IF NOT EXISTS LikedTrack (
  track_id TEXT,
  added_at TEXT
);
`

// Tables lists every aggregate table, in the order they are cleared before a
// fresh import.
var Tables = []string{
	"Summary",
	"ContextText",
	"ContextCount",
	"DailyDuration",
	"TopEntry",
	"HighestDay",
	"TrackRepeat",
	"ArtistStreak",
	"ArtistDays",
	"ArtistDay",
	"TimeSlot",
	"AlbumCompletion",
	"MarathonSession",
	"TrackPlay",
	"LikedTrack",
}
