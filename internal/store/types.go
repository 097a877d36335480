package store

import (
	"fmt"
	"time"

	"github.com/ademuri/listening-dashboard/internal/transform"
)

// DateLayout is the layout of date-only columns.
const DateLayout = "2006-01-02"

// Summary holds the overview's headline numbers. The export has one row.
type Summary struct {
	TotalDuration string `yaml:"total_duration"`
	UniqueTracks  int    `yaml:"unique_tracks"`
	UniqueArtists int    `yaml:"unique_artists"`
	UniqueAlbums  int    `yaml:"unique_albums"`
}

// ContextTexts describes where listening came from, as prose.
type ContextTexts struct {
	Primary string `yaml:"primary_des" json:"primary_des"`
	Full    string `yaml:"full_des" json:"full_des"`
}

// ContextCount is the number of plays started from one context type
// (playlist, album, artist page...).
type ContextCount struct {
	ContextType string `yaml:"context_type"`
	Count       int    `yaml:"count"`
}

// DailyDuration is the seconds listened on one calendar day.
type DailyDuration struct {
	Day      time.Time `yaml:"day"`
	Duration float64   `yaml:"duration"`
}

// TopKind selects one of the overview rankings.
type TopKind string

const (
	TopArtist TopKind = "artist"
	TopTrack  TopKind = "track"
	TopAlbum  TopKind = "album"
)

// TopKinds lists the rankings in display order.
var TopKinds = []TopKind{TopArtist, TopTrack, TopAlbum}

// ParseTopKind validates a ranking name.
func ParseTopKind(s string) (TopKind, error) {
	for _, k := range TopKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: ranking %q", transform.ErrUnknownDimensionKey, s)
}

// TopEntry is one row of a ranking, ordered by Duration descending.
type TopEntry struct {
	Name     string  `yaml:"name"`
	Duration float64 `yaml:"duration"`
}

type HighestDay struct {
	PlayDate time.Time `yaml:"play_date"`
	Duration float64   `yaml:"duration"`
}

type TrackRepeat struct {
	Track       string    `yaml:"track"`
	RepeatCount int       `yaml:"repeat_count"`
	FirstPlayed time.Time `yaml:"first_played"`
}

type ArtistStreak struct {
	Artist          string    `yaml:"artist"`
	ConsecutiveDays int       `yaml:"consecutive_days"`
	StreakStart     time.Time `yaml:"streak_start"`
	StreakEnd       time.Time `yaml:"streak_end"`
}

type ArtistDays struct {
	Artist    string `yaml:"artist"`
	TotalDays int    `yaml:"total_days"`
}

type ArtistDay struct {
	PlayDate time.Time `yaml:"play_date"`
	Artist   string    `yaml:"artist"`
	Duration float64   `yaml:"duration"`
}

// Highlights are the single-row record tables shown as overview cards.
type Highlights struct {
	HighestDay   HighestDay   `yaml:"highest_day"`
	TrackRepeat  TrackRepeat  `yaml:"track_repeat"`
	ArtistStreak ArtistStreak `yaml:"artist_streak"`
	ArtistDays   ArtistDays   `yaml:"artist_days"`
	ArtistDay    ArtistDay    `yaml:"artist_day"`
}

// Period is a coarse time of day.
type Period string

const (
	LateNight Period = "Late Night"
	Morning   Period = "Morning"
	Afternoon Period = "Afternoon"
	Evening   Period = "Evening"
)

// Periods lists every period in display order.
var Periods = []Period{LateNight, Morning, Afternoon, Evening}

// ParsePeriod validates a period name.
func ParsePeriod(s string) (Period, error) {
	for _, p := range Periods {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: time period %q", transform.ErrUnknownDimensionKey, s)
}

// Order is the position of p in display order, or -1.
func (p Period) Order() int {
	for i, q := range Periods {
		if q == p {
			return i
		}
	}
	return -1
}

// ParseWeekday validates a day-of-week number, 0 being Sunday.
func ParseWeekday(d int) (time.Weekday, error) {
	if d < 0 || d > 6 {
		return 0, fmt.Errorf("%w: day of week %d", transform.ErrUnknownDimensionKey, d)
	}
	return time.Weekday(d), nil
}

// SlotRow is one row of the time-pattern cube. Nil dimensions mark roll-ups:
// both nil is the baseline, one nil is a per-day or per-period aggregate.
type SlotRow struct {
	Day                 *time.Weekday `yaml:"day_of_week"`
	Period              *Period       `yaml:"time_period"`
	TotalTime           float64       `yaml:"total_time"`
	AvgSkipRate         float64       `yaml:"avg_skip_rate"`
	NewTrackRatio       float64       `yaml:"new_track_ratio"`
	AvgSessionTime      float64       `yaml:"avg_session_time"`
	ArtistConcentration float64       `yaml:"artist_concentration"`
	RepeatRate          float64       `yaml:"repeat_rate"`
}

func (r SlotRow) IsBaseline() bool   { return r.Day == nil && r.Period == nil }
func (r SlotRow) IsDetail() bool     { return r.Day != nil && r.Period != nil }
func (r SlotRow) IsDayOnly() bool    { return r.Day != nil && r.Period == nil }
func (r SlotRow) IsPeriodOnly() bool { return r.Day == nil && r.Period != nil }

func (r SlotRow) key() string {
	day, period := "-", "-"
	if r.Day != nil {
		day = r.Day.String()
	}
	if r.Period != nil {
		period = string(*r.Period)
	}
	return day + "/" + period
}

// AlbumCompletion is the listening time spent on one album and the share of
// its tracks that were played.
type AlbumCompletion struct {
	Album         string  `yaml:"album"`
	MainArtists   string  `yaml:"main_artists"`
	Seconds       float64 `yaml:"seconds"`
	TotalDuration string  `yaml:"total_duration"`
	Prop          float64 `yaml:"prop"`
}

// MarathonSession is one continuous listening session over an album.
type MarathonSession struct {
	Album        string              `yaml:"album"`
	MainArtists  string              `yaml:"main_artists"`
	SessionStart transform.Timestamp `yaml:"session_start"`
	SessionEnd   transform.Timestamp `yaml:"session_end"`
	UniqueTracks int                 `yaml:"unique_tracks"`
	TotalTracks  int                 `yaml:"total_tracks"`
}

// TrackList names one of the gap page's track tables.
type TrackList string

const (
	// ListPlays is the whole play-count distribution.
	ListPlays TrackList = "plays"
	// ListForgotten holds liked tracks.
	ListForgotten TrackList = "forgotten"
	// ListFrequentNotLiked holds tracks that were never liked.
	ListFrequentNotLiked TrackList = "frequent_not_liked"
	// ListLong holds liked tracks for the "liked long ago" list.
	ListLong TrackList = "long"
)

// TrackLists lists every track table.
var TrackLists = []TrackList{ListPlays, ListForgotten, ListFrequentNotLiked, ListLong}

// TrackPlay is a track and its play count. AddedAt is zero for tracks that
// were never liked.
type TrackPlay struct {
	TrackID string              `yaml:"track_id"`
	Track   string              `yaml:"track"`
	Artist  string              `yaml:"artist"`
	Count   int                 `yaml:"count"`
	AddedAt transform.Timestamp `yaml:"added_at,omitempty"`
}

// LikedTrack is one like.
type LikedTrack struct {
	TrackID string              `yaml:"track_id"`
	AddedAt transform.Timestamp `yaml:"added_at"`
}

// Dataset is every aggregate table of one export.
type Dataset struct {
	Summary    Summary
	Texts      ContextTexts
	Contexts   []ContextCount
	Daily      []DailyDuration
	Top        map[TopKind][]TopEntry
	Highlights Highlights
	Slots      []SlotRow
	Albums     []AlbumCompletion
	Marathons  []MarathonSession
	Tracks     map[TrackList][]TrackPlay
	Likes      []LikedTrack
}

// NewDataset returns an empty dataset with its maps allocated.
func NewDataset() *Dataset {
	return &Dataset{
		Top:    map[TopKind][]TopEntry{},
		Tracks: map[TrackList][]TrackPlay{},
	}
}
