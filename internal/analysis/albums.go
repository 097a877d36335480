package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/ademuri/listening-dashboard/internal/transform"
	"github.com/mattn/go-runewidth"
)

const (
	DefaultMarathonTopN = 20
	MinMarathonTopN     = 10
	MaxMarathonTopN     = 40

	// Album labels wider than this many cells are cut.
	albumLabelWidth = 20
)

type AlbumsConfig struct {
	// Completion is the share of an album's tracks that must have been played.
	Completion float64
	// Marathon is the share of tracks one session must cover.
	Marathon float64
	TopN     int
}

func DefaultAlbumsConfig() AlbumsConfig {
	return AlbumsConfig{Completion: 1, Marathon: 1, TopN: DefaultMarathonTopN}
}

func (c AlbumsConfig) Validate() error {
	if math.IsNaN(c.Completion) || c.Completion < 0 || c.Completion > 1 {
		return invalidSetting("completion threshold %v outside [0, 1]", c.Completion)
	}
	if math.IsNaN(c.Marathon) || c.Marathon < 0 || c.Marathon > 1 {
		return invalidSetting("marathon threshold %v outside [0, 1]", c.Marathon)
	}
	if c.TopN < MinMarathonTopN || c.TopN > MaxMarathonTopN {
		return invalidSetting("album count %d outside [%d, %d]", c.TopN, MinMarathonTopN, MaxMarathonTopN)
	}
	return nil
}

type CompletedAlbum struct {
	store.AlbumCompletion `yaml:",inline"`
	Hours                 float64 `yaml:"hours"`
}

// MarathonPoint is one session, labelled for a scatter with one row per
// album. PlayCount is the album's number of sessions.
type MarathonPoint struct {
	store.MarathonSession `yaml:",inline"`
	Label                 string `yaml:"label"`
	PlayCount             int    `yaml:"play_count"`
}

type AlbumsPage struct {
	Window     string           `yaml:"window"`
	Completion float64          `yaml:"completion"`
	Marathon   float64          `yaml:"marathon"`
	Completed  []CompletedAlbum `yaml:"completed"`
	Marathons  []MarathonPoint  `yaml:"marathons"`
}

func LoadAlbums(src Source, w Window, cfg AlbumsConfig) (*AlbumsPage, error) {
	albums, err := src.AlbumCompletions()
	if err != nil {
		return nil, fmt.Errorf("loading album completion: %w", err)
	}
	sessions, err := src.MarathonSessions()
	if err != nil {
		return nil, fmt.Errorf("loading marathon sessions: %w", err)
	}
	return BuildAlbums(albums, sessions, w, cfg)
}

func BuildAlbums(albums []store.AlbumCompletion, sessions []store.MarathonSession, w Window, cfg AlbumsConfig) (*AlbumsPage, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	page := &AlbumsPage{
		Window:     w.String(),
		Completion: cfg.Completion,
		Marathon:   cfg.Marathon,
	}
	for _, a := range CompletedAlbums(albums, cfg.Completion) {
		page.Completed = append(page.Completed, CompletedAlbum{AlbumCompletion: a, Hours: a.Seconds / 3600})
	}
	page.Marathons = MarathonPoints(TopMarathonAlbums(Marathons(sessions, cfg.Marathon), cfg.TopN))
	return page, nil
}

func albumProp(a store.AlbumCompletion) float64 { return a.Prop }

// CompletedAlbums keeps the albums whose played share is at least threshold.
func CompletedAlbums(rows []store.AlbumCompletion, threshold float64) []store.AlbumCompletion {
	return transform.ApplyCut(rows, albumProp, transform.Cut{Value: threshold}, transform.AtLeast)
}

// Marathons keeps the sessions that covered at least threshold of their
// album's tracks.
func Marathons(rows []store.MarathonSession, threshold float64) []store.MarathonSession {
	var out []store.MarathonSession
	for _, r := range rows {
		if float64(r.UniqueTracks) >= float64(r.TotalTracks)*threshold {
			out = append(out, r)
		}
	}
	return out
}

// TopMarathonAlbums keeps the sessions of the n albums with the most
// sessions. Ties go to the album seen first.
func TopMarathonAlbums(rows []store.MarathonSession, n int) []store.MarathonSession {
	counts := map[string]int{}
	var albums []string
	for _, r := range rows {
		if counts[r.Album] == 0 {
			albums = append(albums, r.Album)
		}
		counts[r.Album]++
	}
	sort.SliceStable(albums, func(a, b int) bool {
		return counts[albums[a]] > counts[albums[b]]
	})
	if n < len(albums) {
		albums = albums[:n]
	}

	keep := make(map[string]bool, len(albums))
	for _, a := range albums {
		keep[a] = true
	}
	var out []store.MarathonSession
	for _, r := range rows {
		if keep[r.Album] {
			out = append(out, r)
		}
	}
	return out
}

// MarathonPoints labels sessions and counts them per album.
func MarathonPoints(rows []store.MarathonSession) []MarathonPoint {
	counts := map[string]int{}
	for _, r := range rows {
		counts[r.Album]++
	}
	out := make([]MarathonPoint, 0, len(rows))
	for _, r := range rows {
		out = append(out, MarathonPoint{
			MarathonSession: r,
			Label:           AlbumLabel(r.Album),
			PlayCount:       counts[r.Album],
		})
	}
	return out
}

// AlbumLabel shortens long album names to fit a chart axis, measuring in
// terminal cells so wide characters count double.
func AlbumLabel(album string) string {
	if runewidth.StringWidth(album) <= albumLabelWidth {
		return album
	}
	return runewidth.Truncate(album, albumLabelWidth+2, "...")
}
