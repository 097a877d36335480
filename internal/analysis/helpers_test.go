package analysis

import (
	"testing"
	"time"

	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/ademuri/listening-dashboard/internal/transform"
	"github.com/stretchr/testify/require"
)

var taipei = time.FixedZone("UTC+8", 8*3600)

func day(s string) time.Time {
	t, err := time.Parse(store.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ts(t *testing.T, s string) transform.Timestamp {
	t.Helper()
	v, err := transform.ParseTimestamp(s)
	require.NoError(t, err)
	return v
}

func testWindow(t *testing.T) Window {
	t.Helper()
	w, err := NewWindow(day("2025-10-25"), day("2026-01-23"), taipei)
	require.NoError(t, err)
	return w
}

func weekdayPtr(d time.Weekday) *time.Weekday { return &d }
func periodPtr(p store.Period) *store.Period  { return &p }

// testCube returns a full time-pattern cube. Total time grows with the slot
// so Saturday evening is the busiest slot; skip rate is flat.
func testCube() []store.SlotRow {
	rows := []store.SlotRow{{
		TotalTime: 406000, AvgSkipRate: 0.1, NewTrackRatio: 0.3, AvgSessionTime: 1800,
		ArtistConcentration: 0.4, RepeatRate: 0.5,
	}}
	for d := time.Sunday; d <= time.Saturday; d++ {
		for i, p := range store.Periods {
			rows = append(rows, store.SlotRow{
				Day:                 weekdayPtr(d),
				Period:              periodPtr(p),
				TotalTime:           float64(int(d)*4+i+1) * 1000,
				AvgSkipRate:         0.1,
				NewTrackRatio:       0.3,
				AvgSessionTime:      1800,
				ArtistConcentration: 0.2 + float64(i)*0.1,
				RepeatRate:          0.5,
			})
		}
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		skip := 0.2
		if d == time.Sunday || d == time.Saturday {
			skip = 0.4
		}
		rows = append(rows, store.SlotRow{Day: weekdayPtr(d), TotalTime: 10000, AvgSkipRate: skip, RepeatRate: 0.5})
	}
	for i, p := range store.Periods {
		rows = append(rows, store.SlotRow{
			Period:      periodPtr(p),
			TotalTime:   []float64{1000, 1000, 2000, 1000}[i],
			AvgSkipRate: []float64{0.5, 0.1, 0.2, 0.3}[i],
		})
	}
	return rows
}

func testDataset(t *testing.T) *store.Dataset {
	d := store.NewDataset()
	d.Summary = store.Summary{TotalDuration: "120.5 hrs", UniqueTracks: 6, UniqueArtists: 4, UniqueAlbums: 3}
	d.Texts = store.ContextTexts{Primary: "Playlists", Full: "Playlists 60%, albums 40%"}
	d.Contexts = []store.ContextCount{{ContextType: "playlist", Count: 60}, {ContextType: "album", Count: 40}}
	d.Daily = []store.DailyDuration{{Day: day("2025-10-25"), Duration: 3600}, {Day: day("2026-01-23"), Duration: 7200}}
	d.Top[store.TopArtist] = []store.TopEntry{{Name: "Artist A", Duration: 9000}, {Name: "Artist B", Duration: 5000}}
	d.Slots = testCube()
	d.Albums = []store.AlbumCompletion{
		{Album: "Album A", MainArtists: "Artist A", Seconds: 7200, TotalDuration: "2.0 hrs", Prop: 1},
		{Album: "Album B", MainArtists: "Artist B", Seconds: 3600, TotalDuration: "1.0 hrs", Prop: 0.5},
	}
	d.Marathons = []store.MarathonSession{{
		Album: "Album A", MainArtists: "Artist A",
		SessionStart: ts(t, "2025-11-01T20:00:00+08:00"), SessionEnd: ts(t, "2025-11-01T21:00:00+08:00"),
		UniqueTracks: 10, TotalTracks: 10,
	}}
	d.Tracks[store.ListPlays] = []store.TrackPlay{
		{TrackID: "t1", Track: "One", Artist: "A", Count: 1},
		{TrackID: "t2", Track: "Two", Artist: "A", Count: 2},
		{TrackID: "t3", Track: "Three", Artist: "B", Count: 5},
		{TrackID: "t4", Track: "Four", Artist: "B", Count: 40},
	}
	d.Tracks[store.ListForgotten] = []store.TrackPlay{
		{TrackID: "t1", Track: "One", Artist: "A", Count: 1, AddedAt: ts(t, "2025-09-01T10:00:00Z")},
	}
	d.Tracks[store.ListFrequentNotLiked] = []store.TrackPlay{
		{TrackID: "t4", Track: "Four", Artist: "B", Count: 40},
	}
	d.Tracks[store.ListLong] = []store.TrackPlay{
		{TrackID: "t3", Track: "Three", Artist: "B", Count: 5, AddedAt: ts(t, "2024-01-01T00:00:00Z")},
	}
	d.Likes = []store.LikedTrack{
		{TrackID: "t1", AddedAt: ts(t, "2025-09-01T10:00:00Z")},
		{TrackID: "t3", AddedAt: ts(t, "2024-01-01T00:00:00Z")},
		{TrackID: "t5", AddedAt: ts(t, "2025-11-01T10:00:00Z")},
	}
	return d
}
