package analysis

import (
	"testing"

	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessions(albums ...string) []store.MarathonSession {
	var out []store.MarathonSession
	for _, a := range albums {
		out = append(out, store.MarathonSession{Album: a, UniqueTracks: 10, TotalTracks: 10})
	}
	return out
}

func TestCompletedAlbums(t *testing.T) {
	rows := []store.AlbumCompletion{
		{Album: "Full", Prop: 1},
		{Album: "Most", Prop: 0.8},
		{Album: "Some", Prop: 0.3},
	}
	assert.Len(t, CompletedAlbums(rows, 1), 1)
	assert.Len(t, CompletedAlbums(rows, 0.8), 2)
	assert.Len(t, CompletedAlbums(rows, 0), 3)
	assert.Empty(t, CompletedAlbums(nil, 0.5))
}

func TestMarathons(t *testing.T) {
	rows := []store.MarathonSession{
		{Album: "A", UniqueTracks: 10, TotalTracks: 10},
		{Album: "B", UniqueTracks: 8, TotalTracks: 10},
		{Album: "C", UniqueTracks: 3, TotalTracks: 10},
	}
	assert.Len(t, Marathons(rows, 1), 1)
	assert.Len(t, Marathons(rows, 0.8), 2)
	assert.Len(t, Marathons(rows, 0), 3)
}

func TestTopMarathonAlbums(t *testing.T) {
	rows := sessions("A", "B", "B", "C", "C", "D")

	top := TopMarathonAlbums(rows, 2)
	var albums []string
	for _, r := range top {
		albums = append(albums, r.Album)
	}
	assert.Equal(t, []string{"B", "B", "C", "C"}, albums)

	// A and D tie; A was seen first.
	top = TopMarathonAlbums(rows, 3)
	assert.Len(t, top, 5)
	assert.Equal(t, "A", top[0].Album)

	assert.Len(t, TopMarathonAlbums(rows, 40), 6)
}

func TestMarathonPoints(t *testing.T) {
	points := MarathonPoints(sessions("A", "B", "A"))
	require.Len(t, points, 3)
	assert.Equal(t, 2, points[0].PlayCount)
	assert.Equal(t, 1, points[1].PlayCount)
	assert.Equal(t, "A", points[2].Label)
}

func TestAlbumLabel(t *testing.T) {
	assert.Equal(t, "Short Album", AlbumLabel("Short Album"))
	assert.Equal(t, "Exactly Twenty Chars", AlbumLabel("Exactly Twenty Chars"))
	assert.Equal(t, "A Very Long Album T...", AlbumLabel("A Very Long Album Title Indeed"))

	wide := AlbumLabel("ぼくらの季節はずっと続いていく")
	assert.Contains(t, wide, "...")
	assert.LessOrEqual(t, len([]rune(wide)), 12)
}

func TestAlbumsConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultAlbumsConfig().Validate())
	assert.ErrorIs(t, AlbumsConfig{Completion: 1.1, Marathon: 1, TopN: 20}.Validate(), ErrInvalidSetting)
	assert.ErrorIs(t, AlbumsConfig{Completion: 1, Marathon: -0.1, TopN: 20}.Validate(), ErrInvalidSetting)
	assert.ErrorIs(t, AlbumsConfig{Completion: 1, Marathon: 1, TopN: 9}.Validate(), ErrInvalidSetting)
	assert.ErrorIs(t, AlbumsConfig{Completion: 1, Marathon: 1, TopN: 41}.Validate(), ErrInvalidSetting)
}

func TestBuildAlbums(t *testing.T) {
	d := testDataset(t)
	page, err := BuildAlbums(d.Albums, d.Marathons, testWindow(t), DefaultAlbumsConfig())
	require.NoError(t, err)

	require.Len(t, page.Completed, 1)
	assert.Equal(t, "Album A", page.Completed[0].Album)
	assert.Equal(t, 2.0, page.Completed[0].Hours)
	require.Len(t, page.Marathons, 1)
	assert.Equal(t, 1, page.Marathons[0].PlayCount)

	_, err = BuildAlbums(d.Albums, d.Marathons, testWindow(t), AlbumsConfig{Completion: 2, Marathon: 1, TopN: 20})
	assert.ErrorIs(t, err, ErrInvalidSetting)
}
