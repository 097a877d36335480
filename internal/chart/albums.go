package chart

import (
	"fmt"

	"github.com/ademuri/listening-dashboard/internal/analysis"
)

var albumScale = Scale{Low: "#6CAB91", High: "#445C73"}

// AlbumTreemap sizes completed albums by hours listened.
func AlbumTreemap(albums []analysis.CompletedAlbum) Treemap {
	t := Treemap{Title: "Completed Albums", Scale: albumScale, Border: albumScale.High}
	for _, a := range albums {
		t.Nodes = append(t.Nodes, TreemapNode{
			Label: a.Album,
			Value: a.Hours,
			Hover: fmt.Sprintf("%s\n%s\n%s", a.Album, a.MainArtists, a.TotalDuration),
		})
	}
	return t
}

// MarathonScatter puts each session on a time axis, one row per album,
// coloured by the album's session count.
func MarathonScatter(points []analysis.MarathonPoint) Scatter {
	s := Scatter{Title: "Marathon Listening Sessions", XAxis: "Time", YAxis: "Album", Scale: albumScale}
	for _, p := range points {
		s.Points = append(s.Points, ScatterPoint{
			X:     p.SessionStart.Time,
			Y:     p.Label,
			Color: float64(p.PlayCount),
			Hover: fmt.Sprintf("%s\n%s\n%s ~ %s", p.MainArtists, p.Album,
				p.SessionStart.Format("01/02 15:04"), p.SessionEnd.Format("01/02 15:04")),
		})
	}
	return s
}

type AlbumsCharts struct {
	Treemap   Treemap `yaml:"treemap"`
	Marathons Scatter `yaml:"marathons"`
}

func Albums(page *analysis.AlbumsPage) AlbumsCharts {
	return AlbumsCharts{
		Treemap:   AlbumTreemap(page.Completed),
		Marathons: MarathonScatter(page.Marathons),
	}
}
