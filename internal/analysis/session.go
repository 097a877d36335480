package analysis

import (
	"fmt"

	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/ademuri/listening-dashboard/internal/transform"
)

// GapList names one of the gap page's reveal lists.
type GapList string

const (
	GapForgotten GapList = "forgotten"
	GapFrequent  GapList = "frequent"
	GapLong      GapList = "long"
)

var GapLists = []GapList{GapForgotten, GapFrequent, GapLong}

func ParseGapList(s string) (GapList, error) {
	for _, l := range GapLists {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: list %q", transform.ErrUnknownDimensionKey, s)
}

// GapSession is the reveal state of the gap page: the page it reveals from
// and one cursor per list. Methods return a new session.
type GapSession struct {
	Page    *GapPage
	Config  GapConfig
	Cursors map[GapList]transform.Cursor[store.TrackPlay]
}

func NewGapSession(page *GapPage, cfg GapConfig) GapSession {
	return GapSession{
		Page:   page,
		Config: cfg,
		Cursors: map[GapList]transform.Cursor[store.TrackPlay]{
			GapForgotten: {},
			GapFrequent:  {},
			GapLong:      {},
		},
	}
}

// Rows returns the full sorted list behind a cursor.
func (s GapSession) Rows(l GapList) []store.TrackPlay {
	if s.Page == nil {
		return nil
	}
	switch l {
	case GapForgotten:
		return s.Page.Forgotten
	case GapFrequent:
		return s.Page.Frequent
	case GapLong:
		return s.Page.Long
	}
	return nil
}

func (s GapSession) with(l GapList, c transform.Cursor[store.TrackPlay]) GapSession {
	cursors := make(map[GapList]transform.Cursor[store.TrackPlay], len(s.Cursors))
	for k, v := range s.Cursors {
		cursors[k] = v
	}
	cursors[l] = c
	s.Cursors = cursors
	return s
}

func (s GapSession) Reveal(l GapList) GapSession {
	return s.with(l, s.Cursors[l].Reveal(s.Rows(l)))
}

func (s GapSession) Reset(l GapList) GapSession {
	return s.with(l, s.Cursors[l].Reset())
}

// WithPage swaps in a page rebuilt for new widget values. Cursor offsets are
// kept, so the next reveal continues from the same position in the new list.
func (s GapSession) WithPage(page *GapPage, cfg GapConfig) GapSession {
	s.Page = page
	s.Config = cfg
	return s
}
