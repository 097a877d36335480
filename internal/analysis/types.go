package analysis

import (
	"errors"
	"fmt"
	"time"

	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/ademuri/listening-dashboard/internal/transform"
)

// ErrInvalidSetting is returned when a widget value is outside its range.
var ErrInvalidSetting = errors.New("invalid setting")

func invalidSetting(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidSetting, fmt.Sprintf(format, args...))
}

// Source is the read side of the aggregate store.
type Source interface {
	Summary() (store.Summary, error)
	ContextTexts() (store.ContextTexts, error)
	ContextCounts() ([]store.ContextCount, error)
	DailyDurations() ([]store.DailyDuration, error)
	TopEntries(kind store.TopKind) ([]store.TopEntry, error)
	Highlights() (store.Highlights, error)
	Slots() ([]store.SlotRow, error)
	AlbumCompletions() ([]store.AlbumCompletion, error)
	MarathonSessions() ([]store.MarathonSession, error)
	TrackPlays(list store.TrackList) ([]store.TrackPlay, error)
	Likes() ([]store.LikedTrack, error)
}

// Window is the date range the export was collected over, as calendar days
// in Location.
type Window struct {
	Start    time.Time
	End      time.Time
	Location *time.Location
}

// NewWindow validates and builds a data window.
func NewWindow(start, end time.Time, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	w := Window{
		Start:    time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC),
		End:      time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC),
		Location: loc,
	}
	if w.End.Before(w.Start) {
		return Window{}, invalidSetting("window ends %s before it starts %s",
			w.End.Format(store.DateLayout), w.Start.Format(store.DateLayout))
	}
	return w, nil
}

// Bounds returns the zoned window bounds. The end bound is midnight of the
// last day; window filters extend it to the end of that day.
func (w Window) Bounds() (transform.Timestamp, transform.Timestamp) {
	return transform.DayBounds(w.Start, w.End, w.loc())
}

func (w Window) String() string {
	return fmt.Sprintf("%s ~ %s", w.Start.Format(store.DateLayout), w.End.Format(store.DateLayout))
}

func (w Window) loc() *time.Location {
	if w.Location == nil {
		return time.UTC
	}
	return w.Location
}

// Report is every page of the dashboard in one document.
type Report struct {
	Metadata    ReportMetadata   `yaml:"metadata"`
	Overview    *OverviewPage    `yaml:"overview"`
	TimePattern *TimePatternPage `yaml:"time_pattern"`
	Albums      *AlbumsPage      `yaml:"albums"`
	Gap         *GapPage         `yaml:"gap"`
}

type ReportMetadata struct {
	GeneratedDate string `yaml:"generated_date"`
	ImportedAt    string `yaml:"imported_at,omitempty"`
	Source        string `yaml:"source,omitempty"`
	Window        string `yaml:"window"`
	Timezone      string `yaml:"timezone"`
}
