package analysis

import (
	"fmt"
	"time"

	"github.com/ademuri/listening-dashboard/internal/store"
)

// ReportConfig holds the widget values of every page.
type ReportConfig struct {
	Overview    OverviewConfig
	TimePattern TimePatternConfig
	Albums      AlbumsConfig
	Gap         GapConfig
}

// DefaultReportConfig returns every page's defaults for a data window.
func DefaultReportConfig(w Window) ReportConfig {
	return ReportConfig{
		Overview:    DefaultOverviewConfig(),
		TimePattern: DefaultTimePatternConfig(),
		Albums:      DefaultAlbumsConfig(),
		Gap:         DefaultGapConfig(w),
	}
}

// importInfo is implemented by sources that know when they were imported.
type importInfo interface {
	ImportedAt() (time.Time, string, error)
}

// GenerateReport builds every page of the dashboard.
func GenerateReport(src Source, w Window, cfg ReportConfig, now time.Time) (*Report, error) {
	report := &Report{}

	// 1. Metadata
	report.Metadata = ReportMetadata{
		GeneratedDate: now.In(w.loc()).Format(store.DateLayout),
		Window:        w.String(),
		Timezone:      w.loc().String(),
	}
	if info, ok := src.(importInfo); ok {
		importedAt, source, err := info.ImportedAt()
		if err != nil {
			return nil, fmt.Errorf("reading import metadata: %w", err)
		}
		report.Metadata.ImportedAt = importedAt.Format(time.RFC3339)
		report.Metadata.Source = source
	}

	// 2. Overview
	var err error
	if report.Overview, err = LoadOverview(src, w, cfg.Overview); err != nil {
		return nil, fmt.Errorf("overview: %w", err)
	}

	// 3. Time pattern
	if report.TimePattern, err = LoadTimePattern(src, w, cfg.TimePattern); err != nil {
		return nil, fmt.Errorf("time pattern: %w", err)
	}

	// 4. Album completion
	if report.Albums, err = LoadAlbums(src, w, cfg.Albums); err != nil {
		return nil, fmt.Errorf("albums: %w", err)
	}

	// 5. Like/listen gap
	if report.Gap, err = LoadGap(src, w, cfg.Gap, now); err != nil {
		return nil, fmt.Errorf("gap: %w", err)
	}

	return report, nil
}
