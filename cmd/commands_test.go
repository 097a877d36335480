package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ademuri/listening-dashboard/internal/analysis"
	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

var testNow = time.Date(2026, time.January, 23, 12, 0, 0, 0, time.FixedZone("UTC+08:00", 8*3600))

func slotsCSV() string {
	var b strings.Builder
	b.WriteString("day_of_week,time_period,total_time,avg_skip_rate,new_track_ratio,avg_session_time,artist_concentration,repeat_rate\n")
	b.WriteString(",,100800,0.2,0.3,1800,0.4,0.5\n")
	for d := 0; d < 7; d++ {
		skip := 0.1
		if d == 0 || d == 6 {
			skip = 0.3
		}
		fmt.Fprintf(&b, "%d,,14400,%v,0.3,1800,0.4,0.5\n", d, skip)
	}
	for _, p := range store.Periods {
		fmt.Fprintf(&b, ",%s,25200,0.2,0.3,1800,0.4,0.5\n", p)
	}
	for d := 0; d < 7; d++ {
		for i, p := range store.Periods {
			fmt.Fprintf(&b, "%d,%s,%d,0.2,0.3,1800,0.4,0.5\n", d, p, (i+1)*1800)
		}
	}
	return b.String()
}

var exportFiles = map[string]string{
	"overview/summary.csv":              "total_duration,unique_tracks,unique_artists,unique_albums\n120.5 hrs,1532,410,620\n",
	"overview/texts.json":               `{"primary_des": "Mostly playlists", "full_des": "Playlists 60%, albums 40%"}`,
	"overview/context.csv":              "context_type,count\nplaylist,60\nalbum,40\n",
	"overview/daily.csv":                "day,duration\n2025-10-25,3600\n2026-01-23,7200\n",
	"overview/top_artists.csv":          "artist,duration\nArtist A,9000\nArtist B,5400\n",
	"overview/highest_duration_day.csv": "play_date,duration\n2026-01-23,7200\n",
	"time_pattern/slots.csv":            slotsCSV(),
	"albums/completion.csv": "album,main_artists,sum,total_duration,prop\n" +
		"Album A,Artist A,7200,2.0 hrs,1.0\n" +
		"Album B,Artist B,3600,1.0 hrs,0.5\n",
	"albums/marathon.csv": "album,main_artists,session_start,session_end,unique_tracks,total_tracks\n" +
		"Album A,Artist A,2025-11-01 20:00:00+08:00,2025-11-01 21:00:00+08:00,10,10\n",
	"gap/plays.csv":              "id,track,artist,count\nt1,One,A,1\nt2,Two,A,2\nt3,Three,B,5\nt4,Four,B,40\n",
	"gap/forgotten.csv":          "id,track,artist,count,added_at\nt1,One,A,1,2025-09-01 10:00:00+00:00\n",
	"gap/frequent_not_liked.csv": "id,track,artist,count\nt4,Four,B,40\n",
	"gap/long.csv":               "id,track,artist,count,added_at\nt3,Three,B,5,2024-01-01 00:00:00+00:00\n",
	"gap/liked.csv": "track_id,added_at\n" +
		"t1,2025-09-01 10:00:00+00:00\n" +
		"t3,2024-01-01 00:00:00+00:00\n" +
		"t5,2025-11-01 10:00:00+00:00\n",
}

// setupTest imports the export fixture into a fresh database and points the
// config at it.
func setupTest(t *testing.T) string {
	t.Helper()
	return setupExport(t, nil)
}

// setupExport is setupTest with some export files replaced.
func setupExport(t *testing.T, replace map[string]string) string {
	t.Helper()
	viper.Reset()
	viper.Set("timezone", "+08:00")
	viper.Set("window_start", "2025-10-25")
	viper.Set("window_end", "2026-01-23")

	oldNow := now
	now = func() time.Time { return testNow }
	t.Cleanup(func() { now = oldNow })

	dir := t.TempDir()
	export := filepath.Join(dir, "export")
	files := map[string]string{}
	for name, content := range exportFiles {
		files[name] = content
	}
	for name, content := range replace {
		files[name] = content
	}
	for name, content := range files {
		path := filepath.Join(export, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	dbPath := filepath.Join(dir, "dashboard.db")
	require.NoError(t, importExport(ImportConfig{DbPath: dbPath, Dir: export, Source: "export/2026-01"}))
	return dbPath
}

func gapFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("gap", pflag.ContinueOnError)
	addGapFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestImportMissingDirectory(t *testing.T) {
	viper.Reset()
	err := importExport(ImportConfig{DbPath: filepath.Join(t.TempDir(), "dashboard.db"), Dir: t.TempDir()})
	require.NoError(t, err, "an empty export imports empty tables")
}

func TestImportRejectsInvalidRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "time_pattern", "slots.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(
		"day_of_week,time_period,total_time,avg_skip_rate,new_track_ratio,avg_session_time,artist_concentration,repeat_rate\n"+
			"9,,100,0.1,0.1,10,0.1,0.1\n"), 0o644))

	err := importExport(ImportConfig{DbPath: filepath.Join(dir, "dashboard.db"), Dir: dir})
	assert.Error(t, err)
}

func TestOverview(t *testing.T) {
	dbPath := setupTest(t)

	var out bytes.Buffer
	require.NoError(t, printOverview(&out, dbPath, formatTable, analysis.DefaultOverviewConfig(), "blue", nil))
	assert.Contains(t, out.String(), "Artist A")
	assert.Contains(t, out.String(), "1,532")
	assert.Contains(t, out.String(), "Mostly playlists")
	assert.Contains(t, out.String(), "60.0%")
	assert.Contains(t, out.String(), "2025-01-31 ~ 2026-01-31")
}

func TestOverviewYAML(t *testing.T) {
	dbPath := setupTest(t)

	var out bytes.Buffer
	cfg := analysis.OverviewConfig{TopKind: store.TopArtist, TopN: 5}
	require.NoError(t, printOverview(&out, dbPath, formatYAML, cfg, "green", nil))

	var doc map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	assert.Contains(t, doc, "page")
	assert.Contains(t, doc, "charts")
	assert.Contains(t, out.String(), "466E48")
}

func TestOverviewDateArgs(t *testing.T) {
	dbPath := setupTest(t)

	var out bytes.Buffer
	require.NoError(t, printOverview(&out, dbPath, formatTable, analysis.DefaultOverviewConfig(), "blue", []string{"2025-11"}))
	assert.Contains(t, out.String(), "2025-11-01 ~ 2025-11-30")
}

func TestOverviewErrors(t *testing.T) {
	dbPath := setupTest(t)
	cfg := analysis.DefaultOverviewConfig()

	err := printOverview(&bytes.Buffer{}, filepath.Join(t.TempDir(), "none.db"), formatTable, cfg, "blue", nil)
	assert.ErrorIs(t, err, store.ErrNotImported)

	err = printOverview(&bytes.Buffer{}, dbPath, "xml", cfg, "blue", nil)
	assert.ErrorIs(t, err, analysis.ErrInvalidSetting)

	err = printOverview(&bytes.Buffer{}, dbPath, formatTable, cfg, "neon", nil)
	assert.ErrorIs(t, err, analysis.ErrInvalidSetting)

	cfg.TopN = 500
	err = printOverview(&bytes.Buffer{}, dbPath, formatTable, cfg, "blue", nil)
	assert.ErrorIs(t, err, analysis.ErrInvalidSetting)
}

func TestTimePattern(t *testing.T) {
	dbPath := setupTest(t)

	cfg, err := timePatternConfig("weekday-weekend", "", "others", "total_time")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printTimePattern(&out, dbPath, formatTable, cfg))
	assert.Contains(t, out.String(), "Weekday vs Weekend")
	assert.Contains(t, out.String(), "10.0%")
	assert.Contains(t, out.String(), "30.0%")
	assert.Contains(t, out.String(), "2.0 hrs")
}

func TestTimePatternConfig(t *testing.T) {
	cfg, err := timePatternConfig("period", "", "others", "avg_skip_rate")
	require.NoError(t, err)
	assert.Equal(t, string(store.Periods[0]), cfg.First)
	assert.Equal(t, analysis.SkipRate, cfg.Heatmap)

	cfg, err = timePatternConfig("day", "", "Sat", "total_time")
	require.NoError(t, err)
	assert.Equal(t, "Mon", cfg.First)

	_, err = timePatternConfig("month", "", "", "total_time")
	assert.Error(t, err)
	_, err = timePatternConfig("day", "", "", "volume")
	assert.Error(t, err)
}

func TestTimePatternSameSides(t *testing.T) {
	dbPath := setupTest(t)

	cfg, err := timePatternConfig("day", "Tue", "Tue", "total_time")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printTimePattern(&out, dbPath, formatTable, cfg))
	assert.Contains(t, out.String(), "Both sides are the same selection.")
}

func TestAlbums(t *testing.T) {
	dbPath := setupTest(t)

	var out bytes.Buffer
	require.NoError(t, printAlbums(&out, dbPath, formatTable, analysis.DefaultAlbumsConfig()))
	assert.Contains(t, out.String(), "Album A")
	assert.NotContains(t, out.String(), "Album B")
	assert.Contains(t, out.String(), "11/01 20:00 ~ 11/01 21:00")
	assert.Contains(t, out.String(), "Found 1 sessions over 1 albums")

	out.Reset()
	cfg := analysis.DefaultAlbumsConfig()
	cfg.Completion = 0.5
	require.NoError(t, printAlbums(&out, dbPath, formatTable, cfg))
	assert.Contains(t, out.String(), "Album B")

	cfg.TopN = 5
	assert.ErrorIs(t, printAlbums(&out, dbPath, formatTable, cfg), analysis.ErrInvalidSetting)
}

func TestGap(t *testing.T) {
	dbPath := setupTest(t)

	var out bytes.Buffer
	require.NoError(t, printGap(&out, dbPath, formatTable, gapFlags(t), nil))
	assert.Contains(t, out.String(), "One")
	assert.Contains(t, out.String(), "Four")
	assert.Contains(t, out.String(), "Three")
	assert.Contains(t, out.String(), "25.0%")
	assert.Contains(t, out.String(), "No more tracks")
}

func TestGapYAML(t *testing.T) {
	dbPath := setupTest(t)

	var out bytes.Buffer
	require.NoError(t, printGap(&out, dbPath, formatYAML, gapFlags(t), map[string]int{"long": 0}))

	var doc struct {
		Page struct {
			Metrics analysis.GapMetrics `yaml:"metrics"`
		} `yaml:"page"`
		Revealed map[string]struct {
			State string `yaml:"state"`
			Shown []struct {
				Track string `yaml:"track"`
			} `yaml:"shown"`
		} `yaml:"revealed"`
	}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, 0.25, doc.Page.Metrics.LikeRatio)
	assert.Equal(t, "exhausted", doc.Revealed["forgotten"].State)
	require.Len(t, doc.Revealed["forgotten"].Shown, 1)
	assert.Equal(t, "One", doc.Revealed["forgotten"].Shown[0].Track)
	assert.Equal(t, "empty", doc.Revealed["long"].State)
}

func TestGapNaiveExport(t *testing.T) {
	dbPath := setupExport(t, map[string]string{
		"gap/forgotten.csv": "id,track,artist,count,added_at\nt1,One,A,1,2025-10-25 23:59:00\n",
		"gap/long.csv":      "id,track,artist,count,added_at\nt3,Three,B,5,2024-01-01 00:00:00\n",
		"gap/liked.csv": "track_id,added_at\n" +
			"t1,2025-10-25 23:59:00\n" +
			"t3,2024-01-01 00:00:00\n",
	})

	var out bytes.Buffer
	require.NoError(t, printGap(&out, dbPath, formatTable, gapFlags(t), nil))
	assert.Contains(t, out.String(), "One")
	assert.Contains(t, out.String(), "Three")
	assert.Contains(t, out.String(), "2025-10-25")
}

func TestGapErrors(t *testing.T) {
	dbPath := setupTest(t)

	err := printGap(&bytes.Buffer{}, dbPath, formatTable, gapFlags(t, "--top", "60"), nil)
	assert.ErrorIs(t, err, analysis.ErrInvalidSetting)

	err = printGap(&bytes.Buffer{}, dbPath, formatTable, gapFlags(t, "--liked_start", "yesterday"), nil)
	assert.ErrorIs(t, err, analysis.ErrInvalidSetting)

	err = printGap(&bytes.Buffer{}, dbPath, formatTable, gapFlags(t, "--long_days", "10"), nil)
	assert.ErrorIs(t, err, analysis.ErrInvalidSetting)

	err = printGap(&bytes.Buffer{}, dbPath, formatTable, gapFlags(t), map[string]int{"liked": 1})
	assert.Error(t, err)

	err = printGap(&bytes.Buffer{}, dbPath, formatTable, gapFlags(t), map[string]int{"long": -1})
	assert.ErrorIs(t, err, analysis.ErrInvalidSetting)
}

func TestGapConfigFlags(t *testing.T) {
	viper.Reset()
	w, err := loadWindow(nil)
	require.Error(t, err, "window dates come from the config")

	viper.Set("window_start", "2025-10-25")
	viper.Set("window_end", "2026-01-23")
	w, err = loadWindow(nil)
	require.NoError(t, err)

	cfg, err := gapConfig(gapFlags(t, "--top", "2.5", "--liked_start", "2025-10-01", "--liked_end", "2025-12-31"), w)
	require.NoError(t, err)
	assert.Equal(t, 2.5, cfg.TopPercent)
	assert.Equal(t, analysis.DefaultBottomPercent, cfg.BottomPercent)
	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), cfg.LikedStart)
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), cfg.LikedEnd)

	cfg, err = gapConfig(gapFlags(t), w)
	require.NoError(t, err)
	assert.Equal(t, analysis.DefaultGapConfig(w), cfg)
}

func TestReport(t *testing.T) {
	dbPath := setupTest(t)

	var out bytes.Buffer
	require.NoError(t, writeReport(&out, dbPath, "warm"))

	var doc map[string]map[string]interface{}
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &doc))
	assert.Contains(t, doc["report"], "metadata")
	assert.Contains(t, doc["report"], "gap")
	assert.Contains(t, doc["charts"], "overview")
	assert.Contains(t, doc["charts"], "albums")
	assert.Contains(t, out.String(), "source: export/2026-01")
	assert.Contains(t, out.String(), "like_ratio: 0.25")
}

func TestBrowseNeedsTerminal(t *testing.T) {
	dbPath := setupTest(t)
	assert.ErrorIs(t, runBrowse(context.Background(), dbPath, gapFlags(t), false), errNotTerminal)
}

func TestNewBrowser(t *testing.T) {
	dbPath := setupTest(t)

	m, closeStore, err := newBrowser(dbPath, gapFlags(t, "--bottom", "10"))
	require.NoError(t, err)
	defer closeStore()

	assert.Equal(t, 10.0, m.Session().Config.BottomPercent)
	assert.Len(t, m.Session().Rows(analysis.GapForgotten), 1)
	assert.Contains(t, m.View(), "Liked but rarely played")
}
