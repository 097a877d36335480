package transform

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type like struct {
	track   string
	addedAt Timestamp
}

func addedAt(l like) Timestamp { return l.addedAt }

func mustParse(t *testing.T, s string) Timestamp {
	t.Helper()
	ts, err := ParseTimestamp(s)
	require.NoError(t, err)
	return ts
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in    string
		zoned bool
	}{
		{"2025-10-25T23:59:00", false},
		{"2025-10-25 23:59:00", false},
		{"2025-10-25", false},
		{"2025-10-25T23:59:00+08:00", true},
		{"2025-10-25T15:59:00Z", true},
		{"2025-10-25 23:59:00+08:00", true},
		{"1761407940", true},
	}
	for _, tt := range tests {
		ts, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.zoned, ts.Zoned, tt.in)
	}

	empty, err := ParseTimestamp("  ")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = ParseTimestamp("next tuesday")
	assert.Error(t, err)
}

func TestInWindowIncludesEndOfDay(t *testing.T) {
	rows := []like{
		{"before", mustParse(t, "2025-10-24T23:59:59")},
		{"late", mustParse(t, "2025-10-25T23:59:00")},
		{"after", mustParse(t, "2025-10-26T00:00:00")},
	}
	start := mustParse(t, "2025-10-25")
	end := mustParse(t, "2025-10-25")

	got, err := InWindow(rows, addedAt, start, end)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "late", got[0].track)
}

func TestInWindowZoned(t *testing.T) {
	utc8 := time.FixedZone("UTC+8", 8*60*60)
	start, end := DayBounds(
		time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 10, 25, 0, 0, 0, 0, time.UTC),
		utc8,
	)

	rows := []like{
		// 2025-10-25 23:30 in UTC+8.
		{"in", mustParse(t, "2025-10-25T15:30:00Z")},
		// 2025-10-26 00:30 in UTC+8.
		{"out", mustParse(t, "2025-10-25T16:30:00Z")},
		{"missing", Timestamp{}},
	}
	got, err := InWindow(rows, addedAt, start, end)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "in", got[0].track)
}

func TestInWindowTimezoneMismatch(t *testing.T) {
	rows := []like{{"naive", mustParse(t, "2025-10-25T12:00:00")}}
	start := Zoned(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC))
	end := Zoned(time.Date(2025, 10, 31, 0, 0, 0, 0, time.UTC))

	_, err := InWindow(rows, addedAt, start, end)
	assert.ErrorIs(t, err, ErrTimestampTimezoneMismatch)

	_, err = InWindow(rows, addedAt, start, Naive(end.Time))
	assert.ErrorIs(t, err, ErrTimestampTimezoneMismatch)

	got, err := InWindow(nil, addedAt, start, end)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAgeAtLeast(t *testing.T) {
	now := Zoned(time.Date(2026, 1, 23, 12, 0, 0, 0, time.UTC))
	rows := []like{
		{"old", Zoned(now.Time.AddDate(0, 0, -200))},
		{"exact", Zoned(now.Time.AddDate(0, 0, -180))},
		{"recent", Zoned(now.Time.AddDate(0, 0, -179))},
		{"missing", Timestamp{}},
	}

	got, err := AgeAtLeast(rows, addedAt, 180, now)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "old", got[0].track)
	assert.Equal(t, "exact", got[1].track)

	_, err = AgeAtLeast(rows[:1], addedAt, 180, Naive(now.Time))
	assert.ErrorIs(t, err, ErrTimestampTimezoneMismatch)
}

func TestCompare(t *testing.T) {
	a := mustParse(t, "2025-10-25T08:00:00+08:00")
	b := mustParse(t, "2025-10-25T00:00:00Z")
	c, err := Compare(a, b)
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	_, err = Compare(a, mustParse(t, "2025-10-25"))
	assert.ErrorIs(t, err, ErrTimestampTimezoneMismatch)
}

func TestLocalize(t *testing.T) {
	loc := time.FixedZone("UTC+08:00", 8*3600)

	got := mustParse(t, "2025-10-25T23:59:00").Localize(loc)
	assert.True(t, got.Zoned)
	assert.Equal(t, "2025-10-25T23:59:00+08:00", got.String())

	zoned := mustParse(t, "2025-10-25T23:59:00Z")
	assert.Equal(t, zoned, zoned.Localize(loc))
	assert.True(t, Timestamp{}.Localize(loc).IsZero())
}

func TestAllNaive(t *testing.T) {
	naive := like{"a", mustParse(t, "2025-10-25 10:00:00")}
	zoned := like{"b", mustParse(t, "2025-10-25T10:00:00Z")}
	missing := like{"c", Timestamp{}}

	assert.True(t, AllNaive([]like{naive, missing}, addedAt))
	assert.False(t, AllNaive([]like{naive, zoned}, addedAt))
	assert.False(t, AllNaive([]like{missing}, addedAt))
	assert.False(t, AllNaive[like](nil, addedAt))
}
