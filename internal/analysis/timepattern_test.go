package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/ademuri/listening-dashboard/internal/store"
	"github.com/ademuri/listening-dashboard/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankSlots(t *testing.T) {
	ranked := RankSlots(testCube())
	require.Len(t, ranked, 28)

	assert.Equal(t, "Sun Late Night", ranked[0].Label)
	assert.Equal(t, "Sun Morning", ranked[1].Label)
	assert.Equal(t, "Sat Evening", ranked[27].Label)

	assert.Equal(t, 1, ranked[27].Ranks[TotalTime])
	assert.Equal(t, 28, ranked[0].Ranks[TotalTime])
	// Equal values share rank 1.
	for _, r := range ranked {
		assert.Equal(t, 1, r.Ranks[SkipRate], r.Label)
	}
	// Lower concentration ranks first, with one rank per period.
	assert.Equal(t, 1, ranked[0].Ranks[ArtistConcentration])
	assert.Equal(t, 4, ranked[3].Ranks[ArtistConcentration])
}

func TestRankSlotsIgnoresRollups(t *testing.T) {
	rows := []store.SlotRow{
		{TotalTime: 100},
		{Day: weekdayPtr(time.Monday), TotalTime: 50},
		{Day: weekdayPtr(time.Monday), Period: periodPtr(store.Evening), TotalTime: 10},
	}
	ranked := RankSlots(rows)
	require.Len(t, ranked, 1)
	assert.Equal(t, "Mon Evening", ranked[0].Label)
	assert.Empty(t, RankSlots(nil))
}

func TestCards(t *testing.T) {
	rows := testCube()
	cards := Cards(rows, RankSlots(rows))
	require.Len(t, cards, len(HeadlineMetrics))

	total := cards[0]
	assert.Equal(t, TotalTime, total.Metric)
	assert.Equal(t, "hrs", total.Unit)
	assert.InDelta(t, 406000.0/3600, total.Value, 1e-9)
	assert.Equal(t, []string{"Sat Evening"}, total.Best)
	require.Len(t, total.Sparkline, 28)
	assert.InDelta(t, 28000.0/3600, total.Sparkline[27], 1e-9)
	assert.InDelta(t, 406000.0/3600/28, total.Reference, 1e-9)

	skip := cards[1]
	assert.Equal(t, "%", skip.Unit)
	assert.InDelta(t, 10, skip.Value, 1e-9)
	assert.Len(t, skip.Best, 28)
	assert.InDelta(t, 10, skip.Reference, 1e-9)

	concentration := cards[3]
	assert.Equal(t, ArtistConcentration, concentration.Metric)
	assert.Len(t, concentration.Best, 7)
	assert.Equal(t, "Sun Late Night", concentration.Best[0])
	assert.InDelta(t, 145600.0/406000*100, concentration.Reference, 1e-9)
}

func TestSlotGrid(t *testing.T) {
	rows := testCube()
	g := SlotGrid(rows, TotalTime)
	require.Len(t, g.Values, 7)
	for _, row := range g.Values {
		require.Len(t, row, 4)
	}
	assert.Equal(t, "hrs", g.Unit)
	assert.Equal(t, []string{"Late Night", "Morning", "Afternoon", "Evening"}, g.Periods)
	assert.InDelta(t, 1000.0/3600, g.Values[0][0], 1e-9)
	assert.InDelta(t, 28000.0/3600, g.Values[6][3], 1e-9)

	skip := SlotGrid(rows[:2], SkipRate)
	assert.Equal(t, "%", skip.Unit)
	assert.Equal(t, 0.1, skip.Values[0][0])
	assert.True(t, math.IsNaN(skip.Values[0][1]))
	assert.True(t, math.IsNaN(skip.Values[6][3]))
}

func TestCompareWeekdayWeekend(t *testing.T) {
	cmp, err := Compare(testCube(), ModeWeekdayWeekend, "", "")
	require.NoError(t, err)
	assert.Equal(t, "Weekday", cmp.First.Label)
	assert.Equal(t, 5, cmp.First.Rows)
	assert.InDelta(t, 0.2, cmp.First.Values[SkipRate], 1e-9)
	assert.Equal(t, "Weekend", cmp.Second.Label)
	assert.Equal(t, 2, cmp.Second.Rows)
	assert.InDelta(t, 0.4, cmp.Second.Values[SkipRate], 1e-9)
	assert.InDelta(t, 0.5, cmp.Second.Values[RepeatRate], 1e-9)
}

func TestComparePeriod(t *testing.T) {
	rows := testCube()

	cmp, err := Compare(rows, ModePeriod, "Late Night", Others)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cmp.First.Values[SkipRate], 1e-9)
	assert.Equal(t, 3, cmp.Second.Rows)
	assert.InDelta(t, 0.2, cmp.Second.Values[SkipRate], 1e-9)

	cmp, err = Compare(rows, ModePeriod, "Morning", "Afternoon")
	require.NoError(t, err)
	assert.InDelta(t, 0.1, cmp.First.Values[SkipRate], 1e-9)
	assert.InDelta(t, 0.2, cmp.Second.Values[SkipRate], 1e-9)
	assert.False(t, cmp.Same)

	cmp, err = Compare(rows, ModePeriod, "Morning", "Morning")
	require.NoError(t, err)
	assert.True(t, cmp.Same)

	_, err = Compare(rows, ModePeriod, "Brunch", Others)
	assert.ErrorIs(t, err, transform.ErrUnknownDimensionKey)
}

func TestCompareDay(t *testing.T) {
	rows := testCube()

	cmp, err := Compare(rows, ModeDay, "Sat", Others)
	require.NoError(t, err)
	assert.Equal(t, "Sat", cmp.First.Label)
	assert.InDelta(t, 0.4, cmp.First.Values[SkipRate], 1e-9)
	assert.Equal(t, 6, cmp.Second.Rows)
	assert.InDelta(t, 14000.0/60000, cmp.Second.Values[SkipRate], 1e-9)

	// Without day roll-ups there is nothing to compare.
	cmp, err = Compare(rows[:29], ModeDay, "monday", Others)
	require.NoError(t, err)
	assert.Equal(t, 0, cmp.First.Rows)
	assert.Equal(t, 0, cmp.Second.Rows)

	_, err = Compare(rows, ModeDay, "Funday", Others)
	assert.ErrorIs(t, err, transform.ErrUnknownDimensionKey)
	_, err = Compare(rows, "yearly", "", "")
	assert.ErrorIs(t, err, transform.ErrUnknownDimensionKey)
}

func TestParseDayName(t *testing.T) {
	d, err := ParseDayName("Sat")
	require.NoError(t, err)
	assert.Equal(t, time.Saturday, d)

	d, err = ParseDayName("monday")
	require.NoError(t, err)
	assert.Equal(t, time.Monday, d)
}

func TestBuildTimePattern(t *testing.T) {
	page, err := BuildTimePattern(testCube(), testWindow(t), TimePatternConfig{
		Mode: ModePeriod, First: "Evening", Second: Others, Heatmap: ArtistConcentration,
	})
	require.NoError(t, err)
	assert.Len(t, page.Cards, 4)
	assert.Len(t, page.Slots, 28)
	assert.Equal(t, ModePeriod, page.Comparison.Mode)
	assert.Equal(t, ArtistConcentration, page.Heatmap.Metric)

	_, err = BuildTimePattern(testCube(), testWindow(t), TimePatternConfig{Mode: ModeWeekdayWeekend, Heatmap: "mood"})
	assert.ErrorIs(t, err, transform.ErrUnknownDimensionKey)
}
