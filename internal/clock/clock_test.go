package clock_test

import (
	"testing"
	"time"

	"github.com/kvistberg/studyleague/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekOf_MidWeek(t *testing.T) {
	// Wednesday 11:30 local time.
	now := time.Date(2025, 3, 12, 11, 30, 0, 0, clock.LeagueZone)
	week := clock.WeekOf(now)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, clock.LeagueZone), week.Start)
	assert.Equal(t, time.Date(2025, 3, 17, 0, 0, 0, 0, clock.LeagueZone), week.End)
	assert.Equal(t, time.Monday, week.Start.Weekday())
	assert.True(t, week.Contains(now))
}

func TestWeekOf_Deterministic(t *testing.T) {
	now := time.Date(2025, 6, 5, 17, 45, 12, 999, clock.LeagueZone)
	assert.Equal(t, clock.WeekOf(now), clock.WeekOf(now))
}

func TestWeekOf_BoundaryCrossing(t *testing.T) {
	// 1ms either side of the Sunday/Monday boundary must land in adjacent
	// weeks whose starts are exactly 7 days apart.
	sunday := time.Date(2025, 3, 16, 23, 59, 59, 999_000_000, clock.LeagueZone)
	monday := time.Date(2025, 3, 17, 0, 0, 0, 1_000_000, clock.LeagueZone)

	before := clock.WeekOf(sunday)
	after := clock.WeekOf(monday)

	require.NotEqual(t, before.Start, after.Start)
	assert.Equal(t, 7*24*time.Hour, after.Start.Sub(before.Start))
	assert.Equal(t, before.End, after.Start)
}

func TestWeekOf_MondayMidnightStartsNewWeek(t *testing.T) {
	monday := time.Date(2025, 3, 17, 0, 0, 0, 0, clock.LeagueZone)
	week := clock.WeekOf(monday)
	assert.Equal(t, monday, week.Start)
}

func TestWeekOf_OtherZoneInput(t *testing.T) {
	// The same instant expressed in UTC must map to the same league week.
	local := time.Date(2025, 3, 12, 2, 0, 0, 0, clock.LeagueZone)
	assert.Equal(t, clock.WeekOf(local).Start, clock.WeekOf(local.UTC()).Start)
}

func TestPrev(t *testing.T) {
	week := clock.WeekOf(time.Date(2025, 3, 12, 11, 30, 0, 0, clock.LeagueZone))
	prev := week.Prev()

	assert.Equal(t, week.Start, prev.End)
	assert.Equal(t, 7*24*time.Hour, week.Start.Sub(prev.Start))
}

func TestDayKey(t *testing.T) {
	// 01:00 IST on March 13 is still March 12 in UTC; the bucket follows IST.
	local := time.Date(2025, 3, 13, 1, 0, 0, 0, clock.LeagueZone)
	assert.Equal(t, "2025-03-13", clock.DayKey(local))
	assert.Equal(t, "2025-03-13", clock.DayKey(local.UTC()))
}
