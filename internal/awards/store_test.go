package awards_test

import (
	"testing"
	"time"

	"github.com/kvistberg/studyleague/internal/awards"
	"github.com/kvistberg/studyleague/internal/clock"
	"github.com/kvistberg/studyleague/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (awards.Store, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	return awards.NewStore(db), teardown
}

func TestSaveAllAndForStudent(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	week := clock.WeekOf(time.Date(2025, 3, 12, 12, 0, 0, 0, clock.LeagueZone))
	list := []awards.Award{
		{StudentID: "s1", WeekStart: week.Start, Type: awards.MostImproved, Value: "80 XP this week"},
		{StudentID: "s1", WeekStart: week.Start, Type: awards.Explorer, Value: "3 topics explored"},
		{StudentID: "s2", WeekStart: week.Start, Type: awards.SpeedDemon, Value: "6 fast correct answers"},
	}

	inserted, err := store.SaveAll(list)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	got, err := store.ForStudent("s1", week)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, week.Start.Unix(), got[0].WeekStart.Unix())

	none, err := store.ForStudent("s3", week)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveAll_RerunSkipsDuplicates(t *testing.T) {
	store, teardown := setupTestStore(t)
	defer teardown()

	week := clock.WeekOf(time.Date(2025, 3, 12, 12, 0, 0, 0, clock.LeagueZone))
	list := []awards.Award{
		{StudentID: "s1", WeekStart: week.Start, Type: awards.MostImproved, Value: "80 XP this week"},
	}

	inserted, err := store.SaveAll(list)
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	// Re-running the rollover replays the same awards; none may duplicate.
	inserted, err = store.SaveAll(list)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	got, err := store.ForStudent("s1", week)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
