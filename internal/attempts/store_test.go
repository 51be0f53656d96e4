package attempts_test

import (
	"testing"
	"time"

	"github.com/kvistberg/studyleague/internal/attempts"
	"github.com/kvistberg/studyleague/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLog(t *testing.T) (attempts.Log, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	return attempts.New(db), teardown
}

func TestRecordAndList(t *testing.T) {
	log, teardown := setupTestLog(t)
	defer teardown()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, log.Record(attempts.Attempt{ID: "a1", StudentID: "s1", TopicID: "algebra", IsCorrect: true, TimeTakenMs: 5000, CreatedAt: base}))
	require.NoError(t, log.Record(attempts.Attempt{ID: "a2", StudentID: "s2", TopicID: "geometry", IsCorrect: false, TimeTakenMs: 4000, CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, log.Record(attempts.Attempt{ID: "a3", StudentID: "s1", TopicID: "algebra", IsCorrect: true, TimeTakenMs: 7000, CreatedAt: base.Add(2 * time.Minute)}))

	got, err := log.ListForStudents([]string{"s1"}, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "a3", got[1].ID)
	assert.True(t, got[0].IsCorrect)
	assert.Equal(t, int64(5000), got[0].TimeTakenMs)

	both, err := log.ListForStudents([]string{"s1", "s2"}, base, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, both, 3)
}

func TestRecord_DuplicateIsNoOp(t *testing.T) {
	log, teardown := setupTestLog(t)
	defer teardown()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	a := attempts.Attempt{ID: "a1", StudentID: "s1", TopicID: "algebra", IsCorrect: true, TimeTakenMs: 5000, CreatedAt: base}
	require.NoError(t, log.Record(a))
	a.TopicID = "changed"
	require.NoError(t, log.Record(a))

	got, err := log.ListForStudents([]string{"s1"}, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "algebra", got[0].TopicID, "the first write wins")
}

func TestListForStudents_WindowEdges(t *testing.T) {
	log, teardown := setupTestLog(t)
	defer teardown()

	from := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)
	require.NoError(t, log.Record(attempts.Attempt{ID: "before", StudentID: "s1", TopicID: "t", CreatedAt: from.Add(-time.Second)}))
	require.NoError(t, log.Record(attempts.Attempt{ID: "start", StudentID: "s1", TopicID: "t", CreatedAt: from}))
	require.NoError(t, log.Record(attempts.Attempt{ID: "end", StudentID: "s1", TopicID: "t", CreatedAt: to}))

	got, err := log.ListForStudents([]string{"s1"}, from, to)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "start", got[0].ID, "the window is half-open")
}

func TestListForStudents_EmptyInput(t *testing.T) {
	log, teardown := setupTestLog(t)
	defer teardown()

	got, err := log.ListForStudents(nil, time.Now().Add(-time.Hour), time.Now())
	require.NoError(t, err)
	assert.Empty(t, got)
}
