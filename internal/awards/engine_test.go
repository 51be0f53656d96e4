package awards_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/kvistberg/studyleague/internal/attempts"
	"github.com/kvistberg/studyleague/internal/awards"
	"github.com/kvistberg/studyleague/internal/clock"
	"github.com/kvistberg/studyleague/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekStart = time.Date(2025, 3, 10, 0, 0, 0, 0, clock.LeagueZone)

// member builds a league member; callers pass them ordered by weekly XP
// descending, as the rollover does.
func member(studentID string, weeklyXP int) league.Member {
	return league.Member{
		Membership: league.Membership{
			ID:        "m-" + studentID,
			StudentID: studentID,
			WeekStart: weekStart,
			WeeklyXP:  weeklyXP,
		},
		Name: studentID,
	}
}

func attempt(studentID, topicID string, correct bool, ms int64) attempts.Attempt {
	return attempts.Attempt{
		ID:          fmt.Sprintf("a-%s-%s-%d", studentID, topicID, ms),
		StudentID:   studentID,
		TopicID:     topicID,
		IsCorrect:   correct,
		TimeTakenMs: ms,
		CreatedAt:   weekStart.Add(time.Hour),
	}
}

func findAward(t *testing.T, list []awards.Award, typ awards.Type) *awards.Award {
	t.Helper()
	for i := range list {
		if list[i].Type == typ {
			return &list[i]
		}
	}
	return nil
}

func TestMostImproved_IsRunnerUp(t *testing.T) {
	members := []league.Member{member("top", 100), member("second", 80), member("third", 60)}

	got := awards.Compute(members, nil)
	a := findAward(t, got, awards.MostImproved)
	require.NotNil(t, a)
	assert.Equal(t, "second", a.StudentID, "the outright top scorer is deliberately excluded")
}

func TestMostImproved_NeedsTwoMembers(t *testing.T) {
	got := awards.Compute([]league.Member{member("solo", 100)}, nil)
	assert.Nil(t, findAward(t, got, awards.MostImproved))
}

func TestSpeedDemon(t *testing.T) {
	members := []league.Member{member("fast", 50), member("slow", 40)}

	var atts []attempts.Attempt
	// Six qualifying fast correct answers for "fast".
	for i := 0; i < 6; i++ {
		atts = append(atts, attempt("fast", fmt.Sprintf("t%d", i), true, 5000+int64(i)))
	}
	// Disqualified answers: wrong, under the spam floor, or too slow.
	atts = append(atts,
		attempt("fast", "x", false, 5000),
		attempt("slow", "x", true, 2000),
		attempt("slow", "y", true, 12000),
	)

	got := awards.Compute(members, atts)
	a := findAward(t, got, awards.SpeedDemon)
	require.NotNil(t, a)
	assert.Equal(t, "fast", a.StudentID)
	assert.Equal(t, "6 fast correct answers", a.Value)
}

func TestSpeedDemon_BelowThresholdNoWinner(t *testing.T) {
	members := []league.Member{member("s1", 50)}
	var atts []attempts.Attempt
	for i := 0; i < 4; i++ {
		atts = append(atts, attempt("s1", fmt.Sprintf("t%d", i), true, 5000+int64(i)))
	}

	got := awards.Compute(members, atts)
	assert.Nil(t, findAward(t, got, awards.SpeedDemon))
}

func TestSpeedDemon_TieKeepsFirstEncountered(t *testing.T) {
	members := []league.Member{member("first", 50), member("second", 40)}
	var atts []attempts.Attempt
	for i := 0; i < 5; i++ {
		atts = append(atts, attempt("first", fmt.Sprintf("t%d", i), true, 5000+int64(i)))
		atts = append(atts, attempt("second", fmt.Sprintf("t%d", i), true, 5000+int64(i)))
	}

	got := awards.Compute(members, atts)
	a := findAward(t, got, awards.SpeedDemon)
	require.NotNil(t, a)
	assert.Equal(t, "first", a.StudentID)
}

func TestAccuracyKing(t *testing.T) {
	members := []league.Member{member("sharp", 50), member("sloppy", 40)}

	var atts []attempts.Attempt
	// sharp: 9 of 10 correct -> 90%, qualifies.
	for i := 0; i < 10; i++ {
		atts = append(atts, attempt("sharp", fmt.Sprintf("t%d", i), i > 0, 5000+int64(i)))
	}
	// sloppy: 3 of 6 correct, below the bar.
	for i := 0; i < 6; i++ {
		atts = append(atts, attempt("sloppy", fmt.Sprintf("u%d", i), i%2 == 0, 5000+int64(i)))
	}

	got := awards.Compute(members, atts)
	a := findAward(t, got, awards.AccuracyKing)
	require.NotNil(t, a)
	assert.Equal(t, "sharp", a.StudentID)
	assert.Equal(t, "90% accuracy", a.Value)
}

func TestAccuracyKing_TooFewAttemptsNoWinner(t *testing.T) {
	members := []league.Member{member("s1", 50)}
	atts := []attempts.Attempt{
		attempt("s1", "t1", true, 5000),
		attempt("s1", "t2", true, 5001),
	}

	got := awards.Compute(members, atts)
	assert.Nil(t, findAward(t, got, awards.AccuracyKing), "perfect accuracy over too few attempts does not qualify")
}

func TestExplorer(t *testing.T) {
	members := []league.Member{member("wide", 50), member("narrow", 40)}

	atts := []attempts.Attempt{
		attempt("wide", "algebra", true, 5000),
		attempt("wide", "geometry", false, 6000),
		attempt("wide", "fractions", true, 7000),
		attempt("narrow", "algebra", true, 5000),
	}

	got := awards.Compute(members, atts)
	a := findAward(t, got, awards.Explorer)
	require.NotNil(t, a)
	assert.Equal(t, "wide", a.StudentID)
	assert.Equal(t, "3 topics explored", a.Value)
}

func TestExplorer_SingleTopicNoWinner(t *testing.T) {
	members := []league.Member{member("s1", 50)}
	atts := []attempts.Attempt{
		attempt("s1", "algebra", true, 5000),
		attempt("s1", "algebra", true, 6000),
	}

	got := awards.Compute(members, atts)
	assert.Nil(t, findAward(t, got, awards.Explorer))
}

func TestCompute_StudentMayWinSeveralAwards(t *testing.T) {
	members := []league.Member{member("top", 100), member("star", 80)}

	var atts []attempts.Attempt
	for i := 0; i < 6; i++ {
		atts = append(atts, attempt("star", fmt.Sprintf("t%d", i), true, 5000+int64(i)))
	}

	got := awards.Compute(members, atts)
	for _, typ := range []awards.Type{awards.MostImproved, awards.SpeedDemon, awards.AccuracyKing, awards.Explorer} {
		a := findAward(t, got, typ)
		require.NotNilf(t, a, "expected a %s winner", typ)
		assert.Equal(t, "star", a.StudentID)
	}
}
