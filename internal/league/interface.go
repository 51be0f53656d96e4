package league

import (
	"time"

	"github.com/kvistberg/studyleague/internal/clock"
)

// Store defines the interface for interacting with league data.
type Store interface {
	UpsertStudent(s Student) error
	GetStudent(id string) (*Student, error)
	GetAllStudents() ([]Student, error)

	// EnsureMembership returns the student's membership for the given week,
	// creating the league seat if needed. Idempotent: repeated calls within
	// one week return the same membership.
	EnsureMembership(studentID string, week clock.Week) (*Membership, error)
	GetMembership(studentID string, week clock.Week) (*Membership, error)

	// CreditXP applies one scored attempt's XP atomically across the weekly
	// counter, the lifetime counter and the daily usage log. Credits are
	// keyed by attempt id so retries are no-ops.
	CreditXP(attemptID, studentID string, amount int, week clock.Week, now time.Time) (*Membership, error)

	GetLeague(id string) (*League, error)
	// LeagueMembers returns members ordered by weekly XP descending, ties
	// broken by earliest join then membership id.
	LeagueMembers(leagueID string) ([]Member, error)
	// UnprocessedLeagues lists leagues of the given week not yet rolled over.
	UnprocessedLeagues(week clock.Week) ([]League, error)
	// FinalizeLeague persists rollover results and new student tiers in one
	// transaction. Returns false without writing when the league was already
	// processed.
	FinalizeLeague(leagueID string, results []RolloverResult) (bool, error)

	AllTimeLeaderboard(limit int) ([]Student, error)
	GetDailyUsage(studentID string, day string) (*DailyUsage, error)

	Clear()
}
