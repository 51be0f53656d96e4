package league

import (
	"database/sql"
	"errors"
	"sync"
	"time"
)

// MaxLeagueSize caps how many students share one league for one week.
// Overflow is absorbed by sibling leagues with the same tier and grade.
const MaxLeagueSize = 25

// Tier bounds for students. Promotion and demotion clamp to this range.
const (
	MinTier = 1
	MaxTier = 5
)

var (
	// ErrNotFound indicates a student, league or membership row is absent.
	ErrNotFound = errors.New("not found")
	// ErrWeekClosed indicates an XP write targeted a week whose league has
	// already been rolled over. Historical weeks are immutable.
	ErrWeekClosed = errors.New("week already rolled over")
	// ErrLeagueFull is internal to the join path; callers never see it
	// because a full league falls back to a sibling.
	ErrLeagueFull = errors.New("league is full")
)

// store handles all database operations for the league subsystem.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Student mirrors the identity collaborator's view of a learner. The league
// subsystem reads grade/tier on join and writes tier and lifetime XP.
type Student struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Grade      int    `json:"grade"`
	Tier       int    `json:"tier"`
	LifetimeXP int    `json:"lifetime_xp"`
}

// League is a capacity-bounded weekly group of students sharing (tier, grade).
// Created lazily, never deleted; Processed flips once at rollover.
type League struct {
	ID          string    `json:"id"`
	Tier        int       `json:"tier"`
	Grade       int       `json:"grade"`
	WeekStart   time.Time `json:"week_start"`
	WeekEnd     time.Time `json:"week_end"`
	Name        string    `json:"name"`
	MemberCount int       `json:"member_count"`
	Processed   bool      `json:"processed"`
}

// Membership is a student's participation record in one league for one week.
// Rank and the promotion fields stay empty until rollover finalizes the week;
// FromTier/ToTier are persisted at that point so later tier changes cannot
// make the result banner stale.
type Membership struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	LeagueID  string    `json:"league_id"`
	WeekStart time.Time `json:"week_start"`
	WeeklyXP  int       `json:"weekly_xp"`
	Rank      *int      `json:"rank,omitempty"`
	Promoted  bool      `json:"promoted"`
	Demoted   bool      `json:"demoted"`
	FromTier  *int      `json:"from_tier,omitempty"`
	ToTier    *int      `json:"to_tier,omitempty"`
	JoinedAt  time.Time `json:"joined_at"`
}

// Member is a membership joined with its student, as loaded for ranking and
// standings. Slices of Member are always ordered weekly XP descending with
// earliest join breaking ties.
type Member struct {
	Membership
	Name  string `json:"name"`
	Grade int    `json:"grade"`
	Tier  int    `json:"tier"`
}

// RolloverResult carries the outcome of ranking one member, applied to the
// membership row and the student's tier in a single transaction per league.
type RolloverResult struct {
	MembershipID string
	StudentID    string
	Rank         int
	Promoted     bool
	Demoted      bool
	FromTier     int
	ToTier       int
}

// DailyUsage is the per-(student, day) reporting side-channel incremented
// alongside every XP credit.
type DailyUsage struct {
	StudentID string `json:"student_id"`
	Day       string `json:"day"`
	XPEarned  int    `json:"xp_earned"`
	Attempts  int    `json:"attempts"`
}
