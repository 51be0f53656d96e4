package query

import (
	"github.com/kvistberg/studyleague/internal/awards"
	"github.com/kvistberg/studyleague/internal/clock"
	"github.com/kvistberg/studyleague/internal/league"
)

// Status of a standings or result view for one student.
const (
	// StatusNone means the student had no membership for the requested week.
	StatusNone = "none"
	// StatusOpen means the week is still in progress; ranks are presentational.
	StatusOpen = "open"
	// StatusPending means the week has ended but rollover has not run yet.
	StatusPending = "pending"
	// StatusFinal means rollover has persisted the result.
	StatusFinal = "final"
)

// service answers read-only views over the league stores.
type service struct {
	store  league.Store
	awards awards.Store
	clock  clock.Clock
}

// StandingRow is one member's line in the current standings.
type StandingRow struct {
	Rank      int    `json:"rank"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	WeeklyXP  int    `json:"weekly_xp"`
	You       bool   `json:"you,omitempty"`
}

// Standings is the in-progress view of a student's league. Ranks are computed
// on the fly; nothing here is persisted until rollover.
type Standings struct {
	Status    string         `json:"status"`
	WeekStart int64          `json:"week_start"`
	League    *league.League `json:"league,omitempty"`
	Rows      []StandingRow  `json:"rows,omitempty"`
	YourRank  int            `json:"your_rank,omitempty"`
}

// WeekResult is a student's finalized (or not yet finalized) outcome for the
// prior week, including the promotion banner and any awards.
type WeekResult struct {
	Status    string         `json:"status"`
	WeekStart int64          `json:"week_start"`
	WeeklyXP  int            `json:"weekly_xp"`
	Rank      *int           `json:"rank,omitempty"`
	Promoted  bool           `json:"promoted"`
	Demoted   bool           `json:"demoted"`
	FromTier  *int           `json:"from_tier,omitempty"`
	ToTier    *int           `json:"to_tier,omitempty"`
	Banner    string         `json:"banner,omitempty"`
	Awards    []awards.Award `json:"awards,omitempty"`
}

// LeaderboardRow is one student's line in the all-time leaderboard.
type LeaderboardRow struct {
	Rank       int    `json:"rank"`
	StudentID  string `json:"student_id"`
	Name       string `json:"name"`
	Grade      int    `json:"grade"`
	Tier       int    `json:"tier"`
	LifetimeXP int    `json:"lifetime_xp"`
}
