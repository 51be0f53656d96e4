package rollover

import (
	"errors"

	"github.com/kvistberg/studyleague/internal/attempts"
	"github.com/kvistberg/studyleague/internal/awards"
	"github.com/kvistberg/studyleague/internal/clock"
	"github.com/kvistberg/studyleague/internal/league"
	"github.com/kvistberg/studyleague/internal/metrics"
	"github.com/kvistberg/studyleague/internal/notifier"
)

// ErrWeekOpen indicates a rollover was requested for a week that has not
// finished yet.
var ErrWeekOpen = errors.New("week has not ended yet")

// Job closes out a finished week: it ranks every unprocessed league, applies
// promotions and demotions, grants the weekly awards and posts a digest.
type Job struct {
	store    league.Store
	attempts attempts.Log
	awards   awards.Store
	notifier notifier.Notifier
	metrics  metrics.Metrics
	clock    clock.Clock
}

// Summary reports what one rollover run did across all leagues.
type Summary struct {
	Week      clock.Week `json:"-"`
	WeekStart int64      `json:"week_start"`
	Processed int        `json:"leagues_processed"`
	Skipped   int        `json:"leagues_skipped"`
	Failed    int        `json:"leagues_failed"`
	Promoted  int        `json:"promoted"`
	Demoted   int        `json:"demoted"`
	Awards    int        `json:"awards_granted"`
}

// leagueOutcome is the per-league result folded into the run summary.
type leagueOutcome struct {
	applied  bool
	promoted int
	demoted  int
	awards   []awards.Award
	names    map[string]string
	granted  int
}
