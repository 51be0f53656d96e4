package rollover

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/kvistberg/studyleague/internal/attempts"
	"github.com/kvistberg/studyleague/internal/awards"
	"github.com/kvistberg/studyleague/internal/clock"
	"github.com/kvistberg/studyleague/internal/league"
	"github.com/kvistberg/studyleague/internal/metrics"
	"github.com/kvistberg/studyleague/internal/notifier"
)

// promotionRate is the fraction of a league promoted and demoted each week,
// with a floor of one member each.
const promotionRate = 0.2

// New creates a new rollover Job.
func New(store league.Store, attemptLog attempts.Log, awardStore awards.Store, notifier notifier.Notifier, metrics metrics.Metrics, clk clock.Clock) *Job {
	return &Job{
		store:    store,
		attempts: attemptLog,
		awards:   awardStore,
		notifier: notifier,
		metrics:  metrics,
		clock:    clk,
	}
}

// ProcessWeeklyLeagues rolls over the most recently finished week. This is
// the entry point the weekly cron hits.
func (j *Job) ProcessWeeklyLeagues(dryRun bool) (*Summary, error) {
	week := clock.WeekOf(j.clock.Now()).Prev()
	return j.Process(week, dryRun)
}

// Process closes out every unprocessed league of the given week. Reruns are
// safe: already-processed leagues are skipped, and a failure in one league
// never blocks the others.
func (j *Job) Process(week clock.Week, dryRun bool) (*Summary, error) {
	now := j.clock.Now()
	if now.Before(week.End) {
		return nil, fmt.Errorf("%w: week ends %s", ErrWeekOpen, week.End.Format(time.RFC3339))
	}

	j.metrics.IncRolloverRuns()
	log.Info("Starting weekly rollover", "week_start", week.Start.Format(time.DateOnly), "dry_run", dryRun)

	leagues, err := j.store.UnprocessedLeagues(week)
	if err != nil {
		return nil, fmt.Errorf("listing unprocessed leagues: %w", err)
	}

	summary := &Summary{Week: week, WeekStart: week.Key()}
	if len(leagues) == 0 {
		log.Info("No leagues to roll over", "week_start", week.Start.Format(time.DateOnly))
		return summary, nil
	}

	log.Info("Found leagues to roll over", "count", len(leagues))

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		digestAwards []awards.Award
		names        = make(map[string]string)
	)
	for _, lg := range leagues {
		wg.Add(1)
		go func(lg league.League) {
			defer wg.Done()

			start := time.Now()
			outcome, err := j.processLeague(lg, week, dryRun)
			j.metrics.ObserveLeagueRolloverDuration(time.Since(start).Seconds())

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Error("League rollover failed", "error", err, "leagueID", lg.ID, "name", lg.Name)
				j.metrics.IncLeaguesFailed()
				summary.Failed++
				return
			}
			if !outcome.applied {
				log.Debug("League already processed, skipping", "leagueID", lg.ID)
				summary.Skipped++
				return
			}
			j.metrics.IncLeaguesProcessed()
			summary.Processed++
			summary.Promoted += outcome.promoted
			summary.Demoted += outcome.demoted
			summary.Awards += outcome.granted
			digestAwards = append(digestAwards, outcome.awards...)
			for id, name := range outcome.names {
				names[id] = name
			}
		}(lg)
	}
	wg.Wait()

	log.Info("Weekly rollover finished",
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
		"promoted", summary.Promoted,
		"demoted", summary.Demoted,
		"awards", summary.Awards,
	)

	if summary.Processed > 0 && j.notifier != nil {
		digest := &notifier.RolloverDigest{
			Week:      week,
			Processed: summary.Processed,
			Failed:    summary.Failed,
			Promoted:  summary.Promoted,
			Demoted:   summary.Demoted,
			Awards:    digestAwards,
			Names:     names,
		}
		// Best effort: a Slack outage must not fail the rollover.
		if err := j.notifier.SendRolloverDigest(digest, dryRun); err != nil {
			log.Error("Failed to send rollover digest", "error", err)
		}
	}

	return summary, nil
}

// processLeague ranks one league, persists the results and computes awards.
func (j *Job) processLeague(lg league.League, week clock.Week, dryRun bool) (*leagueOutcome, error) {
	members, err := j.store.LeagueMembers(lg.ID)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}

	outcome := &leagueOutcome{names: make(map[string]string)}

	if len(members) == 0 {
		// Mark empty leagues processed so they never come back.
		if dryRun {
			log.Info("[Dry Run] Would mark empty league processed", "leagueID", lg.ID)
			outcome.applied = true
			return outcome, nil
		}
		applied, err := j.store.FinalizeLeague(lg.ID, nil)
		if err != nil {
			return nil, fmt.Errorf("finalizing empty league: %w", err)
		}
		outcome.applied = applied
		return outcome, nil
	}

	results := rankMembers(members)
	for _, r := range results {
		if r.Promoted {
			outcome.promoted++
		}
		if r.Demoted {
			outcome.demoted++
		}
	}

	if dryRun {
		log.Info("[Dry Run] Would finalize league",
			"leagueID", lg.ID, "name", lg.Name,
			"members", len(members), "promoted", outcome.promoted, "demoted", outcome.demoted)
		outcome.applied = true
		return outcome, nil
	}

	applied, err := j.store.FinalizeLeague(lg.ID, results)
	if err != nil {
		return nil, fmt.Errorf("finalizing league: %w", err)
	}
	if !applied {
		return outcome, nil
	}
	outcome.applied = true
	log.Info("League finalized", "leagueID", lg.ID, "name", lg.Name,
		"members", len(members), "promoted", outcome.promoted, "demoted", outcome.demoted)

	if err := j.grantAwards(lg, week, members, outcome); err != nil {
		// Ranks and tiers are already committed; awards are additive, so
		// log and carry on rather than failing the league.
		log.Error("Failed to grant awards", "error", err, "leagueID", lg.ID)
	}

	return outcome, nil
}

func (j *Job) grantAwards(lg league.League, week clock.Week, members []league.Member, outcome *leagueOutcome) error {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.StudentID
		outcome.names[m.StudentID] = m.Name
	}

	atts, err := j.attempts.ListForStudents(ids, week.Start, week.End)
	if err != nil {
		return fmt.Errorf("loading attempts: %w", err)
	}

	list := awards.Compute(members, atts)
	if len(list) == 0 {
		return nil
	}

	inserted, err := j.awards.SaveAll(list)
	if err != nil {
		return fmt.Errorf("saving awards: %w", err)
	}
	j.metrics.AddAwardsGranted(float64(inserted))
	outcome.awards = list
	outcome.granted = inserted
	log.Info("Awards granted", "leagueID", lg.ID, "granted", inserted)
	return nil
}

// rankMembers assigns ranks and promotion flags. Members must already be
// ordered by weekly XP descending. Promotion wins when the promote and demote
// bands overlap in a small league.
func rankMembers(members []league.Member) []league.RolloverResult {
	n := len(members)
	band := int(float64(n) * promotionRate)
	if band < 1 {
		band = 1
	}

	results := make([]league.RolloverResult, n)
	for i, m := range members {
		rank := i + 1
		promoted := rank <= band
		demoted := !promoted && rank > n-band

		toTier := m.Tier
		if promoted {
			toTier = clampTier(m.Tier + 1)
		} else if demoted {
			toTier = clampTier(m.Tier - 1)
		}

		results[i] = league.RolloverResult{
			MembershipID: m.ID,
			StudentID:    m.StudentID,
			Rank:         rank,
			Promoted:     promoted,
			Demoted:      demoted,
			FromTier:     m.Tier,
			ToTier:       toTier,
		}
	}
	return results
}

func clampTier(t int) int {
	if t < league.MinTier {
		return league.MinTier
	}
	if t > league.MaxTier {
		return league.MaxTier
	}
	return t
}
