package query

import (
	"errors"
	"fmt"

	"github.com/kvistberg/studyleague/internal/awards"
	"github.com/kvistberg/studyleague/internal/clock"
	"github.com/kvistberg/studyleague/internal/league"
)

var _ Service = (*service)(nil)

// New creates a query service over the given stores.
func New(store league.Store, awardStore awards.Store, clk clock.Clock) Service {
	return &service{
		store:  store,
		awards: awardStore,
		clock:  clk,
	}
}

func (s *service) CurrentStandings(studentID string) (*Standings, error) {
	week := clock.WeekOf(s.clock.Now())

	m, err := s.store.GetMembership(studentID, week)
	if errors.Is(err, league.ErrNotFound) {
		// Students without a membership get an empty view, not an error.
		return &Standings{Status: StatusNone, WeekStart: week.Key()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading membership: %w", err)
	}

	lg, err := s.store.GetLeague(m.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("loading league: %w", err)
	}

	members, err := s.store.LeagueMembers(m.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("loading members: %w", err)
	}

	out := &Standings{
		Status:    StatusOpen,
		WeekStart: week.Key(),
		League:    lg,
		Rows:      make([]StandingRow, len(members)),
	}
	for i, member := range members {
		row := StandingRow{
			Rank:      i + 1,
			StudentID: member.StudentID,
			Name:      member.Name,
			WeeklyXP:  member.WeeklyXP,
		}
		if member.StudentID == studentID {
			row.You = true
			out.YourRank = row.Rank
		}
		out.Rows[i] = row
	}
	return out, nil
}

func (s *service) LastWeekResult(studentID string) (*WeekResult, error) {
	week := clock.WeekOf(s.clock.Now()).Prev()

	m, err := s.store.GetMembership(studentID, week)
	if errors.Is(err, league.ErrNotFound) {
		return &WeekResult{Status: StatusNone, WeekStart: week.Key()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading membership: %w", err)
	}

	lg, err := s.store.GetLeague(m.LeagueID)
	if err != nil {
		return nil, fmt.Errorf("loading league: %w", err)
	}

	out := &WeekResult{
		WeekStart: week.Key(),
		WeeklyXP:  m.WeeklyXP,
	}
	if !lg.Processed {
		// Never show a speculative banner; the week closes when rollover runs.
		out.Status = StatusPending
		return out, nil
	}

	out.Status = StatusFinal
	out.Rank = m.Rank
	out.Promoted = m.Promoted
	out.Demoted = m.Demoted
	out.FromTier = m.FromTier
	out.ToTier = m.ToTier
	out.Banner = banner(m)

	got, err := s.awards.ForStudent(studentID, week)
	if err != nil {
		return nil, fmt.Errorf("loading awards: %w", err)
	}
	out.Awards = got

	return out, nil
}

func (s *service) AllTimeLeaderboard(limit int) ([]LeaderboardRow, error) {
	students, err := s.store.AllTimeLeaderboard(limit)
	if err != nil {
		return nil, fmt.Errorf("loading leaderboard: %w", err)
	}

	rows := make([]LeaderboardRow, len(students))
	for i, st := range students {
		rows[i] = LeaderboardRow{
			Rank:       i + 1,
			StudentID:  st.ID,
			Name:       st.Name,
			Grade:      st.Grade,
			Tier:       st.Tier,
			LifetimeXP: st.LifetimeXP,
		}
	}
	return rows, nil
}

// banner renders the promotion outcome from the tiers persisted at rollover,
// so a later tier change can not make it stale.
func banner(m *league.Membership) string {
	if m.FromTier == nil || m.ToTier == nil {
		return ""
	}
	switch {
	case m.Promoted && *m.ToTier > *m.FromTier:
		return fmt.Sprintf("Promoted to Tier %d", *m.ToTier)
	case m.Promoted:
		return fmt.Sprintf("Finished top of Tier %d", *m.FromTier)
	case m.Demoted && *m.ToTier < *m.FromTier:
		return fmt.Sprintf("Demoted to Tier %d", *m.ToTier)
	case m.Demoted:
		return fmt.Sprintf("Finished bottom of Tier %d", *m.FromTier)
	default:
		return fmt.Sprintf("Stayed in Tier %d", *m.FromTier)
	}
}
