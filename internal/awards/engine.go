package awards

import (
	"fmt"

	"github.com/kvistberg/studyleague/internal/attempts"
	"github.com/kvistberg/studyleague/internal/league"
)

// Compute derives the weekly superlatives for one closed league. Members must
// arrive ordered by weekly XP descending (the rollover order); attempts are
// the league members' attempts within the week window. Each rule yields at
// most one winner, and a student may win several awards.
//
// All tie-breaks are first-encountered: a later member only takes an award by
// strictly beating the current holder.
func Compute(members []league.Member, atts []attempts.Attempt) []Award {
	var out []Award

	if a := mostImproved(members); a != nil {
		out = append(out, *a)
	}

	byStudent := make(map[string][]attempts.Attempt)
	for _, a := range atts {
		byStudent[a.StudentID] = append(byStudent[a.StudentID], a)
	}

	if a := speedDemon(members, byStudent); a != nil {
		out = append(out, *a)
	}
	if a := accuracyKing(members, byStudent); a != nil {
		out = append(out, *a)
	}
	if a := explorer(members, byStudent); a != nil {
		out = append(out, *a)
	}
	return out
}

// mostImproved goes to the runner-up by weekly XP, deliberately skipping the
// outright winner.
func mostImproved(members []league.Member) *Award {
	if len(members) < 2 {
		return nil
	}
	m := members[1]
	return &Award{
		StudentID: m.StudentID,
		WeekStart: m.WeekStart,
		Type:      MostImproved,
		Value:     fmt.Sprintf("%d XP this week", m.WeeklyXP),
	}
}

func speedDemon(members []league.Member, byStudent map[string][]attempts.Attempt) *Award {
	var (
		winner *league.Member
		best   int
	)
	for i := range members {
		count := 0
		for _, a := range byStudent[members[i].StudentID] {
			if a.IsCorrect && a.TimeTakenMs >= speedDemonFloorMs && a.TimeTakenMs < speedDemonFastMs {
				count++
			}
		}
		if count >= speedDemonMinCount && count > best {
			winner = &members[i]
			best = count
		}
	}
	if winner == nil {
		return nil
	}
	return &Award{
		StudentID: winner.StudentID,
		WeekStart: winner.WeekStart,
		Type:      SpeedDemon,
		Value:     fmt.Sprintf("%d fast correct answers", best),
	}
}

func accuracyKing(members []league.Member, byStudent map[string][]attempts.Attempt) *Award {
	var (
		winner *league.Member
		best   float64
	)
	for i := range members {
		atts := byStudent[members[i].StudentID]
		if len(atts) < accuracyMinAttempts {
			continue
		}
		correct := 0
		for _, a := range atts {
			if a.IsCorrect {
				correct++
			}
		}
		accuracy := float64(correct) / float64(len(atts))
		if accuracy >= accuracyMinRatio && accuracy > best {
			winner = &members[i]
			best = accuracy
		}
	}
	if winner == nil {
		return nil
	}
	return &Award{
		StudentID: winner.StudentID,
		WeekStart: winner.WeekStart,
		Type:      AccuracyKing,
		Value:     fmt.Sprintf("%.0f%% accuracy", best*100),
	}
}

func explorer(members []league.Member, byStudent map[string][]attempts.Attempt) *Award {
	var (
		winner *league.Member
		best   int
	)
	for i := range members {
		topics := make(map[string]struct{})
		for _, a := range byStudent[members[i].StudentID] {
			topics[a.TopicID] = struct{}{}
		}
		if len(topics) >= explorerMinTopics && len(topics) > best {
			winner = &members[i]
			best = len(topics)
		}
	}
	if winner == nil {
		return nil
	}
	return &Award{
		StudentID: winner.StudentID,
		WeekStart: winner.WeekStart,
		Type:      Explorer,
		Value:     fmt.Sprintf("%d topics explored", best),
	}
}
