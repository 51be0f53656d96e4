package clock

import "time"

// LeagueZone is the fixed civil offset all league weeks are anchored to.
// A fixed offset (no DST) keeps week bounds deterministic year round.
var LeagueZone = time.FixedZone("IST", 5*3600+30*60)

// Clock abstracts wall-clock reads so business logic never calls time.Now
// directly. Tests inject a Fixed clock to pin week bounds.
type Clock interface {
	Now() time.Time
}

// Real reads the actual wall clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// Week is a half-open [Start, End) interval covering Monday 00:00 up to the
// following Monday 00:00 in LeagueZone.
type Week struct {
	Start time.Time
	End   time.Time
}

// WeekOf maps an instant to the league week containing it.
func WeekOf(now time.Time) Week {
	local := now.In(LeagueZone)
	// time.Weekday numbers Sunday as 0; shift so Monday is day 0.
	daysSinceMonday := (int(local.Weekday()) + 6) % 7
	year, month, day := local.AddDate(0, 0, -daysSinceMonday).Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, LeagueZone)
	return Week{Start: start, End: start.AddDate(0, 0, 7)}
}

// Prev returns the week immediately before w.
func (w Week) Prev() Week {
	return Week{Start: w.Start.AddDate(0, 0, -7), End: w.Start}
}

// Contains reports whether t falls inside the week.
func (w Week) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Key is the canonical storage key for a week: the unix timestamp of its start.
func (w Week) Key() int64 { return w.Start.Unix() }

// DayKey formats an instant as a YYYY-MM-DD day bucket in LeagueZone,
// used for per-day usage counters.
func DayKey(t time.Time) string {
	return t.In(LeagueZone).Format("2006-01-02")
}
