package query

// Service defines the read-only views served to clients.
type Service interface {
	// CurrentStandings resolves the student's in-progress league and returns
	// its members with presentational ranks.
	CurrentStandings(studentID string) (*Standings, error)
	// LastWeekResult loads the prior week's finalized membership, banner and
	// awards for the student.
	LastWeekResult(studentID string) (*WeekResult, error)
	// AllTimeLeaderboard ranks all students by lifetime XP.
	AllTimeLeaderboard(limit int) ([]LeaderboardRow, error)
}
