package query

import "sync"

// MockService is a mock implementation of the Service interface for testing.
type MockService struct {
	mu sync.Mutex

	CurrentStandingsFunc   func(studentID string) (*Standings, error)
	LastWeekResultFunc     func(studentID string) (*WeekResult, error)
	AllTimeLeaderboardFunc func(limit int) ([]LeaderboardRow, error)

	CurrentStandingsCalls []string
	LastWeekResultCalls   []string
}

var _ Service = (*MockService)(nil)

func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) CurrentStandings(studentID string) (*Standings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CurrentStandingsCalls = append(m.CurrentStandingsCalls, studentID)
	if m.CurrentStandingsFunc != nil {
		return m.CurrentStandingsFunc(studentID)
	}
	return &Standings{Status: StatusNone}, nil
}

func (m *MockService) LastWeekResult(studentID string) (*WeekResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastWeekResultCalls = append(m.LastWeekResultCalls, studentID)
	if m.LastWeekResultFunc != nil {
		return m.LastWeekResultFunc(studentID)
	}
	return &WeekResult{Status: StatusNone}, nil
}

func (m *MockService) AllTimeLeaderboard(limit int) ([]LeaderboardRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AllTimeLeaderboardFunc != nil {
		return m.AllTimeLeaderboardFunc(limit)
	}
	return nil, nil
}
