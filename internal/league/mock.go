package league

import (
	"sync"
	"time"

	"github.com/kvistberg/studyleague/internal/clock"
)

// MockStore is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertStudentFunc      func(s Student) error
	GetStudentFunc         func(id string) (*Student, error)
	GetAllStudentsFunc     func() ([]Student, error)
	EnsureMembershipFunc   func(studentID string, week clock.Week) (*Membership, error)
	GetMembershipFunc      func(studentID string, week clock.Week) (*Membership, error)
	CreditXPFunc           func(attemptID, studentID string, amount int, week clock.Week, now time.Time) (*Membership, error)
	GetLeagueFunc          func(id string) (*League, error)
	LeagueMembersFunc      func(leagueID string) ([]Member, error)
	UnprocessedLeaguesFunc func(week clock.Week) ([]League, error)
	FinalizeLeagueFunc     func(leagueID string, results []RolloverResult) (bool, error)
	AllTimeLeaderboardFunc func(limit int) ([]Student, error)
	GetDailyUsageFunc      func(studentID, day string) (*DailyUsage, error)

	// Call records
	UpsertStudentCalls    []Student
	EnsureMembershipCalls []struct {
		StudentID string
		Week      clock.Week
	}
	CreditXPCalls []struct {
		AttemptID string
		StudentID string
		Amount    int
	}
	FinalizeLeagueCalls []struct {
		LeagueID string
		Results  []RolloverResult
	}
	ClearCalls int
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertStudentCalls = nil
	m.EnsureMembershipCalls = nil
	m.CreditXPCalls = nil
	m.FinalizeLeagueCalls = nil
	m.ClearCalls = 0
}

func (m *MockStore) UpsertStudent(s Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertStudentCalls = append(m.UpsertStudentCalls, s)
	if m.UpsertStudentFunc != nil {
		return m.UpsertStudentFunc(s)
	}
	return nil
}

func (m *MockStore) GetStudent(id string) (*Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetStudentFunc != nil {
		return m.GetStudentFunc(id)
	}
	return nil, ErrNotFound
}

func (m *MockStore) GetAllStudents() ([]Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllStudentsFunc != nil {
		return m.GetAllStudentsFunc()
	}
	return nil, nil
}

func (m *MockStore) EnsureMembership(studentID string, week clock.Week) (*Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EnsureMembershipCalls = append(m.EnsureMembershipCalls, struct {
		StudentID string
		Week      clock.Week
	}{studentID, week})
	if m.EnsureMembershipFunc != nil {
		return m.EnsureMembershipFunc(studentID, week)
	}
	return &Membership{StudentID: studentID, WeekStart: week.Start}, nil
}

func (m *MockStore) GetMembership(studentID string, week clock.Week) (*Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetMembershipFunc != nil {
		return m.GetMembershipFunc(studentID, week)
	}
	return nil, ErrNotFound
}

func (m *MockStore) CreditXP(attemptID, studentID string, amount int, week clock.Week, now time.Time) (*Membership, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreditXPCalls = append(m.CreditXPCalls, struct {
		AttemptID string
		StudentID string
		Amount    int
	}{attemptID, studentID, amount})
	if m.CreditXPFunc != nil {
		return m.CreditXPFunc(attemptID, studentID, amount, week, now)
	}
	return &Membership{StudentID: studentID, WeekStart: week.Start, WeeklyXP: amount}, nil
}

func (m *MockStore) GetLeague(id string) (*League, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetLeagueFunc != nil {
		return m.GetLeagueFunc(id)
	}
	return nil, ErrNotFound
}

func (m *MockStore) LeagueMembers(leagueID string) ([]Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LeagueMembersFunc != nil {
		return m.LeagueMembersFunc(leagueID)
	}
	return nil, nil
}

func (m *MockStore) UnprocessedLeagues(week clock.Week) ([]League, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UnprocessedLeaguesFunc != nil {
		return m.UnprocessedLeaguesFunc(week)
	}
	return nil, nil
}

func (m *MockStore) FinalizeLeague(leagueID string, results []RolloverResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinalizeLeagueCalls = append(m.FinalizeLeagueCalls, struct {
		LeagueID string
		Results  []RolloverResult
	}{leagueID, results})
	if m.FinalizeLeagueFunc != nil {
		return m.FinalizeLeagueFunc(leagueID, results)
	}
	return true, nil
}

func (m *MockStore) AllTimeLeaderboard(limit int) ([]Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AllTimeLeaderboardFunc != nil {
		return m.AllTimeLeaderboardFunc(limit)
	}
	return nil, nil
}

func (m *MockStore) GetDailyUsage(studentID, day string) (*DailyUsage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetDailyUsageFunc != nil {
		return m.GetDailyUsageFunc(studentID, day)
	}
	return nil, ErrNotFound
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
}
