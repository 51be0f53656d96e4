package attempts

import (
	"sync"
	"time"
)

// MockLog is a mock implementation of the Log interface for testing.
// It is safe for concurrent use.
type MockLog struct {
	mu sync.Mutex

	RecordFunc          func(a Attempt) error
	ListForStudentsFunc func(studentIDs []string, from, to time.Time) ([]Attempt, error)

	RecordCalls []Attempt
}

// NewMock creates a new mock instance.
func NewMock() *MockLog {
	return &MockLog{}
}

func (m *MockLog) Record(a Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RecordCalls = append(m.RecordCalls, a)
	if m.RecordFunc != nil {
		return m.RecordFunc(a)
	}
	return nil
}

func (m *MockLog) ListForStudents(studentIDs []string, from, to time.Time) ([]Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListForStudentsFunc != nil {
		return m.ListForStudentsFunc(studentIDs, from, to)
	}
	return []Attempt{}, nil
}
