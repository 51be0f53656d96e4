package awards

import (
	"sync"

	"github.com/kvistberg/studyleague/internal/clock"
)

// MockStore is a mock implementation of the Store interface for testing.
type MockStore struct {
	mu sync.Mutex

	SaveAllFunc    func(list []Award) (int, error)
	ForStudentFunc func(studentID string, week clock.Week) ([]Award, error)

	SaveAllCalls [][]Award
}

var _ Store = (*MockStore)(nil)

func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) SaveAll(list []Award) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveAllCalls = append(m.SaveAllCalls, list)
	if m.SaveAllFunc != nil {
		return m.SaveAllFunc(list)
	}
	return len(list), nil
}

func (m *MockStore) ForStudent(studentID string, week clock.Week) ([]Award, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ForStudentFunc != nil {
		return m.ForStudentFunc(studentID, week)
	}
	return nil, nil
}
