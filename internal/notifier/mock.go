package notifier

import "sync"

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendRolloverDigestCalls []*RolloverDigest
	SendRolloverDigestFunc  func(digest *RolloverDigest, dryRun bool) error
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRolloverDigestCalls = nil
}

func (m *Mock) SendRolloverDigest(digest *RolloverDigest, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendRolloverDigestCalls = append(m.SendRolloverDigestCalls, digest)
	if m.SendRolloverDigestFunc != nil {
		return m.SendRolloverDigestFunc(digest, dryRun)
	}
	return nil
}
