package metrics

import "sync"

// MockMetrics is a mock implementation of the Metrics interface for testing.
type MockMetrics struct {
	mu sync.Mutex

	XPCreditsCount        int
	XPPointsTotal         float64
	RolloverRunsCount     int
	LeaguesProcessedCount int
	LeaguesFailedCount    int
	RolloverDurations     []float64
	AwardsGrantedTotal    float64
	SlackNotifSentCount   int
	SlackNotifFailedCount int
	StartupTime           float64
}

var _ Metrics = (*MockMetrics)(nil)

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{}
}

func (m *MockMetrics) IncXPCredits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.XPCreditsCount++
}

func (m *MockMetrics) AddXPPoints(points float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.XPPointsTotal += points
}

func (m *MockMetrics) IncRolloverRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RolloverRunsCount++
}

func (m *MockMetrics) IncLeaguesProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LeaguesProcessedCount++
}

func (m *MockMetrics) IncLeaguesFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LeaguesFailedCount++
}

func (m *MockMetrics) ObserveLeagueRolloverDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RolloverDurations = append(m.RolloverDurations, duration)
}

func (m *MockMetrics) AddAwardsGranted(count float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AwardsGrantedTotal += count
}

func (m *MockMetrics) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifSentCount++
}

func (m *MockMetrics) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackNotifFailedCount++
}

func (m *MockMetrics) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTime = duration
}
