package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncXPCredits()
	AddXPPoints(points float64)
	IncRolloverRuns()
	IncLeaguesProcessed()
	IncLeaguesFailed()
	ObserveLeagueRolloverDuration(duration float64)
	AddAwardsGranted(count float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
