package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	XPCredits              prometheus.Counter
	XPPoints               prometheus.Counter
	RolloverRuns           prometheus.Counter
	LeaguesProcessed       prometheus.Counter
	LeaguesFailed          prometheus.Counter
	LeagueRolloverDuration prometheus.Histogram
	AwardsGranted          prometheus.Counter
	SlackNotifSent         prometheus.Counter
	SlackNotifFailed       prometheus.Counter
	StartupTimeSeconds     prometheus.Gauge
}
