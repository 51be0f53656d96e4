package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		XPCredits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_xp_credits_total",
			Help: "The total number of XP credit operations applied.",
		}),
		XPPoints: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_xp_points_total",
			Help: "The total XP points awarded across all students.",
		}),
		RolloverRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_rollover_runs_total",
			Help: "The total number of times the weekly rollover job has run.",
		}),
		LeaguesProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_rollover_leagues_processed_total",
			Help: "The total number of leagues finalized by the rollover job.",
		}),
		LeaguesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_rollover_leagues_failed_total",
			Help: "The total number of leagues whose rollover failed and was skipped.",
		}),
		LeagueRolloverDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "league_rollover_duration_seconds",
			Help:    "The duration of individual league rollovers.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		AwardsGranted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_awards_granted_total",
			Help: "The total number of weekly awards granted.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_slack_notifications_sent_total",
			Help: "The total number of Slack notifications sent successfully.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "league_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "league_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.XPCredits,
		s.XPPoints,
		s.RolloverRuns,
		s.LeaguesProcessed,
		s.LeaguesFailed,
		s.LeagueRolloverDuration,
		s.AwardsGranted,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncXPCredits() {
	s.XPCredits.Inc()
}

func (s *Service) AddXPPoints(points float64) {
	s.XPPoints.Add(points)
}

func (s *Service) IncRolloverRuns() {
	s.RolloverRuns.Inc()
}

func (s *Service) IncLeaguesProcessed() {
	s.LeaguesProcessed.Inc()
}

func (s *Service) IncLeaguesFailed() {
	s.LeaguesFailed.Inc()
}

func (s *Service) ObserveLeagueRolloverDuration(duration float64) {
	s.LeagueRolloverDuration.Observe(duration)
}

func (s *Service) AddAwardsGranted(count float64) {
	s.AwardsGranted.Add(count)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
