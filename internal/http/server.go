package http

import (
	"net/http"

	"github.com/kvistberg/studyleague/internal/attempts"
	"github.com/kvistberg/studyleague/internal/clock"
	"github.com/kvistberg/studyleague/internal/config"
	"github.com/kvistberg/studyleague/internal/league"
	"github.com/kvistberg/studyleague/internal/metrics"
	"github.com/kvistberg/studyleague/internal/pubsub"
	"github.com/kvistberg/studyleague/internal/query"
	"github.com/kvistberg/studyleague/internal/rollover"
)

func NewServer(store league.Store, attemptLog attempts.Log, querySvc query.Service, rolloverJob *rollover.Job, metricsSvc metrics.Metrics, metricsHandler http.Handler, inngestHandler http.Handler, cfg config.Config, clk clock.Clock, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Attempts:       attemptLog,
		Query:          querySvc,
		Rollover:       rolloverJob,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		InngestHandler: inngestHandler,
		Cfg:            cfg,
		Clock:          clk,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// This makes it easy to add more middlewares in the future, like an authentication middleware.
	// e.g. Chain(s.MyHandler(), paramsMiddleware, authMiddleware)
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/students", Chain(s.StudentsHandler(), paramsMiddleware))
	s.Router.Handle("/attempts", Chain(s.AttemptHandler(), paramsMiddleware))
	s.Router.Handle("/standings", Chain(s.StandingsHandler(), paramsMiddleware))
	s.Router.Handle("/last-week", Chain(s.LastWeekHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/usage", Chain(s.DailyUsageHandler(), paramsMiddleware))
	s.Router.Handle("/rollover", Chain(s.RolloverHandler(), paramsMiddleware))
	s.Router.Handle("/pubsub/attempts", Chain(s.PubSubAttemptHandler(), paramsMiddleware))
	if s.InngestHandler != nil {
		s.Router.Handle("/api/inngest", s.InngestHandler)
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
