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

type Server struct {
	Store          league.Store
	Attempts       attempts.Log
	Query          query.Service
	Rollover       *rollover.Job
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	InngestHandler http.Handler
	Cfg            config.Config
	Clock          clock.Clock
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
