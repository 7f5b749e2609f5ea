package route

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"calendar/src-server/utils"
)

// NewHandler mounts every route and wraps the mux in LogMiddleware.
func NewHandler(as *utils.AppState, gatherer prometheus.Gatherer) http.Handler {
	muxer := http.NewServeMux()
	muxer.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	People(muxer, as)
	Events(muxer, as)
	Attendances(muxer, as)
	Ical(muxer, as)
	return LogMiddleware(muxer)
}
