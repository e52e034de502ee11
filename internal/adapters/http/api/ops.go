package api

import (
	"net/http"

	"github.com/okian/vectordraw/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider reports a snapshot of the grading pipeline.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// OpsHandler serves the operational endpoints: metrics on /healthz and the
// pipeline snapshot on /stats.
type OpsHandler struct {
	stats   StatsProvider
	metrics http.Handler
}

// NewOpsHandler creates the operational handler. A nil gatherer falls back to
// the process-wide metrics registry.
func NewOpsHandler(stats StatsProvider, gatherer prometheus.Gatherer) *OpsHandler {
	if gatherer == nil {
		gatherer = metrics.GetRegistry()
	}
	return &OpsHandler{
		stats:   stats,
		metrics: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz by exposing the grading metrics.
func (h *OpsHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// HandleStats handles GET /stats.
func (h *OpsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.stats.GetStats())
}
