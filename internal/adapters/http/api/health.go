package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/poseflow/pkg/metrics"
)

// HandleHealth handles GET /healthz by exposing the service metrics registry.
// A successful scrape doubles as the liveness signal.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}).ServeHTTP(w, r)
}
