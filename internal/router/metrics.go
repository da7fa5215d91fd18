package router

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// tableMetrics holds the route table metrics registered on the default
// Prometheus registry.
type tableMetrics struct {
	resolutionsTotal *prometheus.CounterVec
	registeredRoutes prometheus.Gauge
}

var (
	metricsOnce     sync.Once
	metricsInstance *tableMetrics
)

// getTableMetrics returns the process-wide route table metrics,
// creating them on first use.
func getTableMetrics() *tableMetrics {
	metricsOnce.Do(func() {
		metricsInstance = &tableMetrics{
			resolutionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "avembed_router_resolutions_total",
					Help: "Total route resolutions by outcome.",
				},
				[]string{"outcome"},
			),
			registeredRoutes: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "avembed_router_registered_routes",
					Help: "Number of registered routes.",
				},
			),
		}
	})
	return metricsInstance
}

func (m *tableMetrics) recordResolution(outcome Outcome) {
	m.resolutionsTotal.WithLabelValues(outcome.String()).Inc()
}
