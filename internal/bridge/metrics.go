package bridge

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// bridgeMetrics holds the execution bridge metrics registered on the
// default Prometheus registry.
type bridgeMetrics struct {
	enqueuedTotal prometheus.Counter
	executedTotal prometheus.Counter
	panicsTotal   prometheus.Counter
	queueDepth    prometheus.Gauge
}

var (
	metricsOnce     sync.Once
	metricsInstance *bridgeMetrics
)

func getBridgeMetrics() *bridgeMetrics {
	metricsOnce.Do(func() {
		metricsInstance = &bridgeMetrics{
			enqueuedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "avembed_bridge_tasks_enqueued_total",
				Help: "Total tasks accepted by the execution bridge.",
			}),
			executedTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "avembed_bridge_tasks_executed_total",
				Help: "Total tasks executed by the bridge loop.",
			}),
			panicsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "avembed_bridge_task_panics_total",
				Help: "Total task panics recovered by the bridge.",
			}),
			queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "avembed_bridge_queue_depth",
				Help: "Current number of queued tasks.",
			}),
		}
	})
	return metricsInstance
}
