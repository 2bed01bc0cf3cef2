package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// HistogramBuckets covers the latency range of the lifecycle API: most
// calls land well under a second, the tail is dominated by cold store
// reads and enrollment sync.
var HistogramBuckets = []float64{
	25, 50, 75, 100, 150, 200, 300, 400, 500,
	750, 1000, 1500, 2000,
	3000, 5000, 7500, 10000, 15000, 30000,
}

// Metric is a declarative definition bound to a prometheus.Collector
// by NewMetric.
type Metric struct {
	MetricCollector prometheus.Collector
	ID              string
	Name            string
	Description     string
	Type            string
	Args            []string
}

// NewMetric builds the prometheus.Collector for a Metric definition.
func NewMetric(m *Metric, subsystem string) prometheus.Collector {
	var metric prometheus.Collector
	switch m.Type {
	case "counter_vec":
		metric = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	case "histogram_vec":
		metric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
				Buckets:   HistogramBuckets,
			},
			m.Args,
		)
	case "summary_vec":
		metric = prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Subsystem: subsystem,
				Name:      m.Name,
				Help:      m.Description,
			},
			m.Args,
		)
	}
	return metric
}

var lifecycleActions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: "billing",
		Name:      "lifecycle_actions_total",
		Help:      "Lifecycle RPC calls partitioned by action and response status.",
	},
	[]string{"action", "code"},
)

func init() {
	prometheus.MustRegister(lifecycleActions)
}

// ObserveLifecycleAction records one lifecycle RPC dispatch.
func ObserveLifecycleAction(action string, status int) {
	lifecycleActions.WithLabelValues(action, strconv.Itoa(status)).Inc()
}
