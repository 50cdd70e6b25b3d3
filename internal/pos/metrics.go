package pos

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "tacopos"

// Metrics counts what happens at the counter. A nil registerer builds
// unregistered collectors.
type Metrics struct {
	OrdersParked    prometheus.Counter
	OrdersResumed   prometheus.Counter
	Sales           prometheus.Counter
	Revenue         prometheus.Counter
	QueueDepth      prometheus.Gauge
	PersistFailures prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OrdersParked: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "orders_parked_total",
			Help:      "Orders parked in the payment queue.",
		}),
		OrdersResumed: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "orders_resumed_total",
			Help:      "Parked orders taken back for editing.",
		}),
		Sales: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sales_total",
			Help:      "Completed payments.",
		}),
		Revenue: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sales_revenue_total",
			Help:      "Sum of order totals of completed payments.",
		}),
		QueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "queue_depth",
			Help:      "Orders currently waiting for payment.",
		}),
		PersistFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "persist_failures_total",
			Help:      "Snapshot writes that failed.",
		}),
	}
}
