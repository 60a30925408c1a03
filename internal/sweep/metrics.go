package sweep

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	ScansTotal   prometheus.Counter
	ScanDuration prometheus.Histogram
	DevicesKnown prometheus.Gauge
	DevicesUp    prometheus.Gauge
}

// NewMetrics registers the engine collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ScansTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "lansweep",
			Name:      "scans_total",
			Help:      "Number of completed scan passes.",
		}),
		ScanDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lansweep",
			Name:      "scan_duration_seconds",
			Help:      "Wall-clock duration of scan passes.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		DevicesKnown: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lansweep",
			Name:      "devices_known",
			Help:      "Devices currently tracked in the inventory.",
		}),
		DevicesUp: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "lansweep",
			Name:      "devices_up",
			Help:      "Devices observed Up in the latest applied scan.",
		}),
	}
}
