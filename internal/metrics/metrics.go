package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors for the discovery pipeline. It
// implements controller.Observer and discovery.CycleObserver.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cycleDuration    prometheus.Histogram
	switches         prometheus.Gauge
	devices          prometheus.Gauge
}

// New creates and registers the collectors on reg. Pass
// prometheus.NewRegistry() in tests to keep them off the default registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "switchscope_upstream_requests_total",
			Help: "Controller API requests by endpoint and outcome.",
		}, []string{"endpoint", "result"}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "switchscope_response_cache_hits_total",
			Help: "Controller responses served from the response cache.",
		}, []string{"endpoint"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "switchscope_discovery_cycle_seconds",
			Help:    "Wall time of a full discovery cycle.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		switches: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "switchscope_switches",
			Help: "Switches in the last assembled topology.",
		}),
		devices: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "switchscope_connected_devices",
			Help: "Connected devices in the last assembled topology.",
		}),
	}
	reg.MustRegister(m.upstreamRequests, m.cacheHits, m.cycleDuration, m.switches, m.devices)
	return m
}

// UpstreamRequest records one controller API call and its outcome.
func (m *Metrics) UpstreamRequest(endpoint, outcome string) {
	m.upstreamRequests.WithLabelValues(endpoint, outcome).Inc()
}

// ResponseCacheHit records a response served without an upstream call.
func (m *Metrics) ResponseCacheHit(endpoint string) {
	m.cacheHits.WithLabelValues(endpoint).Inc()
}

// CycleComplete records the shape and duration of a finished cycle.
func (m *Metrics) CycleComplete(switches, devices int, elapsed time.Duration) {
	m.cycleDuration.Observe(elapsed.Seconds())
	m.switches.Set(float64(switches))
	m.devices.Set(float64(devices))
}
