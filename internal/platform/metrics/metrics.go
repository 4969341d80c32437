// Package metrics exposes the Prometheus registry and the realtime instruments.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "alertautec"

// NewRegistry creates a Prometheus registry with Go runtime and process collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// Handler serves the registry in the Prometheus text format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Realtime holds the instruments touched by the hub and the broadcaster.
type Realtime struct {
	ActiveConnections prometheus.Gauge
	Broadcasts        *prometheus.CounterVec
	Deliveries        *prometheus.CounterVec
	RegistryCleanups  prometheus.Counter
	BroadcastDuration prometheus.Histogram
}

// NewRealtime creates and registers the realtime metrics on reg.
func NewRealtime(reg prometheus.Registerer) *Realtime {
	m := &Realtime{
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "realtime",
			Name:      "active_connections",
			Help:      "Number of WebSocket connections owned by this instance.",
		}),
		Broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_total",
			Help:      "Broadcasts started, by event kind.",
		}, []string{"kind"}),
		Deliveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_total",
			Help:      "Per-connection delivery attempts, by outcome.",
		}, []string{"outcome"}),
		RegistryCleanups: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_cleanup_total",
			Help:      "Connections removed from the registry after a gone delivery.",
		}),
		BroadcastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "broadcast_duration_seconds",
			Help:      "Wall time of a full fan-out, listing included.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(m.ActiveConnections, m.Broadcasts, m.Deliveries, m.RegistryCleanups, m.BroadcastDuration)
	return m
}

// NewNopRealtime returns instruments registered on a throwaway registry, handy in tests.
func NewNopRealtime() *Realtime {
	return NewRealtime(prometheus.NewRegistry())
}
