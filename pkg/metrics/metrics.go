// Package metrics exposes runtime counters as Prometheus collectors.
//
// All methods are safe to call on a nil *Metrics, so services take metrics
// as an optional dependency.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pairui"

// Metrics holds the runtime collectors.
type Metrics struct {
	RootListeners   *prometheus.GaugeVec
	Mounts          prometheus.Counter
	Disposals       prometheus.Counter
	LiveTokens      prometheus.Gauge
	HandlerFailures *prometheus.CounterVec
	DialogsOpen     prometheus.Gauge
	Notifications   *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RootListeners: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "root_listeners",
			Help:      "Root-level DOM listeners by event type.",
		}, []string{"event"}),
		Mounts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mount",
			Name:      "mounts_total",
			Help:      "Mount calls, children included.",
		}),
		Disposals: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mount",
			Name:      "disposals_total",
			Help:      "Disposal tokens cancelled.",
		}),
		LiveTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mount",
			Name:      "live_tokens",
			Help:      "Containers currently bound.",
		}),
		HandlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mount",
			Name:      "handler_failures_total",
			Help:      "Handler invocations degraded to no-ops, by reason.",
		}, []string{"reason"}),
		DialogsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dialog",
			Name:      "open",
			Help:      "Dialogs currently open.",
		}),
		Notifications: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "live",
			Help:      "Notifications currently listed, by kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.RootListeners,
			m.Mounts,
			m.Disposals,
			m.LiveTokens,
			m.HandlerFailures,
			m.DialogsOpen,
			m.Notifications,
		)
	}
	return m
}

// RootListenerAdded records a root listener for event.
func (m *Metrics) RootListenerAdded(event string) {
	if m == nil {
		return
	}
	m.RootListeners.WithLabelValues(event).Inc()
}

// Mounted records a mount that produced a fresh token.
func (m *Metrics) Mounted() {
	if m == nil {
		return
	}
	m.Mounts.Inc()
	m.LiveTokens.Inc()
}

// Disposed records a cancelled token.
func (m *Metrics) Disposed() {
	if m == nil {
		return
	}
	m.Disposals.Inc()
	m.LiveTokens.Dec()
}

// HandlerFailed records a degraded handler invocation.
func (m *Metrics) HandlerFailed(reason string) {
	if m == nil {
		return
	}
	m.HandlerFailures.WithLabelValues(reason).Inc()
}

// SetDialogsOpen records the number of open dialogs.
func (m *Metrics) SetDialogsOpen(n int) {
	if m == nil {
		return
	}
	m.DialogsOpen.Set(float64(n))
}

// SetNotifications records the listed notifications of one kind.
func (m *Metrics) SetNotifications(kind string, n int) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind).Set(float64(n))
}
