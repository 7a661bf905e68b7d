package bridge

import (
	"bytes"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "pubky_ffi"

type metrics struct {
	registry *prometheus.Registry

	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
	live     *prometheus.GaugeVec
}

var stats = newMetrics()

func newMetrics() *metrics {
	m := &metrics{registry: prometheus.NewRegistry()}
	m.calls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Boundary calls by operation and result code",
		},
		[]string{"op", "code"},
	)
	m.duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Duration of boundary calls",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"op"},
	)
	m.inflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "inflight_calls",
		Help:      "Operations currently running on the executor",
	})
	m.live = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_handles",
			Help:      "Handles held by the caller, by kind",
		},
		[]string{"kind"},
	)
	m.registry.MustRegister(m.calls, m.duration, m.inflight, m.live)
	return m
}

func (m *metrics) observe(op string, code Code, seconds float64) {
	m.calls.WithLabelValues(op, code.String()).Inc()
	m.duration.WithLabelValues(op).Observe(seconds)
}

func (m *metrics) handleOpened(k Kind) { m.live.WithLabelValues(k.String()).Inc() }
func (m *metrics) handleClosed(k Kind) { m.live.WithLabelValues(k.String()).Dec() }

// text renders the registry in the Prometheus text format.
func (m *metrics) text() (string, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return "", fmt.Errorf("gather metrics: %w", err)
	}
	var buf bytes.Buffer
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return "", fmt.Errorf("encode metrics: %w", err)
		}
	}
	return buf.String(), nil
}
