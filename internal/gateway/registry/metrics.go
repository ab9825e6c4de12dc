package registry

import "github.com/prometheus/client_golang/prometheus"

type registryMetrics struct {
	active       prometheus.Gauge
	supersedings prometheus.Counter
}

func newRegistryMetrics(reg prometheus.Registerer) *registryMetrics {
	if reg == nil {
		return nil
	}
	m := &registryMetrics{
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gophchat_connections_active",
			Help: "Identities with a registered live connection.",
		}),
		supersedings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gophchat_connections_superseded_total",
			Help: "Connections closed because the same identity connected again.",
		}),
	}
	reg.MustRegister(m.active, m.supersedings)
	return m
}

func (m *registryMetrics) setActive(n int) {
	if m == nil {
		return
	}
	m.active.Set(float64(n))
}

func (m *registryMetrics) superseded() {
	if m == nil {
		return
	}
	m.supersedings.Inc()
}
