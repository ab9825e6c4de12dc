package access

import "github.com/prometheus/client_golang/prometheus"

type gateMetrics struct {
	decisions *prometheus.CounterVec
}

func newGateMetrics(reg prometheus.Registerer) *gateMetrics {
	if reg == nil {
		return nil
	}
	m := &gateMetrics{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophchat_access_decisions_total",
			Help: "Access gate decisions for page requests.",
		}, []string{"decision"}),
	}
	reg.MustRegister(m.decisions)
	return m
}

func (m *gateMetrics) observe(d Decision) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(d.String()).Inc()
}
