package router

import "github.com/prometheus/client_golang/prometheus"

type routerMetrics struct {
	routed     *prometheus.CounterVec
	violations *prometheus.CounterVec
}

func newRouterMetrics(reg prometheus.Registerer) *routerMetrics {
	if reg == nil {
		return nil
	}
	m := &routerMetrics{
		routed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophchat_messages_routed_total",
			Help: "Routed chat messages by outcome.",
		}, []string{"outcome"}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophchat_protocol_violations_total",
			Help: "Envelopes rejected by the router.",
		}, []string{"reason"}),
	}
	reg.MustRegister(m.routed, m.violations)
	return m
}

func (m *routerMetrics) outcome(o Outcome) {
	if m == nil {
		return
	}
	m.routed.WithLabelValues(o.String()).Inc()
}

func (m *routerMetrics) violation(reason string) {
	if m == nil {
		return
	}
	m.violations.WithLabelValues(reason).Inc()
}
