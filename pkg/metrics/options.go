package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Option customizes a Manager.
type Option func(*Manager)

// WithInstance labels every collector with instance=name so replicas can be
// told apart on a shared scrape. A blank name adds no label.
func WithInstance(name string) Option {
	return func(m *Manager) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		if m.constLabels == nil {
			m.constLabels = prometheus.Labels{}
		}
		m.constLabels[instanceLabel] = name
	}
}

// WithPrometheusRegistry registers the collectors on reg instead of the
// Prometheus default registerer.
func WithPrometheusRegistry(reg prometheus.Registerer) Option {
	return func(m *Manager) {
		if reg != nil {
			m.registry = reg
		}
	}
}
