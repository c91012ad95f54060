// Package metrics exposes a small Prometheus registry counting entry-point
// invocations and outcomes by error code. It is consumed only by
// cmd/roscacored's demo harness; native/rosca never imports it, keeping the
// deterministic core free of observability side effects.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles the demo harness's metrics. The two counters are updated
// around every Engine call; ActiveGroups is registered but nothing sets it,
// so it stays at zero.
type Registry struct {
	EntryPointCalls    *prometheus.CounterVec
	EntryPointFailures *prometheus.CounterVec
	ActiveGroups       prometheus.Gauge
}

// NewRegistry constructs and registers a fresh metric set against reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		EntryPointCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rosca_entrypoint_calls_total",
			Help: "Total number of ROSCA entry point invocations, labeled by method.",
		}, []string{"method"}),
		EntryPointFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rosca_entrypoint_failures_total",
			Help: "Total number of ROSCA entry point invocations that returned an error, labeled by method and error code.",
		}, []string{"method", "code"}),
		ActiveGroups: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rosca_active_groups",
			Help: "Number of groups currently in the Active status.",
		}),
	}
	reg.MustRegister(r.EntryPointCalls, r.EntryPointFailures, r.ActiveGroups)
	return r
}

// ObserveResult records the outcome of a single entry point call.
func (r *Registry) ObserveResult(method string, code string, err error) {
	r.EntryPointCalls.WithLabelValues(method).Inc()
	if err != nil {
		r.EntryPointFailures.WithLabelValues(method, code).Inc()
	}
}
