// control/adapter.go
// Author: momentics <momentics@gmail.com>
//
// Adapter bridging api.Control to the control package's metrics and
// debug primitives.

package control

import "github.com/ndagtelescope/telescope/api"

// Adapter implements api.Control by composing a MetricsRegistry and a
// DebugProbes registry.
type Adapter struct {
	metrics *MetricsRegistry
	debug   *DebugProbes
}

var _ api.Control = (*Adapter)(nil)
var _ api.Debug = (*DebugProbes)(nil)

// NewAdapter builds a Control adapter, registering platform debug probes.
func NewAdapter() *Adapter {
	a := &Adapter{
		metrics: NewMetricsRegistry(),
		debug:   NewDebugProbes(),
	}
	RegisterPlatformProbes(a.debug)
	return a
}

// Metrics exposes the underlying registry so workers can publish counters.
func (a *Adapter) Metrics() *MetricsRegistry {
	return a.metrics
}

// Stats merges the metrics snapshot and debug probe output.
func (a *Adapter) Stats() map[string]any {
	combined := make(map[string]any)
	for k, v := range a.metrics.GetSnapshot() {
		combined["metrics."+k] = v
	}
	for k, v := range a.debug.DumpState() {
		combined["debug."+k] = v
	}
	return combined
}

// RegisterDebugProbe registers a named debug probe function.
func (a *Adapter) RegisterDebugProbe(name string, fn func() any) {
	a.debug.RegisterProbe(name, fn)
}
