// Package status is the process-wide metrics registry read by the HUD and the bench
package status

import (
	"sort"
	"strconv"
	"sync/atomic"
)

// Registry groups counters, gauges and labels
// Components cache pointers at construction and write to the atomics directly
type Registry struct {
	Counters *MetricMap[atomic.Int64]
	Gauges   *MetricMap[Float]
	Labels   *MetricMap[Label]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		Counters: NewMetricMap[atomic.Int64](),
		Gauges:   NewMetricMap[Float](),
		Labels:   NewMetricMap[Label](),
	}
}

// Sample is one formatted metric
type Sample struct {
	Key   string
	Value string
}

// Snapshot formats every metric, sorted by key
func (r *Registry) Snapshot() []Sample {
	out := make([]Sample, 0, r.Len())
	r.Counters.Range(func(k string, v *atomic.Int64) {
		out = append(out, Sample{k, strconv.FormatInt(v.Load(), 10)})
	})
	r.Gauges.Range(func(k string, v *Float) {
		out = append(out, Sample{k, strconv.FormatFloat(v.Get(), 'f', 2, 64)})
	})
	r.Labels.Range(func(k string, v *Label) {
		out = append(out, Sample{k, v.Load()})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Len returns total metrics across all kinds
func (r *Registry) Len() int {
	return r.Counters.Len() + r.Gauges.Len() + r.Labels.Len()
}
