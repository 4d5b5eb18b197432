// Package prometrics backs the observability metric ports with Prometheus
// collectors registered on the default registry.
package prometrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bylucie/storefront/internal/observability"
)

// Registry hands out named counter and histogram instruments. Instruments
// are registered once; asking for the same name again returns the existing
// collector.
type Registry interface {
	Counter(name string, help string, labelKeys ...string) observability.Counter
	Histogram(name string, help string, buckets []float64, labelKeys ...string) observability.Histogram
}

func New(namespace, subsystem string) Registry {
	return &registry{namespace: namespace, subsystem: subsystem}
}

type registry struct {
	namespace string
	subsystem string

	counters   sync.Map // name -> *prometheus.CounterVec
	histograms sync.Map // name -> *prometheus.HistogramVec
}

func (r *registry) Counter(name string, help string, labelKeys ...string) observability.Counter {
	if existing, ok := r.counters.Load(name); ok {
		return &counter{vec: existing.(*prometheus.CounterVec)}
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      name,
		Help:      help,
	}, labelKeys)
	prometheus.MustRegister(vec)
	r.counters.Store(name, vec)
	return &counter{vec: vec}
}

func (r *registry) Histogram(name string, help string, buckets []float64, labelKeys ...string) observability.Histogram {
	if existing, ok := r.histograms.Load(name); ok {
		return &histogram{vec: existing.(*prometheus.HistogramVec)}
	}
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Subsystem: r.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labelKeys)
	prometheus.MustRegister(vec)
	r.histograms.Store(name, vec)
	return &histogram{vec: vec}
}

type counter struct{ vec *prometheus.CounterVec }

func (c *counter) Add(delta float64, labels ...observability.Label) {
	c.vec.With(toPromLabels(labels)).Add(delta)
}

func (c *counter) Bind(labels ...observability.Label) observability.BoundCounter {
	return &boundCounter{vec: c.vec, labels: toPromLabels(labels)}
}

type boundCounter struct {
	vec    *prometheus.CounterVec
	labels prometheus.Labels
}

func (c *boundCounter) Add(delta float64) {
	if c == nil || c.vec == nil {
		return
	}
	c.vec.With(c.labels).Add(delta)
}

type histogram struct{ vec *prometheus.HistogramVec }

func (h *histogram) Observe(value float64, labels ...observability.Label) {
	h.vec.With(toPromLabels(labels)).Observe(value)
}

func (h *histogram) Bind(labels ...observability.Label) observability.BoundHistogram {
	return &boundHistogram{vec: h.vec, labels: toPromLabels(labels)}
}

type boundHistogram struct {
	vec    *prometheus.HistogramVec
	labels prometheus.Labels
}

func (h *boundHistogram) Observe(value float64) {
	if h == nil || h.vec == nil {
		return
	}
	h.vec.With(h.labels).Observe(value)
}

func toPromLabels(labels []observability.Label) prometheus.Labels {
	out := make(prometheus.Labels, len(labels))
	for _, l := range labels {
		out[l.Key] = l.Value
	}
	return out
}
