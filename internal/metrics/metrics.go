// Package metrics exposes pdfstruct's named instruments as Prometheus
// collectors. Registry implements observability.Metrics, so components keep
// recording through the observability interfaces while /metrics serves the
// values.
package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leofalp/pdfstruct/providers/observability"
)

// label maps an observability attribute key to a Prometheus label name.
type label struct {
	attr string
	name string
}

type counterDef struct {
	metric string
	opts   prometheus.CounterOpts
	labels []label
}

type histogramDef struct {
	metric string
	opts   prometheus.HistogramOpts
	labels []label
}

var counterDefs = []counterDef{
	{
		metric: observability.MetricNormalizeResults,
		opts:   prometheus.CounterOpts{Name: "pdfstruct_normalize_results_total", Help: "Normalized responses by the parse tier that succeeded (none when unparseable)."},
		labels: []label{{observability.AttrNormalizeTier, "tier"}},
	},
	{
		metric: observability.MetricExtractErrors,
		opts:   prometheus.CounterOpts{Name: "pdfstruct_extract_errors_total", Help: "Failed extractions by error kind."},
		labels: []label{{observability.AttrErrorKind, "kind"}},
	},
	{
		metric: observability.MetricInferenceRequests,
		opts:   prometheus.CounterOpts{Name: "pdfstruct_inference_requests_total", Help: "Inference calls by outcome."},
		labels: []label{{observability.AttrStatus, "status"}},
	},
	{
		metric: observability.MetricTokensTotal,
		opts:   prometheus.CounterOpts{Name: "pdfstruct_llm_tokens_total", Help: "Tokens reported by the model."},
		labels: []label{{observability.AttrTokenType, "type"}},
	},
}

var histogramDefs = []histogramDef{
	{
		metric: observability.MetricInferenceDuration,
		opts: prometheus.HistogramOpts{
			Name:    "pdfstruct_inference_duration_seconds",
			Help:    "Latency of inference calls, including retries.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		labels: []label{{observability.AttrLLMModel, "model"}},
	},
}

// Registry holds the Prometheus collectors for every known metric name.
type Registry struct {
	registry   *prometheus.Registry
	counters   map[string]*counter
	histograms map[string]*histogram
}

var _ observability.Metrics = (*Registry)(nil)

// New creates a Registry backed by its own prometheus.Registry, with Go
// runtime and process collectors included.
func New() *Registry {
	r := &Registry{
		registry:   prometheus.NewRegistry(),
		counters:   make(map[string]*counter, len(counterDefs)),
		histograms: make(map[string]*histogram, len(histogramDefs)),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	for _, def := range counterDefs {
		vec := prometheus.NewCounterVec(def.opts, labelNames(def.labels))
		r.registry.MustRegister(vec)
		r.counters[def.metric] = &counter{vec: vec, labels: def.labels}
	}
	for _, def := range histogramDefs {
		vec := prometheus.NewHistogramVec(def.opts, labelNames(def.labels))
		r.registry.MustRegister(vec)
		r.histograms[def.metric] = &histogram{vec: vec, labels: def.labels}
	}

	return r
}

// Counter returns the counter registered for name. Unknown names get a
// no-op counter so callers never need to nil-check.
func (r *Registry) Counter(name string) observability.Counter {
	if c, ok := r.counters[name]; ok {
		return c
	}
	return noopCounter{}
}

// Histogram returns the histogram registered for name, or a no-op.
func (r *Registry) Histogram(name string) observability.Histogram {
	if h, ok := r.histograms[name]; ok {
		return h
	}
	return noopHistogram{}
}

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

type counter struct {
	vec    *prometheus.CounterVec
	labels []label
}

func (c *counter) Add(_ context.Context, value int64, attrs ...observability.Attribute) {
	if value < 0 {
		return
	}
	c.vec.WithLabelValues(labelValues(c.labels, attrs)...).Add(float64(value))
}

type histogram struct {
	vec    *prometheus.HistogramVec
	labels []label
}

func (h *histogram) Record(_ context.Context, value float64, attrs ...observability.Attribute) {
	h.vec.WithLabelValues(labelValues(h.labels, attrs)...).Observe(value)
}

type noopCounter struct{}

func (noopCounter) Add(context.Context, int64, ...observability.Attribute) {}

type noopHistogram struct{}

func (noopHistogram) Record(context.Context, float64, ...observability.Attribute) {}

func labelNames(labels []label) []string {
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.name
	}
	return names
}

// labelValues picks each label's value from attrs by key. Missing labels are
// recorded as the empty string.
func labelValues(labels []label, attrs []observability.Attribute) []string {
	values := make([]string, len(labels))
	for i, l := range labels {
		for _, attr := range attrs {
			if attr.Key == l.attr {
				values[i] = fmt.Sprint(attr.Value)
				break
			}
		}
	}
	return values
}
