// Package promsink provides a Prometheus-backed instrument.Sink.
//
// Metric vectors are created lazily per metric name on first emission and
// registered with the configured registerer. The label keys of a vector are
// fixed by the first emission for that name; metricweave guarantees a stable
// label shape per call site, so all later emissions for the same name carry
// the same keys.
package promsink

import (
	"sync"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/metricweave/pkg/instrument"
)

// Sink implements instrument.Sink using Prometheus metrics.
type Sink struct {
	reg prom.Registerer

	mu         sync.Mutex
	histograms map[string]*prom.HistogramVec
	counters   map[string]*prom.CounterVec
}

// New constructs a Sink registering its metrics with reg.
// A nil reg falls back to the default registerer.
func New(reg prom.Registerer) *Sink {
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	return &Sink{
		reg:        reg,
		histograms: make(map[string]*prom.HistogramVec),
		counters:   make(map[string]*prom.CounterVec),
	}
}

// RecordHistogram implements instrument.Sink. Emission is best effort: a
// label mismatch or registration conflict drops the observation rather than
// disturbing the instrumented call.
func (s *Sink) RecordHistogram(name string, seconds float64, labels instrument.LabelSet) {
	vec := s.histogramVec(name, labelKeys(labels))
	if vec == nil {
		return
	}
	h, err := vec.GetMetricWith(promLabels(labels))
	if err != nil {
		return
	}
	h.Observe(seconds)
}

// IncrementCounter implements instrument.Sink.
func (s *Sink) IncrementCounter(name string, labels instrument.LabelSet) {
	vec := s.counterVec(name, labelKeys(labels))
	if vec == nil {
		return
	}
	c, err := vec.GetMetricWith(promLabels(labels))
	if err != nil {
		return
	}
	c.Inc()
}

func (s *Sink) histogramVec(name string, keys []string) *prom.HistogramVec {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vec, ok := s.histograms[name]; ok {
		return vec
	}
	vec := prom.NewHistogramVec(prom.HistogramOpts{
		Name:    name,
		Help:    "Duration of calls instrumented by metricweave",
		Buckets: prom.DefBuckets,
	}, keys)
	if err := s.reg.Register(vec); err != nil {
		return nil
	}
	s.histograms[name] = vec
	return vec
}

func (s *Sink) counterVec(name string, keys []string) *prom.CounterVec {
	s.mu.Lock()
	defer s.mu.Unlock()

	if vec, ok := s.counters[name]; ok {
		return vec
	}
	vec := prom.NewCounterVec(prom.CounterOpts{
		Name: name,
		Help: "Invocations of calls instrumented by metricweave",
	}, keys)
	if err := s.reg.Register(vec); err != nil {
		return nil
	}
	s.counters[name] = vec
	return vec
}

func labelKeys(labels instrument.LabelSet) []string {
	keys := make([]string, len(labels))
	for i, l := range labels {
		keys[i] = l.Key
	}
	return keys
}

func promLabels(labels instrument.LabelSet) prom.Labels {
	out := make(prom.Labels, len(labels))
	for _, l := range labels {
		out[l.Key] = l.Value
	}
	return out
}
