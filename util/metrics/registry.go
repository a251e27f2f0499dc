// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-recovery
//
// go-recovery is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-recovery is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-recovery.  If not, see <https://www.gnu.org/licenses/>.

package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry represents a single set of metrics registry
type Registry struct {
	reg *prometheus.Registry
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry, which also carries the
// Go runtime and process collectors.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = MakeRegistry()
		defaultRegistry.reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
	return defaultRegistry
}

// MakeRegistry creates an empty registry.
func MakeRegistry() *Registry {
	return &Registry{reg: prometheus.NewRegistry()}
}

// Handler serves the registry in the prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Gatherer exposes the underlying prometheus gatherer.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// Counter represent a counter variable, optionally split by labels.
type Counter struct {
	vec *prometheus.CounterVec
}

// MakeCounter create a new counter on the default registry.
func MakeCounter(metric MetricName, labelNames ...string) *Counter {
	return DefaultRegistry().MakeCounter(metric, labelNames...)
}

// MakeCounter create a new counter on r.
func (r *Registry) MakeCounter(metric MetricName, labelNames ...string) *Counter {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metric.Name,
		Help: metric.Description,
	}, labelNames)
	r.reg.MustRegister(vec)
	return &Counter{vec: vec}
}

// Inc increases counter by 1. labels are the values of the counter's label names, in order.
func (counter *Counter) Inc(labels ...string) {
	counter.vec.WithLabelValues(labels...).Inc()
}

// AddUint64 increases counter by x
func (counter *Counter) AddUint64(x uint64, labels ...string) {
	counter.vec.WithLabelValues(labels...).Add(float64(x))
}

// Collector returns the underlying collector, for tests.
func (counter *Counter) Collector(labels ...string) prometheus.Collector {
	return counter.vec.WithLabelValues(labels...)
}

// Histogram tracks a distribution of durations.
type Histogram struct {
	vec *prometheus.HistogramVec
}

// MakeHistogram creates a duration histogram on the default registry.
func MakeHistogram(metric MetricName, labelNames ...string) *Histogram {
	return DefaultRegistry().MakeHistogram(metric, labelNames...)
}

// MakeHistogram creates a duration histogram on r.
func (r *Registry) MakeHistogram(metric MetricName, labelNames ...string) *Histogram {
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metric.Name,
		Help:    metric.Description,
		Buckets: prometheus.DefBuckets,
	}, labelNames)
	r.reg.MustRegister(vec)
	return &Histogram{vec: vec}
}

// ObserveSince records the time elapsed since start.
func (h *Histogram) ObserveSince(start time.Time, labels ...string) {
	h.vec.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
}
