// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package metrics exports interop pipeline progress as Prometheus metrics.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/gogpu/interop"
)

// Collector is an interop.Observer recording frames, failures and frame
// durations.
type Collector struct {
	frames   prometheus.Counter
	failures *prometheus.CounterVec
	stopped  prometheus.Counter
	duration prometheus.Histogram
	state    prometheus.Gauge
	steps    *prometheus.CounterVec
}

var _ interop.Observer = (*Collector)(nil)

// New registers the collector's metrics on reg under namespace.
func New(reg prometheus.Registerer, namespace string) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		frames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames that completed every pipeline step.",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_failures_total",
			Help:      "Failed frames by the step they did not reach.",
		}, []string{"step"}),
		stopped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_stopped_total",
			Help:      "Frames the surface declined to present.",
		}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Wall time of one frame from upload to present.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14), // 0.5ms to ~4s
		}),
		state: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_state",
			Help:      "Current pipeline state, 0 is idle.",
		}),
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_transitions_total",
			Help:      "Pipeline state transitions by target state.",
		}, []string{"state"}),
	}
}

// StateChanged records the new state.
func (c *Collector) StateChanged(_, to interop.State) {
	c.state.Set(float64(to))
	c.steps.WithLabelValues(to.String()).Inc()
}

// FrameDone counts the frame by its outcome.
func (c *Collector) FrameDone(_ uint64, elapsed time.Duration, err error) {
	c.duration.Observe(elapsed.Seconds())

	var fe *interop.FrameError
	switch {
	case err == nil:
		c.frames.Inc()
	case errors.Is(err, interop.ErrStopped):
		c.stopped.Inc()
	case errors.As(err, &fe):
		c.failures.WithLabelValues(fe.Step.String()).Inc()
	default:
		c.failures.WithLabelValues("unknown").Inc()
	}
}
