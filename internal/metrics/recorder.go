package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ddogreen/internal/activity"
)

const namespace = "ddogreen"

// Recorder exposes controller state as Prometheus metrics
type Recorder struct {
	registry *prometheus.Registry

	load           prometheus.Gauge
	normalizedLoad prometheus.Gauge
	active         prometheus.Gauge
	powerMode      *prometheus.GaugeVec
	samples        prometheus.Counter
	transitions    *prometheus.CounterVec
	suppressed     prometheus.Counter
	modeChanges    *prometheus.CounterVec
	rateLimited    prometheus.Counter

	mu             sync.Mutex
	lastSuppressed uint64
}

// NewRecorder registers the ddogreen metrics on a fresh registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		load: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "load",
			Help:      "Last sampled 1-minute load average.",
		}),
		normalizedLoad: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "normalized_load",
			Help:      "Last sampled load divided by the logical core count.",
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active",
			Help:      "1 when the controller is in the active (performance) state.",
		}),
		powerMode: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "power_mode",
			Help:      "1 for the power mode most recently applied.",
		}, []string{"mode"}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "samples_total",
			Help:      "Load samples taken.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Accepted activity state changes by target state.",
		}, []string{"state"}),
		suppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_suppressed_total",
			Help:      "State changes held back by the dwell guard.",
		}),
		modeChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "power_mode_changes_total",
			Help:      "Power mode change requests by mode and result.",
		}, []string{"mode", "result"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Power mode change requests rejected by the rate limiter.",
		}),
	}

	r.registry.MustRegister(
		r.load,
		r.normalizedLoad,
		r.active,
		r.powerMode,
		r.samples,
		r.transitions,
		r.suppressed,
		r.modeChanges,
		r.rateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveSample updates gauges from a monitor snapshot
func (r *Recorder) ObserveSample(s activity.Snapshot) {
	r.load.Set(s.Load)
	r.normalizedLoad.Set(s.NormalizedLoad)
	r.active.Set(boolToFloat(s.Active))
	r.samples.Inc()

	r.mu.Lock()
	defer r.mu.Unlock()
	// counters in the snapshot restart from zero on every Start
	if s.Suppressed < r.lastSuppressed {
		r.lastSuppressed = 0
	}
	r.suppressed.Add(float64(s.Suppressed - r.lastSuppressed))
	r.lastSuppressed = s.Suppressed
}

// RecordTransition counts an accepted state change
func (r *Recorder) RecordTransition(active bool) {
	state := "inactive"
	if active {
		state = "active"
	}
	r.transitions.WithLabelValues(state).Inc()
}

// RecordModeChange counts a power mode request and tracks the applied mode
func (r *Recorder) RecordModeChange(mode string, ok bool) {
	result := "failed"
	if ok {
		result = "ok"
		r.powerMode.Reset()
		r.powerMode.WithLabelValues(mode).Set(1)
	}
	r.modeChanges.WithLabelValues(mode, result).Inc()
}

// RecordRateLimited counts a rejected power mode request
func (r *Recorder) RecordRateLimited() {
	r.rateLimited.Inc()
}

// Registry returns the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
