package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/bessopt/core/lp"
	coremetrics "github.com/kilianp07/bessopt/core/metrics"
)

// PromSink records optimization outcomes in Prometheus metrics.
type PromSink struct {
	runs      *prometheus.CounterVec
	duration  prometheus.Histogram
	totalCost prometheus.Gauge
	peak      prometheus.Gauge
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "solve_runs_total",
		Help: "Total number of optimization runs by outcome",
	}, []string{"status"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "solve_duration_seconds",
		Help:    "Time spent solving the linear program",
		Buckets: prometheus.DefBuckets,
	})
	totalCost := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solve_last_total_cost",
		Help: "Objective value of the last optimal run",
	})
	peak := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "solve_last_peak_kw",
		Help: "Peak net grid draw of the last optimal run",
	})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(totalCost); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			totalCost = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(peak); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			peak = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}

	return &PromSink{runs: runs, duration: duration, totalCost: totalCost, peak: peak}, nil
}

// RecordSolve increments the outcome counter and updates the last-run gauges.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.runs.WithLabelValues(ev.Status.String()).Inc()
	s.duration.Observe(ev.Duration.Seconds())
	if ev.Status == lp.StatusOptimal {
		s.totalCost.Set(ev.TotalCost)
		s.peak.Set(ev.PeakKW)
	}
	return nil
}
