package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "sitecfg"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	runDuration   prom.Histogram
	stageResults  *prom.CounterVec
	runOutcomes   *prom.CounterVec
	diagnostics   *prom.CounterVec
	contentPages  prom.Gauge
	lastRun       prom.Gauge
}

// NewPrometheusRecorder constructs the collectors and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual resolver stages",
			Buckets:   prom.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
		runDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total resolver run duration",
			Buckets:   prom.ExponentialBuckets(0.001, 4, 8),
		}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		runOutcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "run_outcomes_total",
			Help:      "Resolver runs by final status",
		}, []string{"outcome"}),
		diagnostics: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "diagnostics_total",
			Help:      "Reported diagnostics by kind",
		}, []string{"kind"}),
		contentPages: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "content_pages",
			Help:      "Pages in the content index of the last run",
		}),
		lastRun: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run",
		}),
	}
	reg.MustRegister(pr.stageDuration, pr.runDuration, pr.stageResults, pr.runOutcomes, pr.diagnostics, pr.contentPages, pr.lastRun)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil {
		return
	}
	p.runOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddDiagnostics(kind string, n int) {
	if p == nil || n <= 0 {
		return
	}
	p.diagnostics.WithLabelValues(kind).Add(float64(n))
}

func (p *PrometheusRecorder) SetContentPages(n int) {
	if p == nil {
		return
	}
	p.contentPages.Set(float64(n))
}

// WriteTextfile writes everything gathered from g to path in the text
// exposition format, replacing the file atomically.
func WriteTextfile(g prom.Gatherer, path string) error {
	if err := prom.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
