package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "charmrelease"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry       *prom.Registry
	stageDuration  *prom.HistogramVec
	stageResults   *prom.CounterVec
	runDuration    prom.Histogram
	runOutcome     *prom.CounterVec
	channelRelease *prom.CounterVec
	lastSuccess    prom.Gauge
}

// NewPrometheusRecorder constructs and registers the pipeline metrics on reg,
// or on a fresh registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual pipeline stages",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	}, []string{"stage"})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Total pipeline run duration",
		Buckets:   []float64{5, 30, 60, 120, 300, 600, 1200},
	})
	pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "run_outcomes_total",
		Help:      "Pipeline runs by final status",
	}, []string{"outcome"})
	pr.channelRelease = prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "channel_releases_total",
		Help:      "Channel releases by channel and result",
	}, []string{"channel", "result"})
	pr.lastSuccess = prom.NewGauge(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful run",
	})
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.runDuration, pr.runOutcome, pr.channelRelease, pr.lastSuccess)
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

// WriteTextfile writes the gathered metrics atomically in the text
// exposition format read by the node-exporter textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncRunOutcome(outcome OutcomeLabel) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncChannelRelease(channel string, success bool) {
	if p == nil || p.channelRelease == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.channelRelease.WithLabelValues(channel, res).Inc()
}

func (p *PrometheusRecorder) SetLastSuccess(t time.Time) {
	if p == nil || p.lastSuccess == nil {
		return
	}
	p.lastSuccess.Set(float64(t.Unix()))
}
