package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docd"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	registry       *prom.Registry
	stageDuration  *prom.HistogramVec
	buildDuration  prom.Histogram
	stageResults   *prom.CounterVec
	buildOutcome   *prom.CounterVec
	nodes          *prom.GaugeVec
	pagesRendered  prom.Counter
	indexDocuments prom.Gauge
	mirroredFiles  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg, or on a fresh
// registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual publish stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Total build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "build_outcomes_total",
			Help:      "Build outcomes by final status",
		}, []string{"outcome"})
		pr.nodes = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "nodes",
			Help:      "Nodes emitted by the last tree walk, by kind",
		}, []string{"kind"})
		pr.pagesRendered = prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "Pages rendered and written",
		})
		pr.indexDocuments = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "index_documents",
			Help:      "Documents in the last search index",
		})
		pr.mirroredFiles = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "mirrored_files_total",
			Help:      "Files copied or deleted by mirror passes",
		}, []string{"target", "action"})
		reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome,
			pr.nodes, pr.pagesRendered, pr.indexDocuments, pr.mirroredFiles)
	})
	return pr
}

// Registry returns the registry the metrics are registered on.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.registry }

// WriteTextfile writes the current metric values in the Prometheus text format.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.registry)
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}
func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}
func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}
func (p *PrometheusRecorder) IncBuildOutcome(outcome BuildOutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetNodeCount(kind string, n int) {
	if p == nil || p.nodes == nil {
		return
	}
	p.nodes.WithLabelValues(kind).Set(float64(n))
}

func (p *PrometheusRecorder) IncPagesRendered() {
	if p == nil || p.pagesRendered == nil {
		return
	}
	p.pagesRendered.Inc()
}

func (p *PrometheusRecorder) SetIndexDocuments(n int) {
	if p == nil || p.indexDocuments == nil {
		return
	}
	p.indexDocuments.Set(float64(n))
}

func (p *PrometheusRecorder) AddMirroredFiles(target string, copied, deleted int) {
	if p == nil || p.mirroredFiles == nil {
		return
	}
	p.mirroredFiles.WithLabelValues(target, "copied").Add(float64(copied))
	p.mirroredFiles.WithLabelValues(target, "deleted").Add(float64(deleted))
}
