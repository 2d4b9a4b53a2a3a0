package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a run.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal     *prometheus.CounterVec   // labels: outcome={success,failure}
	StageDuration *prometheus.HistogramVec // labels: stage
	StageErrors   *prometheus.CounterVec   // labels: stage

	RowsIngested *prometheus.CounterVec // labels: table
	CoercedCells prometheus.Counter

	BuildingsGraded   prometheus.Gauge
	GradeDistribution *prometheus.GaugeVec // labels: letter
	AnomaliesFlagged  prometheus.Gauge

	ArtifactsWritten   prometheus.Counter
	ArtifactsPublished *prometheus.CounterVec // labels: backend
	LastSuccess        prometheus.Gauge
}

// NewMetrics creates all run metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benchgrade",
			Name:      "runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		StageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "benchgrade",
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		StageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benchgrade",
			Name:      "stage_errors_total",
			Help:      "Stage failures.",
		}, []string{"stage"}),
		RowsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benchgrade",
			Name:      "rows_ingested_total",
			Help:      "CSV rows read by table.",
		}, []string{"table"}),
		CoercedCells: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "benchgrade",
			Name:      "coerced_cells_total",
			Help:      "Numeric cells that could not be parsed and were treated as missing.",
		}),
		BuildingsGraded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "benchgrade",
			Name:      "buildings_graded",
			Help:      "Building-year rows graded in the last run.",
		}),
		GradeDistribution: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "benchgrade",
			Name:      "latest_year_grades",
			Help:      "Overall letter grades among latest-year buildings.",
		}, []string{"letter"}),
		AnomaliesFlagged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "benchgrade",
			Name:      "anomalies_flagged",
			Help:      "Buildings flagged with a data anomaly.",
		}),
		ArtifactsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "benchgrade",
			Name:      "artifacts_written_total",
			Help:      "Output files written by stages.",
		}),
		ArtifactsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "benchgrade",
			Name:      "artifacts_published_total",
			Help:      "Artifacts uploaded by backend.",
		}, []string{"backend"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "benchgrade",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}

	m.registry.MustRegister(
		m.RunsTotal,
		m.StageDuration,
		m.StageErrors,
		m.RowsIngested,
		m.CoercedCells,
		m.BuildingsGraded,
		m.GradeDistribution,
		m.AnomaliesFlagged,
		m.ArtifactsWritten,
		m.ArtifactsPublished,
		m.LastSuccess,
	)

	return m
}

// Gatherer exposes the registry for pushing or scraping.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Push sends every metric to a Prometheus Pushgateway under job.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	return nil
}
