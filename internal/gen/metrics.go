package gen

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricRowsGenerated     = "synthlog_rows_generated_total"
	MetricAnomaliesInjected = "synthlog_anomalies_injected_total"
	MetricAnomaliesSkipped  = "synthlog_anomalies_skipped_total"
	MetricViolationsLabeled = "synthlog_policy_violations_total"
	MetricStageDuration     = "synthlog_stage_duration_seconds"
)

// Table label values for the rows-generated counter.
const (
	TableAssets = "assets"
	TableEvents = "access_logs"
)

// Stage label values for the duration histogram.
const (
	StageAssets = "generate_assets"
	StageEvents = "generate_events"
	StageInject = "inject_anomalies"
	StageLabel  = "label_violations"
)

// Metrics contains Prometheus metrics for pipeline runs.
// All operations are thread-safe.
type Metrics struct {
	rowsGenerated     *prometheus.CounterVec
	anomaliesInjected *prometheus.CounterVec
	anomaliesSkipped  prometheus.Counter
	violationsLabeled prometheus.Counter
	stageDuration     *prometheus.HistogramVec
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		rowsGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricRowsGenerated,
				Help: "Total number of synthetic rows generated by table",
			},
			[]string{"table"},
		),
		anomaliesInjected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricAnomaliesInjected,
				Help: "Total number of anomalies injected by anomaly type",
			},
			[]string{"anomaly_type"},
		),
		anomaliesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricAnomaliesSkipped,
			Help: "Total number of plain_phi injections skipped because no plaintext-PHI asset exists",
		}),
		violationsLabeled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: MetricViolationsLabeled,
			Help: "Total number of rows labeled as policy violations",
		}),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricStageDuration,
				Help:    "Histogram of pipeline stage duration in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
			},
			[]string{"stage"},
		),
	}
}

// Register registers all metrics with the given registry.
// Returns an error if registration fails.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// AddRowsGenerated adds to the rows-generated counter for a table.
func (m *Metrics) AddRowsGenerated(table string, n int) {
	m.rowsGenerated.WithLabelValues(table).Add(float64(n))
}

// AddAnomaliesInjected adds to the anomalies-injected counter for a type.
func (m *Metrics) AddAnomaliesInjected(anomalyType string, n int) {
	m.anomaliesInjected.WithLabelValues(anomalyType).Add(float64(n))
}

// AddAnomaliesSkipped adds to the skipped-injection counter.
func (m *Metrics) AddAnomaliesSkipped(n int) {
	m.anomaliesSkipped.Add(float64(n))
}

// AddViolationsLabeled adds to the violations counter.
func (m *Metrics) AddViolationsLabeled(n int) {
	m.violationsLabeled.Add(float64(n))
}

// ObserveStageDuration records a stage duration sample.
func (m *Metrics) ObserveStageDuration(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}

// Collectors returns all Prometheus collectors for testing.
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.rowsGenerated,
		m.anomaliesInjected,
		m.anomaliesSkipped,
		m.violationsLabeled,
		m.stageDuration,
	}
}
