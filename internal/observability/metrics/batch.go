package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kirillkom/policy-sorter/internal/core/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// BatchMetrics collects per-stage counters for one command run and writes
// them in node-exporter textfile format.
type BatchMetrics struct {
	registry *prometheus.Registry

	recordsTotal  *prometheus.CounterVec
	bytesTotal    *prometheus.CounterVec
	stageDuration *prometheus.GaugeVec
	lastRun       *prometheus.GaugeVec
}

func NewBatchMetrics(service string) *BatchMetrics {
	registry := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"service": service}

	recordsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "policy_sorter",
			Name:        "records_total",
			Help:        "Records handled per stage by outcome.",
			ConstLabels: constLabels,
		},
		[]string{"stage", "outcome"},
	)
	bytesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "policy_sorter",
			Name:        "bytes_total",
			Help:        "Document bytes downloaded or moved per stage.",
			ConstLabels: constLabels,
		},
		[]string{"stage"},
	)
	stageDuration := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   "policy_sorter",
			Name:        "stage_duration_seconds",
			Help:        "Wall time of the last stage run.",
			ConstLabels: constLabels,
		},
		[]string{"stage"},
	)
	lastRun := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   "policy_sorter",
			Name:        "stage_last_run_timestamp_seconds",
			Help:        "Unix time the stage last finished.",
			ConstLabels: constLabels,
		},
		[]string{"stage"},
	)

	registry.MustRegister(recordsTotal, bytesTotal, stageDuration, lastRun)

	return &BatchMetrics{
		registry:      registry,
		recordsTotal:  recordsTotal,
		bytesTotal:    bytesTotal,
		stageDuration: stageDuration,
		lastRun:       lastRun,
	}
}

func (m *BatchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveReport adds one finished stage report.
func (m *BatchMetrics) ObserveReport(report *domain.Report, elapsed time.Duration, finished time.Time) {
	if report == nil {
		return
	}
	for _, kind := range []domain.OutcomeKind{domain.OutcomeSucceeded, domain.OutcomeSkipped, domain.OutcomeFailed} {
		m.recordsTotal.WithLabelValues(report.Stage, string(kind)).Add(float64(report.Count(kind)))
	}
	if report.Bytes > 0 {
		m.bytesTotal.WithLabelValues(report.Stage).Add(float64(report.Bytes))
	}
	m.stageDuration.WithLabelValues(report.Stage).Set(elapsed.Seconds())
	m.lastRun.WithLabelValues(report.Stage).Set(float64(finished.Unix()))
}

// WriteTextfile writes the registry to path, creating parent directories.
func (m *BatchMetrics) WriteTextfile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
