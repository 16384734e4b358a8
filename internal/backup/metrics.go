package backup

import (
	"time"

	"github.com/dukerupert/garagebook/internal/archive"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the import collectors. They are registered on the registry
// passed to NewMetrics so tests can use a fresh one.
type Metrics struct {
	imports       *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	rowsRestored  *prometheus.CounterVec
	filesRestored *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "garagebook_backup_imports_total",
			Help: "Backup imports by outcome",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "garagebook_backup_import_phase_duration_seconds",
			Help:    "Time spent in each import phase",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"phase"}),
		rowsRestored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "garagebook_backup_rows_restored_total",
			Help: "Rows recreated by imports, by table",
		}, []string{"table"}),
		filesRestored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "garagebook_backup_files_restored_total",
			Help: "Archive files handled by imports, by result",
		}, []string{"result"}),
	}
	reg.MustRegister(m.imports, m.duration, m.rowsRestored, m.filesRestored)
	return m
}

// Import outcomes.
const (
	outcomeSuccess       = "success"
	outcomeRejected      = "rejected"
	outcomeRelationalErr = "relational_failed"
	outcomeFilesErr      = "files_failed"
)

func (m *Metrics) observePhase(phase string, start time.Time) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(phase).Observe(time.Since(start).Seconds())
}

func (m *Metrics) recordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordRows(counts Counts) {
	if m == nil {
		return
	}
	for table, n := range counts {
		m.rowsRestored.WithLabelValues(table).Add(float64(n))
	}
}

func (m *Metrics) recordFiles(report archive.FileReport) {
	if m == nil {
		return
	}
	m.filesRestored.WithLabelValues("written").Add(float64(report.Written))
	m.filesRestored.WithLabelValues("skipped").Add(float64(report.Skipped))
}
