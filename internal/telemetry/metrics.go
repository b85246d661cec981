// Package telemetry provides Prometheus metrics for list syncs and mirror upkeep.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crate_sync"

// Mirror operations
const (
	OperationClone = "clone"
	OperationPull  = "pull"
	OperationCopy  = "copy"
)

// Operation results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// SyncMetrics holds the instruments for list sync operations
type SyncMetrics struct {
	listCrates   *prometheus.GaugeVec
	listFailures *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
}

// NewSyncMetrics creates and registers sync metrics.
// If reg is nil, it returns nil (no-op metrics).
func NewSyncMetrics(reg prometheus.Registerer) (*SyncMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &SyncMetrics{
		listCrates: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "list_crates",
			Help:      "Number of crates stored by the last successful sync of each list",
		}, []string{"list"}),
		listFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_failures_total",
			Help:      "Number of failed list syncs by stage",
		}, []string{"list", "stage"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "list_sync_duration_seconds",
			Help:      "Duration of list syncs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"list", "success"}),
	}

	for _, c := range []prometheus.Collector{m.listCrates, m.listFailures, m.syncDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordListSynced records a successful sync of a list
func (m *SyncMetrics) RecordListSynced(list string, count int, duration time.Duration) {
	if m == nil {
		return
	}
	m.listCrates.WithLabelValues(list).Set(float64(count))
	m.syncDuration.WithLabelValues(list, strconv.FormatBool(true)).Observe(duration.Seconds())
}

// RecordListFailed records a failed sync of a list at the given stage
func (m *SyncMetrics) RecordListFailed(list, stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.listFailures.WithLabelValues(list, stage).Inc()
	m.syncDuration.WithLabelValues(list, strconv.FormatBool(false)).Observe(duration.Seconds())
}

// MirrorMetrics holds the instruments for mirror operations
type MirrorMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMirrorMetrics creates and registers mirror metrics.
// If reg is nil, it returns nil (no-op metrics).
func NewMirrorMetrics(reg prometheus.Registerer) (*MirrorMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &MirrorMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_operations_total",
			Help:      "Number of mirror operations by type and result",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mirror_duration_seconds",
			Help:      "Duration of mirror operations in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
		}, []string{"operation"}),
	}

	for _, c := range []prometheus.Collector{m.operations, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// RecordOperation records one mirror operation
func (m *MirrorMetrics) RecordOperation(operation string, duration time.Duration, err error) {
	if m == nil {
		return
	}

	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}

	m.operations.WithLabelValues(operation, result).Inc()
	m.duration.WithLabelValues(operation).Observe(duration.Seconds())
}
