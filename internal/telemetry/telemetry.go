package telemetry

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Telemetry owns the metrics registry and the instruments registered on it
type Telemetry struct {
	registry *prometheus.Registry
	Sync     *SyncMetrics
	Mirror   *MirrorMetrics
}

// New creates a registry and registers every instrument on it
func New() (*Telemetry, error) {
	registry := prometheus.NewRegistry()

	syncMetrics, err := NewSyncMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register sync metrics: %w", err)
	}

	mirrorMetrics, err := NewMirrorMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register mirror metrics: %w", err)
	}

	return &Telemetry{
		registry: registry,
		Sync:     syncMetrics,
		Mirror:   mirrorMetrics,
	}, nil
}

// Registry returns the underlying registry
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}

// WriteTextfile writes the current metrics to path in the Prometheus text
// format, for the node exporter textfile collector. An empty path is a no-op.
func (t *Telemetry) WriteTextfile(path string) error {
	if t == nil || path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}

	if err := prometheus.WriteToTextfile(path, t.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}

	slog.Debug("Wrote metrics textfile", "path", path)
	return nil
}
