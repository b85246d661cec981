package sync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/stacklok/crate-sync/internal/crates"
	"github.com/stacklok/crate-sync/internal/lists"
	"github.com/stacklok/crate-sync/internal/status"
	"github.com/stacklok/crate-sync/internal/telemetry"
)

//go:generate mockgen -destination=mocks/mock_sync.go -package=mocks -source=sync.go ListProvider,Writer

// Stages a list update can fail in
const (
	StageFetch = "fetch"
	StageStore = "store"
)

// ListProvider builds the list of a given kind
type ListProvider interface {
	CreateList(kind lists.Kind) (lists.List, error)
}

// Writer persists the crates of a list
type Writer interface {
	UpsertCrates(ctx context.Context, list string, records []crates.Crate) error
}

// Deps holds everything Apply needs. Status, Logger and Metrics are optional.
type Deps struct {
	Lists   ListProvider
	Writer  Writer
	Status  status.StatusPersistence
	Logger  *slog.Logger
	Metrics *telemetry.SyncMetrics
}

// Error is returned by Apply when a list fails to update
type Error struct {
	// List is the name of the failing list, or its kind when it could not be built
	List  string
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to update list %s (%s): %v", e.List, e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// UpdateLists selects the lists an update covers
type UpdateLists struct {
	GitHub   bool
	Registry bool
	Local    bool
}

// DefaultUpdateLists selects every list
func DefaultUpdateLists() UpdateLists {
	return UpdateLists{GitHub: true, Registry: true, Local: true}
}

// Apply updates the selected lists in order: github, registry, then local.
// It returns at the first failure.
func (u UpdateLists) Apply(ctx context.Context, deps Deps) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := &runner{deps: deps, logger: logger}

	steps := []struct {
		enabled bool
		kind    lists.Kind
		label   string
	}{
		{enabled: u.GitHub, kind: lists.KindGitHub, label: "GitHub"},
		{enabled: u.Registry, kind: lists.KindRegistry, label: "registry"},
		{enabled: u.Local, kind: lists.KindLocal, label: "local"},
	}

	for _, step := range steps {
		if !step.enabled {
			continue
		}

		logger.Info(fmt.Sprintf("Updating %s list", step.label))
		if err := r.update(ctx, step.kind); err != nil {
			logger.Error("List update failed", "kind", step.kind, "error", err)
			return err
		}
	}

	return nil
}

type runner struct {
	deps   Deps
	logger *slog.Logger
}

func (r *runner) update(ctx context.Context, kind lists.Kind) error {
	list, err := r.deps.Lists.CreateList(kind)
	if err != nil {
		return &Error{List: string(kind), Stage: StageFetch, Err: err}
	}
	name := list.Name()

	syncStatus := r.loadStatus(ctx, name)
	now := time.Now()
	syncStatus.Phase = status.SyncPhaseSyncing
	syncStatus.Message = "Sync in progress"
	syncStatus.LastAttempt = &now
	r.saveStatus(ctx, name, syncStatus)

	start := time.Now()

	records, err := list.Fetch(ctx)
	if err != nil {
		return r.fail(ctx, name, syncStatus, StageFetch, start, err)
	}

	crates.Sort(records)

	if err := r.deps.Writer.UpsertCrates(ctx, name, records); err != nil {
		return r.fail(ctx, name, syncStatus, StageStore, start, err)
	}

	duration := time.Since(start)
	r.deps.Metrics.RecordListSynced(name, len(records), duration)

	finished := time.Now()
	syncStatus.Phase = status.SyncPhaseComplete
	syncStatus.Message = "Sync completed successfully"
	syncStatus.LastSyncTime = &finished
	syncStatus.LastSyncHash = hashKeys(records)
	syncStatus.CrateCount = len(records)
	syncStatus.AttemptCount = 0
	r.saveStatus(ctx, name, syncStatus)

	r.logger.Info("List updated", "list", name, "count", len(records),
		"hash", syncStatus.LastSyncHash[:8], "duration", duration)
	return nil
}

func (r *runner) fail(
	ctx context.Context, name string, syncStatus *status.SyncStatus, stage string, start time.Time, err error,
) error {
	r.deps.Metrics.RecordListFailed(name, stage, time.Since(start))

	syncStatus.Phase = status.SyncPhaseFailed
	syncStatus.Message = err.Error()
	syncStatus.AttemptCount++
	r.saveStatus(ctx, name, syncStatus)

	return &Error{List: name, Stage: stage, Err: err}
}

// loadStatus returns the last persisted status, or a fresh one when there is none
func (r *runner) loadStatus(ctx context.Context, name string) *status.SyncStatus {
	if r.deps.Status == nil {
		return &status.SyncStatus{}
	}

	syncStatus, err := r.deps.Status.LoadStatus(ctx, name)
	if err != nil {
		r.logger.Warn("Failed to load sync status", "list", name, "error", err)
		return &status.SyncStatus{}
	}
	return syncStatus
}

func (r *runner) saveStatus(ctx context.Context, name string, syncStatus *status.SyncStatus) {
	if r.deps.Status == nil {
		return
	}

	if err := r.deps.Status.SaveStatus(ctx, name, syncStatus); err != nil {
		r.logger.Warn("Failed to persist sync status", "list", name, "phase", syncStatus.Phase, "error", err)
	}
}

// hashKeys identifies a sorted set of crates by the sha256 of their keys
func hashKeys(records []crates.Crate) string {
	h := sha256.New()
	for _, c := range records {
		h.Write([]byte(c.Key()))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
