// Package mirror keeps local mirrors of GitHub repositories and materializes
// working copies from them.
package mirror

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/crate-sync/internal/crates"
	"github.com/stacklok/crate-sync/internal/fsutil"
	"github.com/stacklok/crate-sync/internal/git"
	"github.com/stacklok/crate-sync/internal/telemetry"
)

// lockRetryDelay is how often a held file lock is polled
const lockRetryDelay = 100 * time.Millisecond

// Manager prepares working copies of GitHub repositories from local mirrors.
// Calls for the same repository are serialized, both within the process and
// across processes sharing the mirrors directory.
type Manager struct {
	dir        string
	git        git.Client
	logger     *slog.Logger
	metrics    *telemetry.MirrorMetrics
	gitTimeout time.Duration
	locks      *keyedLock
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger. It defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithMetrics records every mirror operation
func WithMetrics(metrics *telemetry.MirrorMetrics) Option {
	return func(m *Manager) {
		m.metrics = metrics
	}
}

// WithGitTimeout bounds each clone or pull. Zero means no timeout.
func WithGitTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		m.gitTimeout = timeout
	}
}

// NewManager creates a Manager keeping its mirrors under dir
func NewManager(dir string, client git.Client, opts ...Option) *Manager {
	m := &Manager{
		dir:    dir,
		git:    client,
		logger: slog.Default(),
		locks:  newKeyedLock(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MirrorPath returns where the mirror of repo lives
func (m *Manager) MirrorPath(repo crates.GitHubRepo) string {
	return filepath.Join(m.dir, repo.MirrorDirName())
}

// Prepare brings the mirror of repo up to date and copies it into dest.
// The copy is independent of the mirror, so callers may change dest freely.
func (m *Manager) Prepare(ctx context.Context, repo crates.GitHubRepo, dest string) error {
	url := repo.URL()
	path := m.MirrorPath(repo)

	unlock, err := m.lock(ctx, repo, path)
	if err != nil {
		return &Error{URL: url, Path: path, Err: err}
	}
	defer unlock()

	if err := m.update(ctx, url, path); err != nil {
		return &Error{URL: url, Path: path, Err: err}
	}

	m.logger.Debug("Copying mirror", "repo", repo.Slug(), "from", path, "to", dest)
	start := time.Now()
	err = fsutil.CopyDir(path, dest)
	m.metrics.RecordOperation(telemetry.OperationCopy, time.Since(start), err)
	if err != nil {
		return &IOError{Src: path, Dst: dest, Err: err}
	}

	return nil
}

func (m *Manager) update(ctx context.Context, url, path string) error {
	operation := telemetry.OperationClone
	if _, err := os.Stat(filepath.Join(path, ".git")); err == nil {
		operation = telemetry.OperationPull
	}

	if m.gitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.gitTimeout)
		defer cancel()
	}

	m.logger.Info("Updating mirror", "url", url, "path", path, "operation", operation)
	start := time.Now()
	err := m.git.ShallowCloneOrPull(ctx, url, path)
	m.metrics.RecordOperation(operation, time.Since(start), err)

	return err
}

func (m *Manager) lock(ctx context.Context, repo crates.GitHubRepo, path string) (func(), error) {
	unlock, err := m.locks.lock(ctx, repo.Slug())
	if err != nil {
		return nil, fmt.Errorf("waiting for mirror lock: %w", err)
	}

	if err := os.MkdirAll(m.dir, 0750); err != nil {
		unlock()
		return nil, fmt.Errorf("failed to create mirrors directory: %w", err)
	}

	// The lock file name can't collide with a mirror directory since escaped
	// names never contain a second '.'
	fileLock := flock.New(path + ".lock")
	locked, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		unlock()
		if err == nil {
			err = ctx.Err()
		}
		return nil, fmt.Errorf("waiting for mirror file lock: %w", err)
	}

	return func() {
		if err := fileLock.Unlock(); err != nil {
			m.logger.Warn("Failed to release mirror file lock", "path", fileLock.Path(), "error", err)
		}
		unlock()
	}, nil
}

// Target is one repository to prepare and where to put it
type Target struct {
	Repo crates.GitHubRepo
	Dest string
}

// PrepareAll prepares targets with at most parallel running at once. Targets
// for the same repository still run one at a time. The first failure cancels
// the remaining work and is returned.
func (m *Manager) PrepareAll(ctx context.Context, targets []Target, parallel int) error {
	g, ctx := errgroup.WithContext(ctx)
	if parallel > 0 {
		g.SetLimit(parallel)
	}

	for _, target := range targets {
		g.Go(func() error {
			return m.Prepare(ctx, target.Repo, target.Dest)
		})
	}

	return g.Wait()
}
