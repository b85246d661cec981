// Package status tracks and persists the sync status of each crate list.
package status

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

//go:generate mockgen -destination=mocks/mock_status_persistence.go -package=mocks -source=persistence.go StatusPersistence

const statusFileSuffix = ".json"

// StatusPersistence defines the interface for sync status persistence
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus saves the sync status of a list
	SaveStatus(ctx context.Context, list string, status *SyncStatus) error

	// LoadStatus loads the sync status of a list.
	// Returns an empty SyncStatus if the list was never synced.
	LoadStatus(ctx context.Context, list string) (*SyncStatus, error)

	// LoadAllStatus loads the sync status of every list
	LoadAllStatus(ctx context.Context) (map[string]*SyncStatus, error)
}

// fileStatusPersistence keeps one JSON file per list under basePath
type fileStatusPersistence struct {
	basePath string
}

// NewFileStatusPersistence creates a new file-based status persistence
func NewFileStatusPersistence(basePath string) StatusPersistence {
	return &fileStatusPersistence{
		basePath: basePath,
	}
}

func (f *fileStatusPersistence) path(list string) (string, error) {
	if list == "" || strings.ContainsAny(list, `/\`) || list == "." || list == ".." {
		return "", fmt.Errorf("invalid list name %q", list)
	}
	return filepath.Join(f.basePath, list+statusFileSuffix), nil
}

// SaveStatus writes the status through a temporary file and a rename, so
// readers never see a partial file
func (f *fileStatusPersistence) SaveStatus(_ context.Context, list string, status *SyncStatus) error {
	filePath, err := f.path(list)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(f.basePath, 0750); err != nil {
		return fmt.Errorf("failed to create status directory: %w", err)
	}

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status for list '%s': %w", list, err)
	}

	tempPath := filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file for list '%s': %w", list, err)
	}

	if err := os.Rename(tempPath, filePath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename status file for list '%s': %w", list, err)
	}

	return nil
}

// LoadStatus reads the status of a list
func (f *fileStatusPersistence) LoadStatus(_ context.Context, list string) (*SyncStatus, error) {
	filePath, err := f.path(list)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- list names are validated above
	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return &SyncStatus{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read status file for list '%s': %w", list, err)
	}

	var status SyncStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status for list '%s': %w", list, err)
	}

	return &status, nil
}

// LoadAllStatus reads every status file. Unreadable files are skipped.
func (f *fileStatusPersistence) LoadAllStatus(ctx context.Context) (map[string]*SyncStatus, error) {
	result := make(map[string]*SyncStatus)

	entries, err := os.ReadDir(f.basePath)
	if errors.Is(err, os.ErrNotExist) {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read status directory: %w", err)
	}

	for _, entry := range entries {
		list, ok := strings.CutSuffix(entry.Name(), statusFileSuffix)
		if entry.IsDir() || !ok {
			continue
		}

		status, err := f.LoadStatus(ctx, list)
		if err != nil {
			continue
		}
		result[list] = status
	}

	return result, nil
}
