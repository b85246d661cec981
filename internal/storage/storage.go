// Package storage persists crate records produced by list syncs.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/stacklok/crate-sync/internal/config"
	"github.com/stacklok/crate-sync/internal/crates"
)

// StoredCrate is a crate record as persisted
type StoredCrate struct {
	Key       string    `json:"key"`
	Kind      string    `json:"kind"`
	List      string    `json:"list"`
	Org       string    `json:"org,omitempty"`
	Name      string    `json:"name"`
	Version   string    `json:"version,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store is the sink list syncs write to. Upserts are keyed by crates.Crate.Key,
// so writing the same crate twice updates it in place.
type Store interface {
	// UpsertCrates inserts or updates every crate, recording the list it came from
	UpsertCrates(ctx context.Context, list string, records []crates.Crate) error

	// ListCrates returns the stored crates of a list ordered by key.
	// An empty list name returns every crate.
	ListCrates(ctx context.Context, list string) ([]StoredCrate, error)

	Close() error
}

// New opens the store selected by the configuration
func New(cfg config.StorageConfig) (Store, error) {
	switch cfg.Type {
	case config.StorageTypeBolt, "":
		return NewBolt(cfg.Path)
	case config.StorageTypeSQLite:
		return NewSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

func toStored(list string, c crates.Crate, now time.Time) (StoredCrate, error) {
	stored := StoredCrate{
		Key:       c.Key(),
		Kind:      string(c.Kind()),
		List:      list,
		UpdatedAt: now,
	}

	switch v := c.(type) {
	case crates.GitHubRepo:
		stored.Org = v.Org
		stored.Name = v.Name
	case crates.RegistryCrate:
		stored.Name = v.Name
		stored.Version = v.Version
	case crates.LocalCrate:
		stored.Name = v.Name
	default:
		return StoredCrate{}, fmt.Errorf("unsupported crate type %T", c)
	}

	return stored, nil
}
