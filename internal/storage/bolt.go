package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/stacklok/crate-sync/internal/crates"
)

const boltBucketCrates = "crates" // key: crate key -> StoredCrate JSON

// Bolt stores crates in a bbolt database
type Bolt struct {
	db  *bbolt.DB
	now func() time.Time
}

// NewBolt opens or creates a bbolt database at path
func NewBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketCrates))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Bolt{db: db, now: time.Now}, nil
}

// UpsertCrates writes every crate in a single transaction
func (b *Bolt) UpsertCrates(ctx context.Context, list string, records []crates.Crate) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	now := b.now().UTC()
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketCrates))
		for _, c := range records {
			stored, err := toStored(list, c, now)
			if err != nil {
				return err
			}

			data, err := json.Marshal(stored)
			if err != nil {
				return fmt.Errorf("encoding crate %s: %w", stored.Key, err)
			}

			if err := bucket.Put([]byte(stored.Key), data); err != nil {
				return fmt.Errorf("storing crate %s: %w", stored.Key, err)
			}
		}
		return nil
	})
}

// ListCrates returns crates in key order, which is bbolt's iteration order
func (b *Bolt) ListCrates(ctx context.Context, list string) ([]StoredCrate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result []StoredCrate
	err := b.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketCrates)).ForEach(func(k, v []byte) error {
			var stored StoredCrate
			if err := json.Unmarshal(v, &stored); err != nil {
				return fmt.Errorf("decoding crate %s: %w", k, err)
			}
			if list == "" || stored.List == list {
				result = append(result, stored)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Close closes the database
func (b *Bolt) Close() error {
	return b.db.Close()
}
