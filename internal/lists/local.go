package lists

import (
	"context"
	"os"
	"strings"

	"github.com/stacklok/crate-sync/internal/crates"
)

// LocalList lists the crates kept in a local directory, one per subdirectory
type LocalList struct {
	path string
}

// NewLocalList creates the list reading the directory at path
func NewLocalList(path string) *LocalList {
	return &LocalList{path: path}
}

// Name implements List
func (*LocalList) Name() string {
	return NameLocal
}

// Fetch lists the subdirectories of the local crates directory. Files and
// hidden entries are ignored.
func (l *LocalList) Fetch(ctx context.Context) ([]crates.Crate, error) {
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{List: NameLocal, Location: l.path, Err: err}
	}

	entries, err := os.ReadDir(l.path)
	if err != nil {
		return nil, &FetchError{List: NameLocal, Location: l.path, Err: err}
	}

	var records []crates.Crate
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		records = append(records, crates.LocalCrate{Name: entry.Name()})
	}

	return records, nil
}
