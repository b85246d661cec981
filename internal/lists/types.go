// Package lists fetches the crate lists a sync pass stores: the curated GitHub
// repositories list, the crates.io index and the local crates directory.
package lists

import (
	"context"
	"fmt"

	"github.com/stacklok/crate-sync/internal/crates"
)

//go:generate mockgen -destination=mocks/mock_list.go -package=mocks -source=types.go List,Factory

// Kind identifies one of the supported lists
type Kind string

const (
	// KindGitHub is the curated list of GitHub repositories
	KindGitHub Kind = "github"

	// KindRegistry is the crates.io index
	KindRegistry Kind = "registry"

	// KindLocal is the local crates directory
	KindLocal Kind = "local"
)

// List names, used for logging, storage and status
const (
	NameGitHub   = "github-oss"
	NameRegistry = "crates-io"
	NameLocal    = "local"
)

// List is a provider of crate records
type List interface {
	// Name returns the stable name of the list
	Name() string

	// Fetch retrieves every crate of the list. On failure it returns a
	// *FetchError and no records.
	Fetch(ctx context.Context) ([]crates.Crate, error)
}

// Factory creates lists based on their kind
type Factory interface {
	// CreateList creates the list of the given kind
	CreateList(kind Kind) (List, error)
}

// FetchError is returned when a whole list can't be fetched or decoded
type FetchError struct {
	List     string
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch list %s from %s: %v", e.List, e.Location, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
