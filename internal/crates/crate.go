// Package crates defines the canonical crate record shared by every list source,
// the storage layer and the mirror manager.
package crates

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies which variant a Crate is
type Kind string

const (
	// KindGitHub is a crate backed by a GitHub repository
	KindGitHub Kind = "github"

	// KindRegistry is a crate published on the package registry
	KindRegistry Kind = "registry"

	// KindLocal is a crate supplied from the local crates directory
	KindLocal Kind = "local"
)

// kindOrder fixes the ordering of variants in Compare
var kindOrder = map[Kind]int{
	KindGitHub:   0,
	KindRegistry: 1,
	KindLocal:    2,
}

// Crate is a discovered package. The set of implementations is closed: only
// GitHubRepo, RegistryCrate and LocalCrate satisfy it.
type Crate interface {
	// Kind returns the variant of the crate
	Kind() Kind

	// Key returns the stable identity used as the storage key
	Key() string

	fmt.Stringer

	sealed()
}

// RegistryCrate references a published registry package version
type RegistryCrate struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Kind implements Crate
func (RegistryCrate) Kind() Kind { return KindRegistry }

// Key implements Crate
func (c RegistryCrate) Key() string {
	return string(KindRegistry) + "/" + c.Name + "/" + c.Version
}

func (c RegistryCrate) String() string {
	return c.Name + "-" + c.Version
}

func (RegistryCrate) sealed() {}

// LocalCrate is a crate living in the local crates directory
type LocalCrate struct {
	Name string `json:"name"`
}

// Kind implements Crate
func (LocalCrate) Kind() Kind { return KindLocal }

// Key implements Crate
func (c LocalCrate) Key() string {
	return string(KindLocal) + "/" + c.Name
}

func (c LocalCrate) String() string {
	return "local/" + c.Name
}

func (LocalCrate) sealed() {}

// Compare orders crates by kind first and key second.
// It returns a negative number when a < b, zero when equal and positive when a > b.
func Compare(a, b Crate) int {
	if ka, kb := kindOrder[a.Kind()], kindOrder[b.Kind()]; ka != kb {
		return ka - kb
	}
	ra, okA := a.(GitHubRepo)
	rb, okB := b.(GitHubRepo)
	if okA && okB {
		return ra.Compare(rb)
	}
	return strings.Compare(a.Key(), b.Key())
}

// Sort sorts crates in place using Compare
func Sort(list []Crate) {
	slices.SortStableFunc(list, Compare)
}
