package crates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrate_Keys(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		crate    Crate
		kind     Kind
		key      string
		asString string
	}{
		{
			name:     "github",
			crate:    GitHubRepo{Org: "acme", Name: "widget"},
			kind:     KindGitHub,
			key:      "github/acme/widget",
			asString: "acme/widget",
		},
		{
			name:     "registry",
			crate:    RegistryCrate{Name: "serde", Version: "1.0.200"},
			kind:     KindRegistry,
			key:      "registry/serde/1.0.200",
			asString: "serde-1.0.200",
		},
		{
			name:     "local",
			crate:    LocalCrate{Name: "build-fail"},
			kind:     KindLocal,
			key:      "local/build-fail",
			asString: "local/build-fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.kind, tt.crate.Kind())
			assert.Equal(t, tt.key, tt.crate.Key())
			assert.Equal(t, tt.asString, tt.crate.String())
		})
	}
}

func TestSort(t *testing.T) {
	t.Parallel()

	list := []Crate{
		LocalCrate{Name: "a"},
		RegistryCrate{Name: "serde", Version: "1.0.0"},
		GitHubRepo{Org: "b", Name: "a"},
		GitHubRepo{Org: "a", Name: "z"},
		RegistryCrate{Name: "anyhow", Version: "1.0.0"},
		GitHubRepo{Org: "a", Name: "b"},
	}

	Sort(list)

	assert.Equal(t, []Crate{
		GitHubRepo{Org: "a", Name: "b"},
		GitHubRepo{Org: "a", Name: "z"},
		GitHubRepo{Org: "b", Name: "a"},
		RegistryCrate{Name: "anyhow", Version: "1.0.0"},
		RegistryCrate{Name: "serde", Version: "1.0.0"},
		LocalCrate{Name: "a"},
	}, list)
}

func TestGitHubRepo_EqualityAsMapKey(t *testing.T) {
	t.Parallel()

	set := map[GitHubRepo]struct{}{}
	set[GitHubRepo{Org: "a", Name: "b"}] = struct{}{}
	set[GitHubRepo{Org: "a", Name: "b"}] = struct{}{}
	set[GitHubRepo{Org: "b", Name: "a"}] = struct{}{}

	assert.Len(t, set, 2)
	assert.Zero(t, Compare(GitHubRepo{Org: "a", Name: "b"}, GitHubRepo{Org: "a", Name: "b"}))
	assert.Negative(t, Compare(GitHubRepo{Org: "a", Name: "b"}, GitHubRepo{Org: "b", Name: "a"}))
}

func TestCompare_MixedValueAndPointer(t *testing.T) {
	t.Parallel()

	value := GitHubRepo{Org: "a", Name: "b"}
	pointer := &GitHubRepo{Org: "a", Name: "c"}

	assert.NotPanics(t, func() {
		assert.Negative(t, Compare(value, pointer))
		assert.Positive(t, Compare(pointer, value))
		assert.Zero(t, Compare(pointer, &GitHubRepo{Org: "a", Name: "c"}))
	})

	list := []Crate{pointer, LocalCrate{Name: "x"}, value}
	assert.NotPanics(t, func() { Sort(list) })
	assert.Equal(t, []Crate{value, pointer, LocalCrate{Name: "x"}}, list)
}
