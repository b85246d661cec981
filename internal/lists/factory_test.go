package lists

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/crate-sync/internal/config"
	"github.com/stacklok/crate-sync/internal/crates"
	"github.com/stacklok/crate-sync/internal/httpclient"
)

func TestFactory_CreateList(t *testing.T) {
	t.Parallel()

	factory := NewFactory(config.Default(), httpclient.NewDefaultClient(0), &MockGitClient{}, nil)

	tests := []struct {
		name         string
		kind         Kind
		expectedName string
		expectedType any
		wantErr      bool
	}{
		{name: "github", kind: KindGitHub, expectedName: NameGitHub, expectedType: &GitHubList{}},
		{name: "registry", kind: KindRegistry, expectedName: NameRegistry, expectedType: &RegistryList{}},
		{name: "local", kind: KindLocal, expectedName: NameLocal, expectedType: &LocalList{}},
		{name: "unknown", kind: Kind("svn"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			list, err := factory.CreateList(tt.kind)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unsupported list kind")
				return
			}

			require.NoError(t, err)
			assert.IsType(t, tt.expectedType, list)
			assert.Equal(t, tt.expectedName, list.Name())
		})
	}
}

func TestFactory_UsesConfiguration(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Lists.GitHub.Source = "http://example.com/list.csv"
	cfg.Lists.Local.Path = "/srv/local"

	factory := NewFactory(cfg, nil, nil, nil)

	github, err := factory.CreateList(KindGitHub)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/list.csv", github.(*GitHubList).source)

	local, err := factory.CreateList(KindLocal)
	require.NoError(t, err)
	assert.Equal(t, "/srv/local", local.(*LocalList).path)
}

func TestFactory_AppliesFilters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	for _, name := range []string{"keep-me", "drop-me", "other"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0755))
	}

	cfg := config.Default()
	cfg.Lists.Local.Path = dir
	cfg.Lists.Local.Filter = &config.FilterConfig{
		Names: &config.NameFilterConfig{Include: []string{"*-me"}, Exclude: []string{"drop-*"}},
	}

	list, err := NewFactory(cfg, nil, nil, nil).CreateList(KindLocal)
	require.NoError(t, err)
	assert.Equal(t, NameLocal, list.Name())

	records, err := list.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []crates.Crate{crates.LocalCrate{Name: "keep-me"}}, records)
}

func TestFactory_InvalidFilter(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Lists.GitHub.Filter = &config.FilterConfig{
		Names: &config.NameFilterConfig{Exclude: []string{"[broken"}},
	}

	_, err := NewFactory(cfg, nil, nil, nil).CreateList(KindGitHub)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter for list github-oss")
}

func TestFactory_FilteredFetchError(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Lists.Local.Path = filepath.Join(t.TempDir(), "missing")
	cfg.Lists.Local.Filter = &config.FilterConfig{Names: &config.NameFilterConfig{Include: []string{"*"}}}

	list, err := NewFactory(cfg, nil, nil, nil).CreateList(KindLocal)
	require.NoError(t, err)

	_, err = list.Fetch(context.Background())
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
}
