package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The in-process file transport used by these tests is exercised with full
// history, so the client is built with depth zero.
func newTestClient() Client {
	return NewDefaultGitClient(WithDepth(0))
}

func TestNewDefaultGitClient(t *testing.T) {
	t.Parallel()

	client := NewDefaultGitClient()
	require.NotNil(t, client)

	concrete, ok := client.(*defaultGitClient)
	require.True(t, ok)
	assert.Equal(t, DefaultDepth, concrete.depth)
}

func TestShallowCloneOrPull_Clone(t *testing.T) {
	t.Parallel()

	remote := CreateTestRepo(t, map[string]string{
		"Cargo.toml": "[package]\nname = \"widget\"\n",
		"src/lib.rs": "pub fn widget() {}\n",
	})
	dest := filepath.Join(t.TempDir(), "mirrors", "acme.widget")

	client := newTestClient()
	require.NoError(t, client.ShallowCloneOrPull(t.Context(), remote, dest))

	content, err := os.ReadFile(filepath.Join(dest, "src", "lib.rs"))
	require.NoError(t, err)
	assert.Equal(t, "pub fn widget() {}\n", string(content))

	remoteHead, err := client.Head(remote)
	require.NoError(t, err)
	localHead, err := client.Head(dest)
	require.NoError(t, err)
	assert.Equal(t, remoteHead, localHead)

	// No temporary clone directories are left behind
	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "acme.widget", entries[0].Name())
}

func TestShallowCloneOrPull_Pull(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		client Client
	}{
		{name: "full history", client: newTestClient()},
		{name: "default depth", client: NewDefaultGitClient()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			remote := CreateTestRepo(t, map[string]string{"README.md": "first\n"})
			dest := filepath.Join(t.TempDir(), "checkout")

			require.NoError(t, tt.client.ShallowCloneOrPull(t.Context(), remote, dest))

			// Pulling with nothing new upstream is not an error
			require.NoError(t, tt.client.ShallowCloneOrPull(t.Context(), remote, dest))

			CommitTestFiles(t, remote, map[string]string{
				"README.md":  "second\n",
				"NEWFILE.md": "new\n",
			})

			// Local edits are discarded by the update
			require.NoError(t, os.WriteFile(filepath.Join(dest, "README.md"), []byte("local edit\n"), 0644))

			require.NoError(t, tt.client.ShallowCloneOrPull(t.Context(), remote, dest))

			content, err := os.ReadFile(filepath.Join(dest, "README.md"))
			require.NoError(t, err)
			assert.Equal(t, "second\n", string(content))
			assert.FileExists(t, filepath.Join(dest, "NEWFILE.md"))

			remoteHead, err := tt.client.Head(remote)
			require.NoError(t, err)
			localHead, err := tt.client.Head(dest)
			require.NoError(t, err)
			assert.Equal(t, remoteHead, localHead)

			// The checked out branch now has a remote-tracking ref
			repo, err := git.PlainOpen(dest)
			require.NoError(t, err)
			head, err := repo.Head()
			require.NoError(t, err)
			tracking, err := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, head.Name().Short()), true)
			require.NoError(t, err)
			assert.Equal(t, remoteHead, tracking.Hash().String())

			require.NoError(t, tt.client.ShallowCloneOrPull(t.Context(), remote, dest))
		})
	}
}

func TestTrackingRefSpec(t *testing.T) {
	t.Parallel()

	spec := trackingRefSpec(plumbing.NewBranchReferenceName("main"), plumbing.NewRemoteReferenceName("origin", "main"))

	require.NoError(t, spec.Validate())
	assert.Equal(t, "+refs/heads/main:refs/remotes/origin/main", spec.String())
	assert.True(t, spec.IsForceUpdate())
}

func TestShallowCloneOrPull_ReplacesNonRepository(t *testing.T) {
	t.Parallel()

	remote := CreateTestRepo(t, map[string]string{"README.md": "hello\n"})
	dest := filepath.Join(t.TempDir(), "checkout")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "stale.txt"), []byte("stale"), 0644))

	client := newTestClient()
	require.NoError(t, client.ShallowCloneOrPull(t.Context(), remote, dest))

	assert.FileExists(t, filepath.Join(dest, "README.md"))
	assert.NoFileExists(t, filepath.Join(dest, "stale.txt"))
}

func TestShallowCloneOrPull_MissingRemote(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "checkout")
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	client := newTestClient()
	err := client.ShallowCloneOrPull(t.Context(), missing, dest)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clone")
	assert.NoDirExists(t, dest)
}

func TestHead_NotARepository(t *testing.T) {
	t.Parallel()

	_, err := NewDefaultGitClient().Head(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open repository")
}
