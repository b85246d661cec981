package git

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// CreateTestRepo initializes a repository in a temporary directory and commits
// the given files. It returns the repository path.
func CreateTestRepo(t *testing.T, files map[string]string) string {
	t.Helper()

	repoDir := t.TempDir()
	if _, err := git.PlainInit(repoDir, false); err != nil {
		t.Fatalf("Failed to init repository: %v", err)
	}

	CommitTestFiles(t, repoDir, files)
	return repoDir
}

// CommitTestFiles writes files into the repository at repoDir and commits them.
// An empty content removes the file.
func CommitTestFiles(t *testing.T, repoDir string, files map[string]string) {
	t.Helper()

	repo, err := git.PlainOpen(repoDir)
	if err != nil {
		t.Fatalf("Failed to open repository: %v", err)
	}

	workTree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Failed to get worktree: %v", err)
	}

	for filename, content := range files {
		filePath := filepath.Join(repoDir, filename)

		if content == "" {
			if _, err := workTree.Remove(filename); err != nil {
				t.Fatalf("Failed to remove file %s: %v", filename, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", filename, err)
		}
		if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write file %s: %v", filename, err)
		}
		if _, err := workTree.Add(filename); err != nil {
			t.Fatalf("Failed to add file %s: %v", filename, err)
		}
	}

	_, err = workTree.Commit("Update test files", &git.CommitOptions{
		Author: &object.Signature{Name: "Test Author", Email: "test@example.com"},
	})
	if err != nil {
		t.Fatalf("Failed to commit: %v", err)
	}
}
