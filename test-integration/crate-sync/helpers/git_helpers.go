package helpers

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/onsi/gomega"
)

// GitTestHelper manages git repositories for testing
type GitTestHelper struct {
	tempDir      string
	repositories []*GitTestRepository
}

// GitTestRepository represents a test git repository
type GitTestRepository struct {
	Name string
	Path string
}

// IndexEntry is one published version in a registry index file
type IndexEntry struct {
	Name    string `json:"name"`
	Version string `json:"vers"`
	Yanked  bool   `json:"yanked"`
}

// NewGitTestHelper creates a new git test helper
func NewGitTestHelper() *GitTestHelper {
	tempDir, err := os.MkdirTemp("", "git-test-repos-*")
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	return &GitTestHelper{tempDir: tempDir}
}

// CreateRepository creates a repository with an initial commit
func (g *GitTestHelper) CreateRepository(name string) *GitTestRepository {
	repoPath := filepath.Join(g.tempDir, name)
	_, err := git.PlainInit(repoPath, false)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	repo := &GitTestRepository{Name: name, Path: repoPath}
	g.CommitFiles(repo, map[string]string{"README.md": "# Test Repository\n"}, "Initial commit")

	g.repositories = append(g.repositories, repo)
	return repo
}

// CreateIndexRepository creates a repository laid out like the crates.io index
func (g *GitTestHelper) CreateIndexRepository(name string) *GitTestRepository {
	repo := g.CreateRepository(name)
	g.CommitFiles(repo, map[string]string{
		"config.json": `{"dl":"https://static.crates.io/crates","api":"https://crates.io"}`,
	}, "Add index config")
	return repo
}

// CommitIndexEntries writes the entries of every crate to its index file and commits them
func (g *GitTestHelper) CommitIndexEntries(repo *GitTestRepository, entries map[string][]IndexEntry, message string) {
	files := make(map[string]string, len(entries))
	for name, versions := range entries {
		var b strings.Builder
		for _, entry := range versions {
			line, err := json.Marshal(entry)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			b.Write(line)
			b.WriteByte('\n')
		}
		files[IndexPath(name)] = b.String()
	}
	g.CommitFiles(repo, files, message)
}

// CommitFiles writes files into the repository and commits them
func (g *GitTestHelper) CommitFiles(repo *GitTestRepository, files map[string]string, message string) {
	r, err := git.PlainOpen(repo.Path)
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	workTree, err := r.Worktree()
	gomega.Expect(err).NotTo(gomega.HaveOccurred())

	for filename, content := range files {
		filePath := filepath.Join(repo.Path, filename)
		gomega.Expect(os.MkdirAll(filepath.Dir(filePath), 0750)).To(gomega.Succeed())
		gomega.Expect(os.WriteFile(filePath, []byte(content), 0600)).To(gomega.Succeed())

		_, err := workTree.Add(filename)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
	}

	_, err = workTree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: "Test User", Email: "test@example.com", When: time.Now()},
	})
	gomega.Expect(err).NotTo(gomega.HaveOccurred())
}

// CleanupRepositories removes all test repositories
func (g *GitTestHelper) CleanupRepositories() error {
	g.repositories = nil
	return os.RemoveAll(g.tempDir)
}

// IndexPath returns where the index keeps the file of a crate
func IndexPath(name string) string {
	lower := strings.ToLower(name)
	switch len(lower) {
	case 1:
		return filepath.Join("1", lower)
	case 2:
		return filepath.Join("2", lower)
	case 3:
		return filepath.Join("3", lower[:1], lower)
	default:
		return filepath.Join(lower[:2], lower[2:4], lower)
	}
}
