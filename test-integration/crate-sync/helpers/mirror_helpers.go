package helpers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stacklok/crate-sync/internal/crates"
	"github.com/stacklok/crate-sync/internal/git"
)

// LocalRemoteClient is a git.Client serving GitHub URLs from local repositories
type LocalRemoteClient struct {
	git.Client

	mu      sync.Mutex
	remotes map[string]string
	calls   map[string]int
}

// NewLocalRemoteClient wraps the real git client
func NewLocalRemoteClient() *LocalRemoteClient {
	return &LocalRemoteClient{
		Client:  git.NewDefaultGitClient(git.WithDepth(0)),
		remotes: make(map[string]string),
		calls:   make(map[string]int),
	}
}

// Serve makes repo resolve to the local repository at path
func (c *LocalRemoteClient) Serve(repo crates.GitHubRepo, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remotes[repo.URL()] = path
}

// Calls returns how many times url was cloned or pulled
func (c *LocalRemoteClient) Calls(url string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[url]
}

// ShallowCloneOrPull implements git.Client
func (c *LocalRemoteClient) ShallowCloneOrPull(ctx context.Context, url, path string) error {
	c.mu.Lock()
	local, ok := c.remotes[url]
	c.calls[url]++
	c.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", git.ErrNotFound, strings.TrimPrefix(url, crates.GitHubBaseURL+"/"))
	}
	return c.Client.ShallowCloneOrPull(ctx, local, path)
}
