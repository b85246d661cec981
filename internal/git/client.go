// Package git keeps shallow local checkouts of remote repositories up to date.
package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/google/uuid"
)

// DefaultDepth is the history depth kept by checkouts
const DefaultDepth = 1

var (
	// ErrNotFound is returned when the remote repository does not exist
	ErrNotFound = errors.New("repository not found")

	// ErrUnauthorized is returned when the remote refuses access
	ErrUnauthorized = errors.New("repository access denied")
)

// Client defines the interface for Git operations
type Client interface {
	// ShallowCloneOrPull clones url into path, or brings the existing checkout
	// at path in line with the remote default branch
	ShallowCloneOrPull(ctx context.Context, url, path string) error

	// Head returns the commit hash checked out at path
	Head(path string) (string, error)
}

// Option configures the default client
type Option func(*defaultGitClient)

// WithDepth sets the history depth. Zero fetches the full history.
func WithDepth(depth int) Option {
	return func(c *defaultGitClient) {
		c.depth = depth
	}
}

// defaultGitClient implements Client using go-git
type defaultGitClient struct {
	depth int
}

// NewDefaultGitClient creates a new defaultGitClient
func NewDefaultGitClient(opts ...Option) Client {
	c := &defaultGitClient{depth: DefaultDepth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ShallowCloneOrPull clones or updates the checkout at path
func (c *defaultGitClient) ShallowCloneOrPull(ctx context.Context, url, path string) error {
	repo, err := git.PlainOpen(path)
	switch {
	case err == nil:
		return c.pull(ctx, repo, url, path)
	case errors.Is(err, git.ErrRepositoryNotExists):
		return c.clone(ctx, url, path)
	default:
		return fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
}

// clone checks out into a temporary sibling directory first so a failed or
// interrupted clone never leaves a half-populated checkout at path
func (c *defaultGitClient) clone(ctx context.Context, url, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", path, err)
	}

	tmp := fmt.Sprintf("%s.tmp-%s", path, uuid.NewString())
	slog.Debug("Cloning repository", "url", url, "path", path, "depth", c.depth)

	_, err := git.PlainCloneContext(ctx, tmp, false, &git.CloneOptions{
		URL:          url,
		Depth:        c.depth,
		SingleBranch: true,
		Tags:         git.NoTags,
	})
	if err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("failed to clone %s: %w", url, classifyError(err))
	}

	// A directory that is not a repository is a leftover and gets replaced
	if _, err := os.Stat(path); err == nil {
		slog.Warn("Replacing directory that is not a git repository", "path", path)
		if err := os.RemoveAll(path); err != nil {
			_ = os.RemoveAll(tmp)
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.RemoveAll(tmp)
		return fmt.Errorf("failed to move clone into %s: %w", path, err)
	}

	return nil
}

// pull fetches the checked out branch into its remote-tracking ref and hard
// resets the worktree to it. The refspec is explicit since a single-branch
// clone of the default branch only tracks the remote HEAD.
func (c *defaultGitClient) pull(ctx context.Context, repo *git.Repository, url, path string) error {
	slog.Debug("Updating repository", "url", url, "path", path, "depth", c.depth)

	head, err := repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD reference in %s: %w", path, err)
	}
	if !head.Name().IsBranch() {
		return fmt.Errorf("checkout at %s is not on a branch: %s", path, head.Name())
	}

	branch := head.Name()
	tracking := plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch.Short())

	err = repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []gitconfig.RefSpec{trackingRefSpec(branch, tracking)},
		Depth:      c.depth,
		Force:      true,
		Tags:       git.NoTags,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("failed to fetch %s: %w", url, classifyError(err))
	}

	remoteRef, err := repo.Reference(tracking, true)
	if err != nil {
		return fmt.Errorf("failed to resolve remote branch %s in %s: %w", branch.Short(), path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree in %s: %w", path, err)
	}

	if err := worktree.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return fmt.Errorf("failed to reset %s to %s: %w", path, remoteRef.Hash(), err)
	}

	return nil
}

// trackingRefSpec maps a remote branch onto its remote-tracking ref
func trackingRefSpec(branch, tracking plumbing.ReferenceName) gitconfig.RefSpec {
	return gitconfig.RefSpec(fmt.Sprintf("+%s:%s", branch, tracking))
}

// Head returns the commit hash checked out at path
func (*defaultGitClient) Head(path string) (string, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return "", fmt.Errorf("failed to open repository at %s: %w", path, err)
	}

	ref, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD reference: %w", err)
	}

	return ref.Hash().String(), nil
}

// classifyError maps go-git transport errors to the package sentinels while
// keeping the original error in the chain
func classifyError(err error) error {
	switch {
	case errors.Is(err, transport.ErrRepositoryNotFound),
		errors.Is(err, transport.ErrEmptyRemoteRepository):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed):
		return fmt.Errorf("%w: %w", ErrUnauthorized, err)
	default:
		return err
	}
}
