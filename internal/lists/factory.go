package lists

import (
	"fmt"
	"log/slog"

	"github.com/stacklok/crate-sync/internal/config"
	"github.com/stacklok/crate-sync/internal/git"
	"github.com/stacklok/crate-sync/internal/httpclient"
)

// defaultFactory is the default implementation of Factory
type defaultFactory struct {
	cfg        *config.Config
	httpClient httpclient.Client
	gitClient  git.Client
	logger     *slog.Logger
}

var _ Factory = (*defaultFactory)(nil)

// NewFactory creates a list factory. A nil logger means slog.Default().
func NewFactory(cfg *config.Config, httpClient httpclient.Client, gitClient git.Client, logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &defaultFactory{
		cfg:        cfg,
		httpClient: httpClient,
		gitClient:  gitClient,
		logger:     logger,
	}
}

// CreateList creates the list of the given kind, wrapped in its name filter
// when one is configured
func (f *defaultFactory) CreateList(kind Kind) (List, error) {
	var (
		list   List
		filter *config.FilterConfig
	)

	switch kind {
	case KindGitHub:
		list = NewGitHubList(f.cfg.Lists.GitHub.Source, f.httpClient, f.logger)
		filter = f.cfg.Lists.GitHub.Filter
	case KindRegistry:
		list = NewRegistryList(f.cfg.Lists.Registry.Index, f.cfg.Lists.Registry.Path, f.gitClient, f.logger)
		filter = f.cfg.Lists.Registry.Filter
	case KindLocal:
		list = NewLocalList(f.cfg.Lists.Local.Path)
		filter = f.cfg.Lists.Local.Filter
	default:
		return nil, fmt.Errorf("unsupported list kind: %s", kind)
	}

	filtered, err := withFilter(list, filter, f.logger)
	if err != nil {
		return nil, fmt.Errorf("invalid filter for list %s: %w", list.Name(), err)
	}
	return filtered, nil
}
