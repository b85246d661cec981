package lists

import (
	"context"
	"log/slog"

	"github.com/stacklok/crate-sync/internal/config"
	"github.com/stacklok/crate-sync/internal/crates"
	"github.com/stacklok/crate-sync/internal/filtering"
)

// filteredList drops the crates of a list that don't pass its name filter
type filteredList struct {
	List
	filter *filtering.NameFilter
	logger *slog.Logger
}

// withFilter wraps list when cfg carries name patterns
func withFilter(list List, cfg *config.FilterConfig, logger *slog.Logger) (List, error) {
	if cfg == nil || cfg.Names == nil {
		return list, nil
	}

	filter, err := filtering.NewNameFilter(cfg.Names)
	if err != nil {
		return nil, err
	}
	if filter.Empty() {
		return list, nil
	}

	return &filteredList{List: list, filter: filter, logger: logger.With("list", list.Name())}, nil
}

// Fetch implements List
func (l *filteredList) Fetch(ctx context.Context) ([]crates.Crate, error) {
	records, err := l.List.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return filtering.Apply(records, l.filter, l.logger), nil
}
