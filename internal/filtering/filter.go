package filtering

import (
	"log/slog"

	"github.com/stacklok/crate-sync/internal/crates"
)

// FilterName is the name patterns are matched against
func FilterName(c crates.Crate) string {
	switch v := c.(type) {
	case crates.GitHubRepo:
		return v.Slug()
	case crates.RegistryCrate:
		return v.Name
	case crates.LocalCrate:
		return v.Name
	default:
		return c.String()
	}
}

// Apply returns the crates passing the filter, keeping their order. The input
// slice is not modified.
func Apply(records []crates.Crate, filter *NameFilter, logger *slog.Logger) []crates.Crate {
	if filter == nil || filter.Empty() {
		return records
	}
	if logger == nil {
		logger = slog.Default()
	}

	kept := make([]crates.Crate, 0, len(records))
	for _, c := range records {
		name := FilterName(c)
		include, reason := filter.ShouldInclude(name)
		if !include {
			logger.Debug("Filtered out crate", "crate", name, "reason", reason)
			continue
		}
		kept = append(kept, c)
	}

	logger.Info("Applied name filters", "before", len(records), "after", len(kept))
	return kept
}
