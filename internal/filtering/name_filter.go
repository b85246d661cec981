package filtering

import (
	"fmt"
	"path/filepath"

	"github.com/gobwas/glob"

	"github.com/stacklok/crate-sync/internal/config"
)

type pattern struct {
	source string
	glob   glob.Glob
}

// NameFilter decides which crate names pass the configured patterns
type NameFilter struct {
	include []pattern
	exclude []pattern
}

// NewNameFilter compiles the include and exclude patterns. A nil configuration
// gives a filter that includes everything.
func NewNameFilter(cfg *config.NameFilterConfig) (*NameFilter, error) {
	f := &NameFilter{}
	if cfg == nil {
		return f, nil
	}

	var err error
	if f.include, err = compilePatterns("include", cfg.Include); err != nil {
		return nil, err
	}
	if f.exclude, err = compilePatterns("exclude", cfg.Exclude); err != nil {
		return nil, err
	}
	return f, nil
}

func compilePatterns(kind string, sources []string) ([]pattern, error) {
	patterns := make([]pattern, 0, len(sources))
	for _, source := range sources {
		// filepath.Match catches malformed patterns glob.Compile accepts
		if _, err := filepath.Match(source, "test"); err != nil {
			return nil, fmt.Errorf("invalid %s pattern '%s': %w", kind, source, err)
		}

		// No separators, so * matches across '/'
		compiled, err := glob.Compile(source)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern '%s': %w", kind, source, err)
		}
		patterns = append(patterns, pattern{source: source, glob: compiled})
	}
	return patterns, nil
}

// Empty reports whether the filter has no patterns at all
func (f *NameFilter) Empty() bool {
	return len(f.include) == 0 && len(f.exclude) == 0
}

// ShouldInclude reports whether name passes the filter, along with the reason
func (f *NameFilter) ShouldInclude(name string) (bool, string) {
	for _, p := range f.exclude {
		if p.glob.Match(name) {
			return false, fmt.Sprintf("excluded by pattern '%s'", p.source)
		}
	}

	if len(f.include) == 0 {
		return true, "no include patterns"
	}

	for _, p := range f.include {
		if p.glob.Match(name) {
			return true, fmt.Sprintf("included by pattern '%s'", p.source)
		}
	}
	return false, "no match found in include patterns"
}
