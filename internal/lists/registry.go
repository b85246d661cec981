package lists

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/tidwall/gjson"

	"github.com/stacklok/crate-sync/internal/crates"
	"github.com/stacklok/crate-sync/internal/git"
	"github.com/stacklok/crate-sync/internal/versions"
)

// registryConfigFile is the index configuration at the root of the checkout
const registryConfigFile = "config.json"

// maxIndexLineSize bounds a single JSON line of the index
const maxIndexLineSize = 16 * 1024 * 1024

// RegistryList enumerates the crates.io index. Each crate is listed once, at
// its highest version that has not been yanked.
type RegistryList struct {
	index  string
	path   string
	git    git.Client
	logger *slog.Logger
}

// NewRegistryList creates the list reading the index at the git URL index,
// checked out into path
func NewRegistryList(index, path string, client git.Client, logger *slog.Logger) *RegistryList {
	if logger == nil {
		logger = slog.Default()
	}
	return &RegistryList{index: index, path: path, git: client, logger: logger}
}

// Name implements List
func (*RegistryList) Name() string {
	return NameRegistry
}

// Fetch updates the index checkout and reads every crate from it
func (l *RegistryList) Fetch(ctx context.Context) ([]crates.Crate, error) {
	l.logger.Info("Updating registry index", "index", l.index, "path", l.path)

	if err := l.git.ShallowCloneOrPull(ctx, l.index, l.path); err != nil {
		return nil, &FetchError{List: NameRegistry, Location: l.index, Err: err}
	}

	records, err := l.read(ctx)
	if err != nil {
		return nil, &FetchError{List: NameRegistry, Location: l.path, Err: err}
	}

	l.logger.Info("Fetched registry index", "index", l.index, "count", len(records))
	return records, nil
}

func (l *RegistryList) read(ctx context.Context) ([]crates.Crate, error) {
	published := make(map[string][]string)

	err := filepath.WalkDir(l.path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		if rel, _ := filepath.Rel(l.path, path); rel == registryConfigFile || !d.Type().IsRegular() {
			return nil
		}

		return l.readIndexFile(path, published)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	names := make([]string, 0, len(published))
	for name := range published {
		names = append(names, name)
	}
	slices.Sort(names)

	records := make([]crates.Crate, 0, len(names))
	for _, name := range names {
		records = append(records, crates.RegistryCrate{Name: name, Version: versions.Latest(published[name])})
	}

	return records, nil
}

// readIndexFile adds the non-yanked versions of every line of an index file.
// A crate only ever seen yanked doesn't get an entry.
func (l *RegistryList) readIndexFile(path string, published map[string][]string) error {
	// #nosec G304 -- path comes from walking the index checkout
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxIndexLineSize)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		if !gjson.ValidBytes(raw) {
			l.logger.Warn("Skipping invalid index line", "list", NameRegistry, "file", path, "line", line)
			continue
		}

		fields := gjson.GetManyBytes(raw, "name", "vers", "yanked")
		name, version := fields[0].String(), fields[1].String()
		if name == "" || version == "" {
			l.logger.Warn("Skipping index line without name or version", "list", NameRegistry, "file", path, "line", line)
			continue
		}

		if fields[2].Bool() {
			continue
		}
		published[name] = append(published[name], version)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	return nil
}
