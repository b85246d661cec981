package lists

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/stacklok/crate-sync/internal/crates"
	"github.com/stacklok/crate-sync/internal/httpclient"
)

// CSV columns of the GitHub repositories list
const (
	columnName         = "name"
	columnFullName     = "full_name"
	columnHasCargoToml = "has_cargo_toml"
	columnHasCargoLock = "has_cargo_lock"
)

// GitHubList is the curated list of GitHub repositories, published as a CSV
// document. Only repositories with both a Cargo.toml and a Cargo.lock are kept.
type GitHubList struct {
	source string
	client httpclient.Client
	logger *slog.Logger
}

// NewGitHubList creates the list reading the CSV document at source
func NewGitHubList(source string, client httpclient.Client, logger *slog.Logger) *GitHubList {
	if logger == nil {
		logger = slog.Default()
	}
	return &GitHubList{source: source, client: client, logger: logger}
}

// Name implements List
func (*GitHubList) Name() string {
	return NameGitHub
}

// Fetch downloads and decodes the CSV document
func (l *GitHubList) Fetch(ctx context.Context) ([]crates.Crate, error) {
	data, err := l.client.Get(ctx, l.source)
	if err != nil {
		return nil, &FetchError{List: NameGitHub, Location: l.source, Err: err}
	}

	records, err := l.decode(bytes.NewReader(data))
	if err != nil {
		return nil, &FetchError{List: NameGitHub, Location: l.source, Err: err}
	}

	l.logger.Info("Fetched GitHub repositories list", "source", l.source, "count", len(records))
	return records, nil
}

type githubColumns struct {
	name, hasCargoToml, hasCargoLock int
}

func (l *GitHubList) decode(r io.Reader) ([]crates.Crate, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("document is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns, err := lookupColumns(header)
	if err != nil {
		return nil, err
	}

	var records []crates.Crate
	seen := make(map[crates.GitHubRepo]struct{})

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}

		line, _ := reader.FieldPos(0)

		hasCargoToml, err := strconv.ParseBool(row[columns.hasCargoToml])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s value %q", line, columnHasCargoToml, row[columns.hasCargoToml])
		}
		hasCargoLock, err := strconv.ParseBool(row[columns.hasCargoLock])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid %s value %q", line, columnHasCargoLock, row[columns.hasCargoLock])
		}

		if !hasCargoToml || !hasCargoLock {
			continue
		}

		name := row[columns.name]
		repo, ok := crates.ParseListRepoName(name)
		if !ok {
			l.logger.Warn("Skipping malformed repository name", "list", NameGitHub, "name", name, "line", line)
			continue
		}

		if _, dup := seen[repo]; dup {
			continue
		}
		seen[repo] = struct{}{}
		records = append(records, repo)
	}

	return records, nil
}

func lookupColumns(header []string) (githubColumns, error) {
	index := make(map[string]int, len(header))
	for i, column := range header {
		column = strings.TrimSpace(strings.TrimPrefix(column, "\ufeff"))
		if _, ok := index[column]; !ok {
			index[column] = i
		}
	}

	var columns githubColumns
	var ok bool

	if columns.name, ok = index[columnName]; !ok {
		if columns.name, ok = index[columnFullName]; !ok {
			return columns, fmt.Errorf("missing required column %q", columnName)
		}
	}
	if columns.hasCargoToml, ok = index[columnHasCargoToml]; !ok {
		return columns, fmt.Errorf("missing required column %q", columnHasCargoToml)
	}
	if columns.hasCargoLock, ok = index[columnHasCargoLock]; !ok {
		return columns, fmt.Errorf("missing required column %q", columnHasCargoLock)
	}

	return columns, nil
}
