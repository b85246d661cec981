package crates

import (
	"fmt"
	"strings"
)

const (
	// GitHubBaseURL is the host every repository URL is derived from
	GitHubBaseURL = "https://github.com"

	// mirrorDirSeparator joins the escaped organization and name in a mirror directory name
	mirrorDirSeparator = "."
)

// mirrorDirEscaper escapes every character that could make two mirror directory
// names collide or that is unsafe in a single path element. '%' goes first so
// escape sequences can't be produced by the input itself.
var mirrorDirEscaper = strings.NewReplacer(
	"%", "%25",
	".", "%2E",
	"/", "%2F",
	"\\", "%5C",
	"\x00", "%00",
)

// GitHubRepo is a crate backed by a GitHub repository. Its identity is the
// (Org, Name) pair.
type GitHubRepo struct {
	Org  string `json:"org"`
	Name string `json:"name"`
}

// Kind implements Crate
func (GitHubRepo) Kind() Kind { return KindGitHub }

// Key implements Crate
func (r GitHubRepo) Key() string {
	return string(KindGitHub) + "/" + r.Slug()
}

func (r GitHubRepo) String() string {
	return r.Slug()
}

func (GitHubRepo) sealed() {}

// Slug returns the canonical "org/name" identity
func (r GitHubRepo) Slug() string {
	return r.Org + "/" + r.Name
}

// URL returns the canonical remote URL of the repository
func (r GitHubRepo) URL() string {
	return GitHubBaseURL + "/" + r.Org + "/" + r.Name
}

// MirrorDirName returns the directory name the repository is mirrored into.
//
// The encoding is escape(org) + "." + escape(name), where escape percent-encodes
// '%', '.', '/', '\' and NUL. Since an escaped component never contains a raw
// '.', the first '.' always marks the boundary and distinct repositories never
// share a directory.
func (r GitHubRepo) MirrorDirName() string {
	return mirrorDirEscaper.Replace(r.Org) + mirrorDirSeparator + mirrorDirEscaper.Replace(r.Name)
}

// Compare orders repositories by organization, then by name
func (r GitHubRepo) Compare(other GitHubRepo) int {
	if c := strings.Compare(r.Org, other.Org); c != 0 {
		return c
	}
	return strings.Compare(r.Name, other.Name)
}

// IdentityParseError is returned when a user supplied "org/name" string
// can't be turned into a repository identity
type IdentityParseError struct {
	Input string
}

func (e *IdentityParseError) Error() string {
	return fmt.Sprintf("malformed repository name: %q", e.Input)
}

// ParseGitHubRepo parses a free-form "org/name" string. The last two
// '/'-separated segments become the organization and the name, so
// "a/b/c" yields {Org: "b", Name: "c"}. Leading segments are allowed since
// callers may pass paths such as "github.com/org/name".
func ParseGitHubRepo(input string) (GitHubRepo, error) {
	parts := strings.Split(input, "/")
	if len(parts) < 2 {
		return GitHubRepo{}, &IdentityParseError{Input: input}
	}

	repo := GitHubRepo{
		Org:  parts[len(parts)-2],
		Name: parts[len(parts)-1],
	}
	if repo.Org == "" || repo.Name == "" {
		return GitHubRepo{}, &IdentityParseError{Input: input}
	}

	return repo, nil
}

// ParseListRepoName is the strict parse used while ingesting lists: the token
// must split into exactly two non-empty components. It reports false for
// anything else so the caller can skip the row.
func ParseListRepoName(token string) (GitHubRepo, bool) {
	org, name, found := strings.Cut(token, "/")
	if !found || org == "" || name == "" || strings.Contains(name, "/") {
		return GitHubRepo{}, false
	}
	return GitHubRepo{Org: org, Name: name}, true
}
