// Package filtering narrows crate lists down with include and exclude glob
// patterns.
//
// Patterns are matched against a crate's filter name: "org/name" for GitHub
// repositories and the bare crate name for registry and local crates. A '*'
// matches across '/', so "rust-lang/*" selects every repository of the
// rust-lang organization.
//
// Rules:
//  1. A name matching any exclude pattern is excluded (exclude takes precedence)
//  2. When include patterns are given, a name must match one of them
//  3. With no patterns, every name is included
package filtering
