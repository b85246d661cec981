// Package integration provides end-to-end tests for crate-sync. They run the
// CLI against a local git repository standing in for the crates.io index and
// an HTTP server serving the curated GitHub list.
package integration
