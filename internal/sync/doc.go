// Package sync updates the crate lists and records the result of each update.
//
// # Update Order
//
// UpdateLists.Apply updates the enabled lists one after another, always in
// the same order:
//
//   - github-oss: the curated CSV of GitHub repositories
//   - crates-io: the crates.io registry index
//   - local: the local crates directory
//
// Each list is fetched, sorted and upserted into storage. Apply stops at the
// first failure, so a later list is never touched when an earlier one fails.
// A list whose flag is false is skipped without being built.
//
// # Status
//
// Every list moves through the Syncing phase to Complete or Failed, and the
// phase is persisted through status.StatusPersistence. A Complete status
// carries the crate count and a hash of the stored keys. Failing to persist
// a status is logged and never fails the update.
package sync
