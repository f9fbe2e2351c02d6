// Package checkpoint keeps a small run-state file next to the snapshot.
//
// The state records which page the last run reached, how many records it
// added and why it stopped. It is informational: the snapshot itself is the
// source of truth for deduplication, so a lost or stale state file never
// changes what the next run fetches. The `status` command prints it.
//
// State files are written atomically and carry a version number.
package checkpoint
