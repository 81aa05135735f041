// Package store persists the monitored target list and its last-known results.
//
// The main components are:
//
//   - [Target]: one monitored URL with the result of its latest check
//   - [Status]: closed classification variant rendered as a display string
//   - [Store]: interface for loading, saving and subscribing to target lists
//   - [FileStore]: JSON file implementation with atomic replacement
//   - [MemoryStore]: in-memory implementation for tests and ephemeral runs
//   - [ApplyEdit]: merges an edited URL list with previous results
//
// Persisted state tolerates being hand-edited or absent: a missing or corrupt
// file loads as an empty list and never surfaces a parse error to callers.
//
// Subscribers receive every saved list via buffered channels with
// non-blocking sends (slow subscribers miss updates rather than block the
// scheduler).
package store
