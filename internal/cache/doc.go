// Package cache provides the run-scoped memo used by the anchor indexer, the
// external reachability checker and the repository validator. Entries live
// for a single run and are never persisted.
package cache
