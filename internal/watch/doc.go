// Package watch re-runs a check whenever an eligible document under the
// tree root changes.
//
// Events are filtered through a relevance function (normally
// collect.Collector.Eligible) and coalesced by a debouncer, so a burst of
// editor writes results in a single re-run.
package watch
