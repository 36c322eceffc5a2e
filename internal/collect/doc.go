// Package collect enumerates the documents a run verifies.
//
// A Collector walks the configured roots below the tree root, keeps files
// whose suffix is eligible and drops anything under an excluded directory
// name or matching an exclusion pattern. The result is sorted by
// root-relative path and free of duplicates, so two runs over the same tree
// see the same documents in the same order.
package collect
