// Package model defines the core data structures shared by every stage of a
// linkguard run.
//
// This package contains the following main types:
//   - Document: a collected text file with its raw contents
//   - Heading and Anchor: the in-document link targets derived from headings
//   - Reference: one extracted link occurrence
//   - ResolutionResult: the outcome of resolving one Reference
//   - Violation and Report: the aggregated, sorted output of a run
//
// Models live in their own package so that the collector, extractor, resolver
// and report writers can share them without import cycles.
package model
