// Package pipeline runs a link check as a sequence of steps.
//
// A check collects documents, extracts their references, resolves every
// reference on a bounded worker pool, applies drift rules and aggregates
// the outcome into a report. Each stage is a Step operating on a shared
// Run; the Pipeline executes them in order and stops at the first step
// that fails.
//
// Resolution results are stored by reference index, so the report never
// depends on goroutine scheduling.
package pipeline
