// Package mdtext splits markdown text into numbered lines and marks the ones
// that belong to fenced code blocks. The anchor indexer and the reference
// extractor share it so that both agree on what counts as code.
package mdtext
