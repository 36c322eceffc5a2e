// Package report aggregates resolution results into a verdict and renders it.
//
// Aggregate turns the broken results of a run into a de-duplicated, sorted
// list of violations with a content digest. Writers render that report:
//   - SimpleWriter: the plain text verdict for terminals and CI logs
//   - JSONWriter: structured output for tool integration
//   - MarkdownWriter: a summary suitable for pull request comments
//
// No writer emits timestamps, so two runs over the same tree produce
// byte-identical output.
package report
