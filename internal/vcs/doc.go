// Package vcs answers the version-control questions the repository validator
// asks: does a ref exist, and what kind of object lives at ref:path.
//
// Local answers come from the git history on disk through the git CLI.
// Remote answers, used only when a ref is absent locally as in shallow
// clones, come from the GitHub REST API or from `git ls-remote`.
// Every query is read-only.
package vcs
