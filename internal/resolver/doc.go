// Package resolver classifies extracted references and decides whether each
// one points at something that exists.
//
// Anchor-only and local-path references are resolved against the working
// tree and the shared anchor cache. External URLs are handed to an
// ExternalChecker and URLs under the configured repository base to an
// InternalValidator. Allow-listed prefixes are accepted before either runs.
package resolver
