// Package main provides the entry point for the linkguard CLI.
//
// linkguard verifies the links and references in a documentation tree:
// relative paths, heading anchors, canonical repository URLs pinned to a
// ref, and external URLs.
//
// Usage:
//
//	linkguard check --root .
//	linkguard check --repository https://github.com/owner/repo --format json
//
// See --help for all available options.
package main

func main() {
	Execute()
}
