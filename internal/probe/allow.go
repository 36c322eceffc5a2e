package probe

import "strings"

// AllowList is a set of URL prefixes accepted without a network check.
// Commit permalinks are the typical entry: their content is address-stable.
type AllowList []string

// Match reports whether u starts with one of the prefixes.
func (a AllowList) Match(u string) bool {
	for _, p := range a {
		if p != "" && strings.HasPrefix(u, p) {
			return true
		}
	}
	return false
}
