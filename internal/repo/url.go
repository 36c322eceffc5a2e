package repo

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"sort"
	"strings"

	"github.com/nao1215/linkguard/internal/vcs"
)

// ErrInvalidURL is returned for repository URLs that do not address a blob
// or tree at a ref.
var ErrInvalidURL = errors.New("invalid internal url")

// Target is a parsed internal repository URL.
type Target struct {
	// Kind is KindBlob or KindTree.
	Kind vcs.ObjectKind
	// Ref is the branch, tag or commit id.
	Ref string
	// Path is the cleaned, decoded, slash-separated repository path.
	// The repository root is "".
	Path string
	// Fragment is the decoded part after '#'.
	Fragment string
}

// Spec returns the "ref:path" object address.
func (t Target) Spec() string {
	return t.Ref + ":" + t.Path
}

// ParseURL parses raw against the repository base URL. Refs containing '/'
// are recognized when they are listed in mutableRefs; other refs end at the
// first '/'.
func ParseURL(base, raw string, mutableRefs []string) (Target, error) {
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(raw, base+"/") {
		return Target{}, fmt.Errorf("%w: not under %s", ErrInvalidURL, base)
	}
	rest := raw[len(base)+1:]

	var t Target
	if i := strings.IndexByte(rest, '#'); i >= 0 {
		t.Fragment = decodeFragment(rest[i+1:])
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		rest = rest[:i]
	}

	kind, rest, ok := strings.Cut(rest, "/")
	switch kind {
	case "blob":
		t.Kind = vcs.KindBlob
	case "tree":
		t.Kind = vcs.KindTree
	default:
		return Target{}, fmt.Errorf("%w: expected blob or tree", ErrInvalidURL)
	}
	if !ok || rest == "" {
		return Target{}, fmt.Errorf("%w: missing ref", ErrInvalidURL)
	}

	ref, rawPath := splitRef(rest, mutableRefs)
	if ref == "" {
		return Target{}, fmt.Errorf("%w: missing ref", ErrInvalidURL)
	}
	t.Ref = ref

	p, err := url.PathUnescape(rawPath)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if p != "" {
		p = path.Clean(p)
		if p == "." {
			p = ""
		}
	}
	if p == ".." || strings.HasPrefix(p, "../") || strings.HasPrefix(p, "/") {
		return Target{}, fmt.Errorf("%w: path escapes the repository", ErrInvalidURL)
	}
	if t.Kind == vcs.KindBlob && p == "" {
		return Target{}, fmt.Errorf("%w: blob without path", ErrInvalidURL)
	}
	t.Path = p
	return t, nil
}

// splitRef separates the ref from the path, preferring the longest matching
// multi-segment mutable ref.
func splitRef(rest string, mutableRefs []string) (ref, p string) {
	refs := append([]string(nil), mutableRefs...)
	sort.Slice(refs, func(i, j int) bool { return len(refs[i]) > len(refs[j]) })
	for _, m := range refs {
		if !strings.Contains(m, "/") {
			continue
		}
		if rest == m {
			return m, ""
		}
		if strings.HasPrefix(rest, m+"/") {
			return m, rest[len(m)+1:]
		}
	}
	ref, p, _ = strings.Cut(rest, "/")
	return ref, p
}

func decodeFragment(f string) string {
	if d, err := url.PathUnescape(f); err == nil {
		return d
	}
	return f
}
