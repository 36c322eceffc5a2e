// Package vcstest provides an in-memory version-control backend for tests.
package vcstest

import (
	"context"
	"strings"
	"sync"

	"github.com/nao1215/linkguard/internal/vcs"
)

// Fake is an in-memory vcs.Local and vcs.Remote. It records every query so
// that tests can assert which lookups happened.
type Fake struct {
	mu sync.Mutex

	// Commits are the refs known to exist.
	Commits map[string]bool

	// Objects maps "ref:path" to an object kind.
	Objects map[string]vcs.ObjectKind

	// Blobs maps "ref:path" to blob contents.
	Blobs map[string]string

	// Err, when set, is returned by every query.
	Err error

	calls []string
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{
		Commits: make(map[string]bool),
		Objects: make(map[string]vcs.ObjectKind),
		Blobs:   make(map[string]string),
	}
}

// AddCommit registers ref and the objects it contains. A path ending in "/"
// is a tree, anything else a blob.
func (f *Fake) AddCommit(ref string, paths ...string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Commits[ref] = true
	f.Objects[ref+":"] = vcs.KindTree
	for _, p := range paths {
		if strings.HasSuffix(p, "/") {
			f.Objects[ref+":"+strings.TrimSuffix(p, "/")] = vcs.KindTree
			continue
		}
		f.Objects[ref+":"+p] = vcs.KindBlob
	}
	return f
}

// AddBlob registers a blob with contents.
func (f *Fake) AddBlob(ref, path, contents string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Objects[ref+":"+path] = vcs.KindBlob
	f.Blobs[ref+":"+path] = contents
	return f
}

// HasCommit implements vcs.Local.
func (f *Fake) HasCommit(_ context.Context, ref string) (bool, error) {
	f.record("has-commit " + ref)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	return f.Commits[ref], nil
}

// HasRef implements vcs.Remote.
func (f *Fake) HasRef(_ context.Context, ref string) (bool, error) {
	f.record("has-ref " + ref)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return false, f.Err
	}
	return f.Commits[ref], nil
}

// ObjectKind implements vcs.Local and vcs.Remote.
func (f *Fake) ObjectKind(_ context.Context, ref, path string) (vcs.ObjectKind, error) {
	f.record("object-kind " + ref + ":" + path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return vcs.KindNone, f.Err
	}
	return f.Objects[ref+":"+path], nil
}

// ReadBlob implements vcs.Local.
func (f *Fake) ReadBlob(_ context.Context, ref, path string) ([]byte, error) {
	f.record("read-blob " + ref + ":" + path)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	return []byte(f.Blobs[ref+":"+path]), nil
}

// Calls returns the recorded queries in call order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// CallCount returns the number of recorded queries.
func (f *Fake) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *Fake) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}
