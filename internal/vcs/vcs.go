package vcs

import (
	"context"
	"errors"
)

// ObjectKind is a git object type.
type ObjectKind string

// Object kinds. KindNone means no object exists at the address.
const (
	KindNone   ObjectKind = ""
	KindBlob   ObjectKind = "blob"
	KindTree   ObjectKind = "tree"
	KindCommit ObjectKind = "commit"
)

var (
	// ErrGitUnavailable is returned when the git executable cannot be run.
	ErrGitUnavailable = errors.New("git executable not available")

	// ErrNotRepository is returned when the tree root is not inside a git
	// working tree.
	ErrNotRepository = errors.New("not a git repository")

	// ErrUnsupported is returned by remotes that cannot answer a query.
	ErrUnsupported = errors.New("query not supported by this remote")

	// ErrInvalidRef is returned for refs that could be mistaken for options.
	ErrInvalidRef = errors.New("invalid ref")
)

// Local is version-control history available on disk.
type Local interface {
	// HasCommit reports whether ref resolves to a commit locally.
	HasCommit(ctx context.Context, ref string) (bool, error)

	// ObjectKind returns the type of the object at ref:path, or KindNone.
	ObjectKind(ctx context.Context, ref, path string) (ObjectKind, error)

	// ReadBlob returns the contents of the blob at ref:path.
	ReadBlob(ctx context.Context, ref, path string) ([]byte, error)
}

// Remote answers existence queries against the hosted repository.
type Remote interface {
	// HasRef reports whether ref exists remotely.
	HasRef(ctx context.Context, ref string) (bool, error)

	// ObjectKind returns the type of the object at ref:path remotely,
	// KindNone when absent, or ErrUnsupported.
	ObjectKind(ctx context.Context, ref, path string) (ObjectKind, error)
}

// validRef rejects empty refs and refs starting with '-', which git would
// parse as options.
func validRef(ref string) error {
	if ref == "" || ref[0] == '-' {
		return ErrInvalidRef
	}
	return nil
}
