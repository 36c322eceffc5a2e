package collect

import "errors"

var (
	// ErrRootNotFound is returned when the tree root or a configured root
	// does not exist or cannot be read.
	ErrRootNotFound = errors.New("root not found")

	// ErrOutsideRoot is returned when a configured root escapes the tree root.
	ErrOutsideRoot = errors.New("root escapes the tree root")
)
