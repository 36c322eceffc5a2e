package database

import "errors"

var (
	// ErrDatabaseNotFound is returned when opening a database that does not
	// exist without CreateIfNotExists.
	ErrDatabaseNotFound = errors.New("history database not found")

	// ErrRunNotFound is returned when no run matches a lookup.
	ErrRunNotFound = errors.New("run not found")

	// ErrNotEnoughRuns is returned when a diff needs two runs and fewer exist.
	ErrNotEnoughRuns = errors.New("at least two recorded runs are required")
)
