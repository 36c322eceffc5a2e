// Package database provides SQLite-based run history for linkguard.
//
// HistoryDB records the outcome of each recorded check: the run id, the
// tree root, when it ran, the verdict, the report digest and the violation
// lines. Listing and diffing runs lets a user see which violations a change
// introduced or resolved. History is write-only from the point of view of
// a check: nothing stored here influences verification.
//
// The database is a single file accessed through modernc.org/sqlite, a
// CGO-free driver, with WAL journaling enabled by default.
package database
