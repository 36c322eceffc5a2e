// Package config provides configuration structures and utilities for linkguard.
// It defines the options that control document collection, reference resolution,
// network probing, repository validation and report generation.
package config
