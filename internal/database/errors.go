package database

import "errors"

var (
	// ErrNotFound is returned when a template does not exist.
	ErrNotFound = errors.New("template not found")

	// ErrBackendNotInitialized is returned when no storage backend has been registered.
	ErrBackendNotInitialized = errors.New("storage backend not initialized: set DATABASE_URL or SQLITE_PATH")
)
