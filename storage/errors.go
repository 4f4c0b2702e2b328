package storage

import (
	"errors"
	"fmt"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound indicates an entity was not found in storage.
	ErrNotFound = errors.New("not found")
	// ErrStorageCorrupt indicates the store file could not be parsed.
	ErrStorageCorrupt = errors.New("storage corrupt")
	// ErrLockTimeout indicates a timeout acquiring the store's file lock.
	ErrLockTimeout = errors.New("lock timeout")
)

// StorageError wraps an error with the operation and entity it occurred on.
type StorageError struct {
	Op     string
	Entity string
	ID     string
	Err    error
}

func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("storage %s %s %q: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
