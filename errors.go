package arenadl

import (
	"github.com/strangesongs/arena-dl/arena"
	"github.com/strangesongs/arena-dl/retry"
	"github.com/strangesongs/arena-dl/storage"
)

// Error handling types re-exported for library users.
//
// All error types support the standard patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, arenadl.ErrChannelNotFound) {
//		fmt.Println("channel not found")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var connErr *arenadl.ConnectivityError
//	if errors.As(err, &connErr) {
//		fmt.Printf("connectivity: %v\n", connErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// ConnectivityError wraps failures reaching the listing API.
	ConnectivityError = arena.ConnectivityError
	// ExportError wraps manifest export failures.
	ExportError = arena.ExportError
	// StorageError wraps errors during storage operations.
	StorageError = storage.StorageError
)

// Sentinel errors re-exported from sub-packages.
var (
	// ErrChannelNotFound indicates the are.na channel does not exist.
	ErrChannelNotFound = retry.ErrChannelNotFound
	// ErrInvalidURL indicates the channel argument could not be reduced to a slug.
	ErrInvalidURL = retry.ErrInvalidURL
	// ErrSyncInProgress indicates an overlapping sync invocation was dropped.
	ErrSyncInProgress = arena.ErrSyncInProgress

	// Storage errors
	// ErrNotFound indicates an entity was not found in storage.
	ErrNotFound = storage.ErrNotFound
	// ErrStorageCorrupt indicates data corruption was detected.
	ErrStorageCorrupt = storage.ErrStorageCorrupt
	// ErrLockTimeout indicates a timeout acquiring a file lock.
	ErrLockTimeout = storage.ErrLockTimeout
)

// IsRetryable determines if an error should be retried.
// It returns false for permanent errors like ErrChannelNotFound.
func IsRetryable(err error) bool {
	return retry.IsRetryable(err)
}
