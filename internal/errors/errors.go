package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	Is     = errors.Is
	As     = errors.As
	New    = errors.New
	Unwrap = errors.Unwrap
)

// Kind classifies the failure of a synchronization run.
type Kind string

const (
	KindTransport        Kind = "TRANSPORT" // Network or HTTP failure while fetching
	KindIO               Kind = "IO"        // Local read/write/permission failure
	KindChecksumMismatch Kind = "CHECKSUM"  // Downloaded content does not match the manifest
	KindCancelled        Kind = "CANCELLED" // Run aborted on request
	KindReconcile        Kind = "RECONCILE" // Pruning phase failed
	KindUnknown          Kind = "UNKNOWN"   // Unclassified errors
)

var (
	ErrChecksumMismatch = New("checksum mismatch")
	ErrCancelled        = New("sync cancelled")
)

// SyncError represents an error that aborted a synchronization run.
type SyncError struct {
	Err        error     // Original error
	Kind       Kind      // What kind of failure this is
	Resource   string    // Path or URL being processed
	StatusCode int       // HTTP status code when known
	Retryable  bool      // Whether the fetcher may retry
	Timestamp  time.Time // When the error occurred
}

func (e *SyncError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("[%s] %s (status: %d): %v", e.Kind, e.Resource, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Resource, e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// NewTransportError creates a network or HTTP error.
func NewTransportError(err error, resource string, statusCode int, retryable bool) *SyncError {
	return &SyncError{
		Err:        err,
		Kind:       KindTransport,
		Resource:   resource,
		StatusCode: statusCode,
		Retryable:  retryable,
		Timestamp:  time.Now(),
	}
}

// NewIOError creates a local filesystem error.
func NewIOError(err error, resource string) *SyncError {
	return &SyncError{
		Err:       err,
		Kind:      KindIO,
		Resource:  resource,
		Timestamp: time.Now(),
	}
}

// NewChecksumError reports that the file at resource hashed to got instead of want.
func NewChecksumError(resource, want, got string) *SyncError {
	return &SyncError{
		Err:       fmt.Errorf("%w: want %s, got %s", ErrChecksumMismatch, want, got),
		Kind:      KindChecksumMismatch,
		Resource:  resource,
		Timestamp: time.Now(),
	}
}

// NewCancelledError reports a run stopped while processing resource.
func NewCancelledError(resource string) *SyncError {
	return &SyncError{
		Err:       ErrCancelled,
		Kind:      KindCancelled,
		Resource:  resource,
		Timestamp: time.Now(),
	}
}

// NewReconcileError wraps a failure of the pruning pass.
func NewReconcileError(err error, resource string) *SyncError {
	return &SyncError{
		Err:       err,
		Kind:      KindReconcile,
		Resource:  resource,
		Timestamp: time.Now(),
	}
}

// KindOf extracts the Kind of err, KindUnknown if it is not a SyncError.
func KindOf(err error) Kind {
	var syncErr *SyncError
	if As(err, &syncErr) {
		return syncErr.Kind
	}

	return KindUnknown
}

func IsCancelled(err error) bool {
	return KindOf(err) == KindCancelled || Is(err, ErrCancelled)
}

func IsChecksumMismatch(err error) bool {
	return KindOf(err) == KindChecksumMismatch || Is(err, ErrChecksumMismatch)
}

// IsRetryable determines if an error should be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	var syncErr *SyncError
	if As(err, &syncErr) {
		return syncErr.Retryable
	}

	return false
}

// GetStatusCode extracts the status code from an error if available
func GetStatusCode(err error) (int, bool) {
	var syncErr *SyncError
	if As(err, &syncErr) && syncErr.StatusCode != 0 {
		return syncErr.StatusCode, true
	}

	return 0, false
}
