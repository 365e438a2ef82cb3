package audit

import (
	"errors"
	"fmt"
)

var (
	// ErrRecorderClosed is returned when recording after Close.
	ErrRecorderClosed = errors.New("audit recorder is closed")

	// ErrBufferFull is returned when the async buffer stays full for
	// longer than the write timeout.
	ErrBufferFull = errors.New("audit buffer is full")

	// ErrInvalidViolation is returned for violations missing required fields.
	ErrInvalidViolation = errors.New("invalid violation")
)

// StorageError wraps a storage backend failure.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s storage %s failed: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}
