package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the backend is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Resource errors
const (
	// ErrCodeNotFound indicates the requested blob was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeDataCorrupted indicates stored content failed its integrity check.
	ErrCodeDataCorrupted ErrorCode = "DATA_CORRUPTED"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeInvalidConfig indicates the configuration is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Storage errors
const (
	// ErrCodeWriteFailed indicates a blob could not be stored.
	ErrCodeWriteFailed ErrorCode = "WRITE_FAILED"
	// ErrCodeWalkFailed indicates the source directory could not be traversed.
	ErrCodeWalkFailed ErrorCode = "WALK_FAILED"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeDatabaseError indicates a database error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeDatabaseError:      true,
	ErrCodeExternalService:    true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
