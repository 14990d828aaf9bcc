package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/artifactstore/errors"
)

// IsConnectionError checks if a database error is a connection error
// that might be resolved by retrying.
func IsConnectionError(err error) bool {
	return containsAny(err,
		"connection refused",
		"broken pipe",
		"driver: bad connection",
		"sql: database is closed",
		"unable to open database file",
	)
}

// IsBusyError reports SQLite lock contention.
func IsBusyError(err error) bool {
	return containsAny(err, "database is locked", "database table is locked", "sqlite_busy")
}

func containsAny(err error, patterns ...string) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, p := range patterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// IsNotFoundError checks if the error is a GORM record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// FromDatabase converts a database error to an AppError.
func FromDatabase(err error, resource, id string) *apperrors.AppError {
	if err == nil {
		return nil
	}

	if IsNotFoundError(err) {
		return apperrors.NotFound(resource, id).WithCause(err)
	}

	if IsConnectionError(err) || IsBusyError(err) {
		return (&apperrors.AppError{
			Code:      apperrors.ErrCodeDatabaseError,
			Message:   "Database is temporarily unavailable. Please try again.",
			Retryable: true,
		}).WithCause(err)
	}

	return apperrors.DatabaseError(err)
}
