package database

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	apperrors "github.com/kbukum/huddle/errors"
)

// IsRetryableError reports whether err is a transient connection or lock
// failure.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"driver: bad connection",
		"deadlock",
		"database is locked",
		"too many connections",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsNotFoundError reports whether err is a GORM record-not-found error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-key violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// FromDatabase converts a database error into an AppError. Errors that
// already are AppErrors pass through.
func FromDatabase(err error, resource, id string) *apperrors.AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case IsNotFoundError(err):
		return apperrors.NotFound(resource, id)
	case IsDuplicateError(err):
		return apperrors.AlreadyExists(resource).WithCause(err)
	case IsRetryableError(err):
		appErr := apperrors.DatabaseError(err)
		appErr.HTTPStatus = http.StatusServiceUnavailable
		appErr.Message = "Database is temporarily unavailable. Please try again."
		return appErr
	default:
		appErr := apperrors.DatabaseError(err)
		appErr.Retryable = false
		return appErr
	}
}
