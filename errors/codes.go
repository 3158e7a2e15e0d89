package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Meeting lifecycle errors
const (
	// ErrCodeNotFound indicates the meeting, transcript or insight does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeRoomFull indicates the meeting already holds the maximum number of participants.
	ErrCodeRoomFull ErrorCode = "ROOM_FULL"
	// ErrCodeMeetingEnded indicates the meeting is no longer active.
	ErrCodeMeetingEnded ErrorCode = "MEETING_ENDED"
	// ErrCodeAlreadyExists indicates the resource already exists.
	ErrCodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
)

// Pipeline errors
const (
	// ErrCodeConversionFailed indicates the external transcoder exited unsuccessfully.
	ErrCodeConversionFailed ErrorCode = "CONVERSION_FAILED"
	// ErrCodeTranscriptionFailed indicates the speech-to-text provider failed.
	ErrCodeTranscriptionFailed ErrorCode = "TRANSCRIPTION_FAILED"
	// ErrCodeGenerationDegraded marks insights built from fallback text. It is
	// informational and never returned to API callers as a failure.
	ErrCodeGenerationDegraded ErrorCode = "GENERATION_DEGRADED"
)

// Request and infrastructure errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeServiceUnavailable indicates a dependency is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the operation timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeDatabaseError indicates a database error.
	ErrCodeDatabaseError ErrorCode = "DATABASE_ERROR"
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTranscriptionFailed: true,
	ErrCodeServiceUnavailable:  true,
	ErrCodeTimeout:             true,
	ErrCodeDatabaseError:       true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
