package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// NotFound creates an error for a resource that does not exist.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("%s not found", capitalize(resource)),
		HTTPStatus: http.StatusNotFound, Details: details,
	}
}

// RoomFull creates an error for a join attempt on a meeting at capacity.
func RoomFull(meetingID string, max int) *AppError {
	return &AppError{
		Code: ErrCodeRoomFull, Message: fmt.Sprintf("Room is full (max %d participants)", max),
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"meeting_id": meetingID, "max_participants": max},
	}
}

// MeetingEnded creates an error for an operation that requires an active meeting.
func MeetingEnded(meetingID string) *AppError {
	return &AppError{
		Code: ErrCodeMeetingEnded, Message: "Meeting has ended",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"meeting_id": meetingID},
	}
}

// AlreadyExists creates an error for a resource that already exists.
func AlreadyExists(resource string) *AppError {
	return &AppError{
		Code: ErrCodeAlreadyExists, Message: fmt.Sprintf("%s already exists", capitalize(resource)),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"resource": resource},
	}
}

// ConversionFailed creates an error for a transcoder run that exited non-zero.
// The captured diagnostic output is attached as the "output" detail.
func ConversionFailed(output string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConversionFailed, Message: "Audio conversion failed",
		HTTPStatus: http.StatusInternalServerError,
		Details:    map[string]any{"output": output}, Cause: cause,
	}
}

// TranscriptionFailed creates an error for a speech-to-text provider failure.
func TranscriptionFailed(provider string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscriptionFailed, Message: fmt.Sprintf("Transcription provider %s failed", provider),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details:    map[string]any{"provider": provider}, Cause: cause,
	}
}

// GenerationDegraded describes insights that were completed with fallback text.
func GenerationDegraded(meetingID, reason string) *AppError {
	return &AppError{
		Code: ErrCodeGenerationDegraded, Message: reason,
		HTTPStatus: http.StatusOK,
		Details:    map[string]any{"meeting_id": meetingID},
	}
}

// InvalidInput creates an error for invalid request input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Details: details,
	}
}

// ServiceUnavailable creates an error for a dependency that cannot take work right now.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details:    map[string]any{"service": service},
	}
}

// Timeout creates an error for an operation that ran out of time.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details:    map[string]any{"operation": operation},
	}
}

// DatabaseError creates an error for a failed database operation.
func DatabaseError(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDatabaseError, Message: "A database error occurred. Please try again.",
		HTTPStatus: http.StatusInternalServerError, Retryable: true, Cause: cause,
	}
}

// Internal creates an error for an unexpected failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "Internal server error",
		HTTPStatus: http.StatusInternalServerError, Cause: cause,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
