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

// Error returns the message, followed by the cause when present.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
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

// --- Ingest error constructors ---

// PipelineNotFound creates the error raised when a pipeline id cannot be resolved.
func PipelineNotFound(id string) *AppError {
	return &AppError{
		Code: ErrCodePipelineNotFound, Message: fmt.Sprintf("pipeline with id [%s] does not exist", id),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"pipeline_id": id},
	}
}

// RejectedExecution creates the error raised when a queue cannot accept a task.
func RejectedExecution(queue, reason string) *AppError {
	return &AppError{
		Code: ErrCodeRejectedExecution, Message: fmt.Sprintf("rejected execution on queue [%s]: %s", queue, reason),
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
		Details: map[string]any{"queue": queue},
	}
}

// ProcessorFailed creates a document-level processor error.
func ProcessorFailed(processorType, message string) *AppError {
	return &AppError{
		Code: ErrCodeProcessorFailed, Message: message,
		HTTPStatus: http.StatusInternalServerError, Retryable: false,
		Details: map[string]any{"processor_type": processorType},
	}
}

// InvalidPipeline creates the error raised when a definition cannot be built.
func InvalidPipeline(id, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidPipeline, Message: fmt.Sprintf("invalid pipeline [%s]: %s", id, reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"pipeline_id": id},
	}
}

// NotFound creates a new AppError for a resource that was not found.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// ServiceUnavailable creates a new AppError for a component that is not running.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is not available.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Internal creates a new AppError for an internal server error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}
