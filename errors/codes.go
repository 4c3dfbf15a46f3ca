package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Execution errors
const (
	// ErrCodePipelineNotFound indicates a write item named a pipeline that is not stored.
	ErrCodePipelineNotFound ErrorCode = "PIPELINE_NOT_FOUND"
	// ErrCodeRejectedExecution indicates a queue refused a task (full or shut down).
	ErrCodeRejectedExecution ErrorCode = "REJECTED_EXECUTION"
	// ErrCodeProcessorFailed indicates a processor could not transform a document.
	ErrCodeProcessorFailed ErrorCode = "PROCESSOR_FAILED"
)

// Definition errors
const (
	// ErrCodeInvalidPipeline indicates a pipeline definition could not be built.
	ErrCodeInvalidPipeline ErrorCode = "INVALID_PIPELINE"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeServiceUnavailable indicates the service is shutting down or not started.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeRejectedExecution:  true,
	ErrCodeServiceUnavailable: true,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
