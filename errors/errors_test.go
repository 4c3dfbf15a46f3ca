package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeRejectedExecution, "queue full", http.StatusTooManyRequests)
	if !err.Retryable {
		t.Error("REJECTED_EXECUTION should be retryable")
	}
}

func TestPipelineNotFound_Message(t *testing.T) {
	err := PipelineNotFound("_id")
	if err.Error() != "pipeline with id [_id] does not exist" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if err.Code != ErrCodePipelineNotFound {
		t.Errorf("expected PIPELINE_NOT_FOUND, got %s", err.Code)
	}
	if err.Details["pipeline_id"] != "_id" {
		t.Errorf("expected pipeline_id detail, got %v", err.Details["pipeline_id"])
	}
}

func TestRejectedExecution_Retryable(t *testing.T) {
	err := RejectedExecution("bulk", "queue is full")
	if !err.Retryable {
		t.Error("rejected executions should be retryable")
	}
	if err.HTTPStatus != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", err.HTTPStatus)
	}
	if !strings.Contains(err.Error(), "[bulk]") {
		t.Errorf("expected queue name in message, got %q", err.Error())
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"ProcessorFailed", ProcessorFailed("set", "boom"), ErrCodeProcessorFailed, http.StatusInternalServerError},
		{"InvalidPipeline", InvalidPipeline("p", "bad"), ErrCodeInvalidPipeline, http.StatusBadRequest},
		{"NotFound", NotFound("pipeline", "p"), ErrCodeNotFound, http.StatusNotFound},
		{"InvalidInput", InvalidInput("docs", "empty"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"Validation", Validation("bad"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"ServiceUnavailable", ServiceUnavailable("worker pool"), ErrCodeServiceUnavailable, http.StatusServiceUnavailable},
		{"Internal", Internal(fmt.Errorf("x")), ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("expected code %s, got %s", tt.code, tt.err.Code)
			}
			if tt.err.HTTPStatus != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, tt.err.HTTPStatus)
			}
		})
	}
}

func TestAppError_Unwrap_Success(t *testing.T) {
	cause := fmt.Errorf("disk gone")
	err := Internal(cause)
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
	if !strings.Contains(err.Error(), "disk gone") {
		t.Errorf("expected cause in message, got %q", err.Error())
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := Validation("bad")
	err.WithDetail("field", "x")
	if err.Details["field"] != "x" {
		t.Errorf("expected detail to be set, got %v", err.Details)
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should return nil")
	}
}

func TestWrap_WrappedAppError(t *testing.T) {
	orig := PipelineNotFound("p")
	got := Wrap(fmt.Errorf("outer: %w", orig))
	if got != orig {
		t.Error("Wrap should return the AppError found in the chain")
	}
}

func TestWrap_PlainError(t *testing.T) {
	plain := fmt.Errorf("something broke")
	got := Wrap(plain)
	if got.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
	if got.Cause != plain {
		t.Error("expected cause to be the original error")
	}
}

func TestDescribe_PlainErrorKeepsMessage(t *testing.T) {
	body := Describe(fmt.Errorf("boom"))
	if body.Message != "boom" {
		t.Errorf("expected message boom, got %q", body.Message)
	}
	if body.Code != ErrCodeProcessorFailed {
		t.Errorf("expected PROCESSOR_FAILED, got %s", body.Code)
	}

	body = Describe(PipelineNotFound("p"))
	if body.Code != ErrCodePipelineNotFound {
		t.Errorf("expected PIPELINE_NOT_FOUND, got %s", body.Code)
	}
}
