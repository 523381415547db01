// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeRequestValidationFailed ErrorCode = "REQUEST_VALIDATION_FAILED"

	ErrCodeBackendUnconfigured  ErrorCode = "BACKEND_UNCONFIGURED"
	ErrCodeBackendRequestFailed ErrorCode = "BACKEND_REQUEST_FAILED"
	ErrCodeBackendTimeout       ErrorCode = "BACKEND_TIMEOUT"
	ErrCodeContextFetchFailed   ErrorCode = "CONTEXT_FETCH_FAILED"

	ErrCodeHistoryLoadFailed   ErrorCode = "HISTORY_LOAD_FAILED"
	ErrCodeHistoryAppendFailed ErrorCode = "HISTORY_APPEND_FAILED"

	ErrCodeAuditWriteFailed ErrorCode = "AUDIT_WRITE_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// BPMNError represents an error that can be thrown to the workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	for k, v := range e.ErrorVariables {
		vars[k] = v
	}

	return vars
}

// NewRequestValidationFailedError creates a non-retryable request validation error.
func NewRequestValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestValidationFailed,
		Message:   "Assistant request failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendUnconfiguredError creates a non-retryable backend credential error.
// The orchestrator never surfaces this to callers; it exists for job-level
// visibility when a workflow insists on the conversational path.
func NewBackendUnconfiguredError() *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendUnconfigured,
		Message:   "Conversational backend has no credentials configured",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendRequestFailedError creates a retryable backend request error.
func NewBackendRequestFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendRequestFailed,
		Message:   "Conversational backend request error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendTimeoutError creates a retryable backend timeout error.
func NewBackendTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeBackendTimeout,
		Message:   "Conversational backend timeout",
		Details:   "backend call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewContextFetchFailedError creates a retryable enhanced-context error.
func NewContextFetchFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeContextFetchFailed,
		Message:   "Enhanced context fetch error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryLoadFailedError creates a retryable history read error.
func NewHistoryLoadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryLoadFailed,
		Message:   "Conversation history load error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewHistoryAppendFailedError creates a retryable history write error.
func NewHistoryAppendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeHistoryAppendFailed,
		Message:   "Conversation history append error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAuditWriteFailedError creates a retryable audit insert error.
func NewAuditWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAuditWriteFailed,
		Message:   "Interaction audit insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// BPMNErrorMapping maps internal error codes to BPMN error codes; they are
// kept identical so BPMN boundary events can match on the internal names.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeRequestValidationFailed:  "REQUEST_VALIDATION_FAILED",
	ErrCodeBackendUnconfigured:      "BACKEND_UNCONFIGURED",
	ErrCodeBackendRequestFailed:     "BACKEND_REQUEST_FAILED",
	ErrCodeBackendTimeout:           "BACKEND_TIMEOUT",
	ErrCodeContextFetchFailed:       "CONTEXT_FETCH_FAILED",
	ErrCodeHistoryLoadFailed:        "HISTORY_LOAD_FAILED",
	ErrCodeHistoryAppendFailed:      "HISTORY_APPEND_FAILED",
	ErrCodeAuditWriteFailed:         "AUDIT_WRITE_FAILED",
	ErrCodeDatabaseConnectionFailed: "DATABASE_CONNECTION_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeBackendRequestFailed,
		ErrCodeHistoryLoadFailed,
		ErrCodeHistoryAppendFailed,
		ErrCodeAuditWriteFailed,
		ErrCodeDatabaseConnectionFailed:
		return 3 // Retryable technical errors

	case ErrCodeBackendTimeout,
		ErrCodeContextFetchFailed:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Validation/configuration errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "BACKEND") || strings.Contains(codeStr, "CONTEXT"):
		return "AI"
	case strings.Contains(codeStr, "HISTORY"):
		return "HISTORY"
	case strings.Contains(codeStr, "AUDIT") || strings.Contains(codeStr, "DATABASE"):
		return "DATABASE"
	case strings.Contains(codeStr, "VALIDATION"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
