// SPDX-License-Identifier: Apache-2.0
// Package errors provides typed error handling with rich context for Proteus.
// Data-shaped problems in extension sources never surface as errors; the
// resolver reports them as findings. Errors are reserved for structural
// failures and runtime faults.
package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode classifies Proteus errors for monitoring and recovery.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeManifestNotFound indicates the extension manifest is missing.
	CodeManifestNotFound ErrorCode = "MANIFEST_NOT_FOUND"

	// CodeTargetNotFound indicates no adapter is registered for a target.
	CodeTargetNotFound ErrorCode = "TARGET_NOT_FOUND"

	// CodeResolveFailed indicates resolution produced error-severity findings.
	CodeResolveFailed ErrorCode = "RESOLVE_FAILED"

	// CodeToolFailure indicates a tool execution failed.
	CodeToolFailure ErrorCode = "TOOL_FAILURE"

	// CodeHookFailure indicates a hook handler could not be run.
	CodeHookFailure ErrorCode = "HOOK_FAILURE"

	// CodeStoreError indicates a memory store error.
	CodeStoreError ErrorCode = "STORE_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"
)

// ProteusError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type ProteusError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Attributes  map[string]string
	Recoverable bool
	StatusCode  int
}

// Error implements the error interface.
func (e *ProteusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *ProteusError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *ProteusError) MarshalJSON() ([]byte, error) {
	type Alias ProteusError
	return json.Marshal(&struct {
		Message     string `json:"message"`
		Code        string `json:"code"`
		Err         string `json:"error,omitempty"`
		Recoverable bool   `json:"recoverable"`
		*Alias
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         fmt.Sprintf("%v", e.Err),
		Recoverable: e.Recoverable,
		Alias:       (*Alias)(e),
	})
}

// New creates a new ProteusError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *ProteusError {
	return &ProteusError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		Attributes: make(map[string]string),
		StatusCode: codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *ProteusError) WithContext(key string, value interface{}) *ProteusError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *ProteusError) WithAttribute(key, value string) *ProteusError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *ProteusError) WithRecoverable(recoverable bool) *ProteusError {
	e.Recoverable = recoverable
	return e
}

// AsProteusError attempts to convert an error to a ProteusError.
// Returns the error as ProteusError if it is one, or wraps it otherwise.
func AsProteusError(err error) *ProteusError {
	if err == nil {
		return nil
	}
	if pe, ok := err.(*ProteusError); ok {
		return pe
	}
	// Wrap unknown error as internal
	return New(CodeInternal, "wrapped error", err)
}

// IsCode reports whether err is a ProteusError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	pe, ok := err.(*ProteusError)
	return ok && pe.Code == code
}

// codeToStatusCode maps error codes to HTTP-style status codes.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeNotFound, CodeManifestNotFound, CodeTargetNotFound:
		return 404 // NOT_FOUND
	case CodeInvalidInput, CodeResolveFailed:
		return 400 // INVALID_ARGUMENT
	case CodeTimeout:
		return 408 // DEADLINE_EXCEEDED
	default:
		return 500 // INTERNAL
	}
}
