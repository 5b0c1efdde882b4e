// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation   = errors.New("validation error")
	ErrInvalidID    = errors.New("invalid ID")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyValue   = errors.New("value cannot be empty")
	ErrZeroValue    = errors.New("value cannot be zero")

	// State errors
	ErrInvalidState    = errors.New("invalid state")
	ErrStateTransition = errors.New("invalid state transition")

	// Storage errors
	ErrStorage            = errors.New("storage failure")
	ErrTransactionAborted = errors.New("transaction aborted")

	// External service errors
	ErrExternalService = errors.New("external service error")
	ErrCacheFlush      = errors.New("cache invalidation failed")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "conduct", "appeal"
	Op      string // Operation that failed, e.g., "AddRecords", "Decide"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Student domain errors
var (
	ErrStudentNotFound      = NewDomainError("student", "Find", ErrNotFound, "student not found")
	ErrStudentAlreadyExists = NewDomainError("student", "Create", ErrAlreadyExists, "student already exists")
	ErrStudentNotActive     = NewDomainError("student", "CheckStatus", ErrInvalidState, "student is not active")
	ErrAppealNotPermitted   = NewDomainError("student", "CheckAppeal", ErrInvalidState, "student may not file appeals")
)

// Conduct record domain errors
var (
	ErrRecordNotFound    = NewDomainError("conduct", "FindRecord", ErrNotFound, "conduct record not found")
	ErrEmptyReason       = NewDomainError("conduct", "Validate", ErrEmptyValue, "reason must not be empty")
	ErrZeroScoreChange   = NewDomainError("conduct", "Validate", ErrZeroValue, "score change must not be zero")
	ErrEmptyStudentBatch = NewDomainError("conduct", "Validate", ErrEmptyValue, "student id list must not be empty")
	ErrEmptyRecordBatch  = NewDomainError("conduct", "Validate", ErrEmptyValue, "record id list must not be empty")
)

// Appeal domain errors
var (
	ErrAppealNotFound      = NewDomainError("appeal", "Find", ErrNotFound, "appeal not found")
	ErrAppealAlreadyFiled  = NewDomainError("appeal", "Create", ErrAlreadyExists, "record already has an appeal")
	ErrInvalidDecision     = NewDomainError("appeal", "Decide", ErrInvalidInput, "decision must be approved or rejected")
	ErrUnknownAppealStatus = NewDomainError("appeal", "Validate", ErrInvalidState, "unknown appeal status")
)

// Operator domain errors
var (
	ErrOperatorNotFound = NewDomainError("operator", "Find", ErrNotFound, "operator not found")
	ErrWrongPassword    = NewDomainError("operator", "Verify", ErrInvalidInput, "wrong password")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrZeroValue)
}

// IsStorage checks if the error is a storage failure.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorage) || errors.Is(err, ErrTransactionAborted)
}
