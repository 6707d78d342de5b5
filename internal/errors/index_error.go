// Package errors provides standardized error types for label index operations.
// This package defines IndexError for consistent error handling across
// all public APIs, with a kind taxonomy, operation context and error
// wrapping support.
package errors

import (
	"fmt"
)

// Kind classifies an IndexError into the error taxonomy used across the library.
type Kind int

const (
	// KindInternal indicates an unexpected internal failure.
	KindInternal Kind = iota
	// KindTypeConversion indicates input that cannot be coerced to the target type.
	KindTypeConversion
	// KindRange indicates positional access outside the valid range.
	KindRange
	// KindOverflow indicates a value outside the representable range of the
	// target type, e.g. negative input for an unsigned index.
	KindOverflow
	// KindUnsupported indicates an operation not supported by this container kind.
	KindUnsupported
	// KindNotFound indicates a label lookup miss.
	KindNotFound
	// KindChainedAssignment indicates an unsafe write through a chain of views.
	KindChainedAssignment
)

// String returns the taxonomy name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTypeConversion:
		return "type conversion"
	case KindRange:
		return "range"
	case KindOverflow:
		return "overflow"
	case KindUnsupported:
		return "unsupported"
	case KindNotFound:
		return "not found"
	case KindChainedAssignment:
		return "chained assignment"
	default:
		return "internal"
	}
}

// IndexError represents standardized errors across all index operations
type IndexError struct {
	Kind    Kind   // Taxonomy class
	Op      string // Operation name (e.g., "Insert", "Fillna", "ValueCounts")
	Label   string // Label or column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *IndexError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s operation failed on label '%s': %s", e.Op, e.Label, e.Message)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *IndexError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is()
func (e *IndexError) Is(target error) bool {
	if ie, ok := target.(*IndexError); ok {
		return e.Kind == ie.Kind && e.Op == ie.Op && e.Label == ie.Label && e.Message == ie.Message
	}
	return false
}

// Common error constructors for consistent error creation

// NewTypeConversionError creates an error for inputs that cannot be coerced
// to the declared or inferred element type.
func NewTypeConversionError(op, message string) *IndexError {
	return &IndexError{
		Kind:    KindTypeConversion,
		Op:      op,
		Message: message,
	}
}

// NewRangeError creates an error for out-of-bounds positional access,
// matching the conventional message shape for axis-based containers.
func NewRangeError(op string, index, size int) *IndexError {
	return &IndexError{
		Kind:    KindRange,
		Op:      op,
		Message: fmt.Sprintf("index %d is out of bounds for axis 0 with size %d", index, size),
	}
}

// NewOverflowError creates an error for values outside the representable
// range of the target type.
func NewOverflowError(op, message string) *IndexError {
	return &IndexError{
		Kind:    KindOverflow,
		Op:      op,
		Message: message,
	}
}

// NewUnsupportedError creates an error for operations this container kind
// does not support.
func NewUnsupportedError(op, message string) *IndexError {
	return &IndexError{
		Kind:    KindUnsupported,
		Op:      op,
		Message: message,
	}
}

// NewNotFoundError creates an error for label lookup misses.
func NewNotFoundError(op, label string) *IndexError {
	return &IndexError{
		Kind:    KindNotFound,
		Op:      op,
		Label:   label,
		Message: "label does not exist",
	}
}

// NewChainedAssignmentError creates the recoverable diagnostic for a write
// performed through a chain of two or more view derivations.
func NewChainedAssignmentError(op string) *IndexError {
	return &IndexError{
		Kind:    KindChainedAssignment,
		Op:      op,
		Message: "a value is trying to be set on a copy of a slice from a frame",
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *IndexError {
	return &IndexError{
		Kind:    KindInternal,
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// IsKind reports whether err is an *IndexError of the given kind.
func IsKind(err error, kind Kind) bool {
	ie, ok := err.(*IndexError)
	return ok && ie.Kind == kind
}

// Predefined error variables for common cases
var (
	// ErrEmptyIndex indicates operations that require a non-empty index
	ErrEmptyIndex = &IndexError{
		Kind:    KindUnsupported,
		Op:      "validation",
		Message: "operation not supported on empty index",
	}

	// ErrMismatchedLength indicates length mismatches in operations
	ErrMismatchedLength = &IndexError{
		Kind:    KindInternal,
		Op:      "validation",
		Message: "sequences must have the same length",
	}
)
