package errors

import (
	"fmt"
	"strings"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeReconstruction represents thread reconstruction errors
	ErrorTypeReconstruction ErrorType = "reconstruction"
	// ErrorTypeIndex represents vector index management errors
	ErrorTypeIndex ErrorType = "index"
	// ErrorTypeContext represents context cancellation/timeout errors
	ErrorTypeContext ErrorType = "context"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// Base returns the underlying BaseError. Promoted through embedding, it lets
// category checks reach the BaseError inside the typed error structs.
func (e *BaseError) Base() *BaseError {
	return e
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Graph Errors

// ErrGraphConnectionFailed is returned when the Neo4j connection fails or drops
type ErrGraphConnectionFailed struct {
	*BaseError
	URI string
}

func NewGraphConnectionFailed(uri string, err error) *ErrGraphConnectionFailed {
	return &ErrGraphConnectionFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("failed to connect to Neo4j: %s", uri), err),
		URI:       uri,
	}
}

// ErrGraphQueryFailed is returned when a graph query fails for a specific node
type ErrGraphQueryFailed struct {
	*BaseError
	Operation string
	NodeID    string
}

func NewGraphQueryFailed(operation, nodeID string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("%s failed for node %s", operation, nodeID), err),
		Operation: operation,
		NodeID:    nodeID,
	}
}

// Reconstruction Errors

// ErrAmbiguousReference is returned when a reference fragment resolves to more
// than one node in the graph
type ErrAmbiguousReference struct {
	*BaseError
	NodeID     string
	Fragment   string
	Candidates []string
}

func NewAmbiguousReference(nodeID, fragment string, candidates []string) *ErrAmbiguousReference {
	return &ErrAmbiguousReference{
		BaseError: NewBaseError(ErrorTypeReconstruction,
			fmt.Sprintf("reference %q on node %s matches %d nodes: %s", fragment, nodeID, len(candidates), strings.Join(candidates, ", ")), nil),
		NodeID:     nodeID,
		Fragment:   fragment,
		Candidates: candidates,
	}
}

// Index Errors

// ErrIndexConfigConflict is returned when a vector index already exists with a
// configuration different from the requested one
type ErrIndexConfigConflict struct {
	*BaseError
	Name      string
	Requested string
	Existing  string
}

func NewIndexConfigConflict(name, requested, existing string) *ErrIndexConfigConflict {
	return &ErrIndexConfigConflict{
		BaseError: NewBaseError(ErrorTypeIndex,
			fmt.Sprintf("vector index %s exists with different configuration (existing %s, requested %s)", name, existing, requested), nil),
		Name:      name,
		Requested: requested,
		Existing:  existing,
	}
}

// Context Errors

// ErrContextCancelled is returned when context is cancelled
type ErrContextCancelled struct {
	*BaseError
	Operation string
}

func NewContextCancelled(operation string, err error) *ErrContextCancelled {
	return &ErrContextCancelled{
		BaseError: NewBaseError(ErrorTypeContext, fmt.Sprintf("context cancelled: %s", operation), err),
		Operation: operation,
	}
}

// Helper functions

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		if typed, ok := err.(interface{ Base() *BaseError }); ok {
			return typed.Base().Type == errType
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// IsConnectionFailure checks if an error is a graph connection failure
func IsConnectionFailure(err error) bool {
	for err != nil {
		if _, ok := err.(*ErrGraphConnectionFailed); ok {
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// IsIndexConflict checks if an error is a vector index configuration conflict
func IsIndexConflict(err error) bool {
	for err != nil {
		if _, ok := err.(*ErrIndexConfigConflict); ok {
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}

// IsRetryable checks if an error is worth retrying
func IsRetryable(err error) bool {
	// Context errors are not retryable
	if IsErrorType(err, ErrorTypeContext) {
		return false
	}
	// Connection failures are transient
	if IsConnectionFailure(err) {
		return true
	}
	return false
}
