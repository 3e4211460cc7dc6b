package tools

import (
	"errors"
	"fmt"
)

// Sentinel errors for the tool registry.
var (
	ErrNotFound         = errors.New("tool not found")
	ErrAlreadyExists    = errors.New("tool already registered")
	ErrEmptyName        = errors.New("tool name is empty")
	ErrNilHandler       = errors.New("tool handler is nil")
	ErrInvalidArguments = errors.New("tool arguments do not match declared schema")
)

// ExecutionError reports a tool handler failure. Dispatch wraps handler
// errors in this type so callers can recover both the failing tool's name
// and the underlying cause via errors.As.
type ExecutionError struct {
	Name string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s execution failed: %v", e.Name, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
