package schema

import "errors"

// Sentinel errors for schema generation and validation.
var (
	ErrEmptyTypeName = errors.New("argument type name is empty")
	ErrDuplicateType = errors.New("argument type already defined")
	ErrUnknownType   = errors.New("unknown argument type")
	ErrInvalidValue  = errors.New("value does not match argument type")
)
