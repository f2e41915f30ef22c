// Package apperr holds the error taxonomy shared by services and handlers.
package apperr

import "errors"

var (
	// ErrInvalidParameter marks malformed request input (unknown filter column,
	// value of the wrong type, failed validation).
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrNotFound marks a missing single record.
	ErrNotFound = errors.New("not found")
	// ErrQuery marks a data store failure.
	ErrQuery = errors.New("query error")
	// ErrConflict marks a unique value that already exists.
	ErrConflict = errors.New("already exists")
	// ErrReadOnly marks a write against an entity backed by a view.
	ErrReadOnly = errors.New("entity is read-only")
	// ErrUnknownEntity marks a lookup of an entity, listing or option list that
	// is not declared.
	ErrUnknownEntity = errors.New("unknown entity")
)
