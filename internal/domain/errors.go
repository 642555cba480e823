package domain

import "errors"

var (
	// ErrNotFound signals a missing feature record.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists signals a duplicate feature record.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidRecord signals a feature record that fails validation.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrInvalidFilter signals a malformed search filter (strict validation only).
	ErrInvalidFilter = errors.New("invalid filter")
)
