// Package customerrors defines the error taxonomy shared by the index
// packages and the command surface.
package customerrors

import (
	"errors"
)

var (
	// ErrKeyNotFound should be returned from lookup operations when the
	// lookup key is not found in the index.
	ErrKeyNotFound = errors.New("key not found")

	// ErrAlreadyExists is returned when a create or extract target is
	// already present on disk.
	ErrAlreadyExists = errors.New("file exists")

	// ErrInvalidFormat is returned when a file does not start with the
	// index magic signature.
	ErrInvalidFormat = errors.New("not a valid index file")

	// ErrMalformedInput is returned for non-integer keys or values coming
	// from the command line or a bulk load file.
	ErrMalformedInput = errors.New("malformed input")

	ErrCorrupt = errors.New("index is corrupt")
)
