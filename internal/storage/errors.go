package storage

import "github.com/pkg/errors"

// Common errors.
var (
	ErrAllocation    = errors.New("allocation failed")
	ErrBorrowed      = errors.New("storage is borrowed and cannot be resized")
	ErrUnsupported   = errors.New("operation not supported by buffer")
	ErrForeignBuffer = errors.New("buffer was not produced by this allocator")
	ErrReleased      = errors.New("storage has been released")
)
