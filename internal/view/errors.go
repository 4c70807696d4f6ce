package view

import (
	"fmt"

	"github.com/pkg/errors"
)

// Common errors.
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidStorageOffset = errors.New("invalid storage offset")
	ErrEmptySet             = errors.New("empty view set")
	ErrReleased             = errors.New("view released")
)

// ArgError reports a bad caller argument. Arg is the 1-based parameter
// position, not counting the receiver.
type ArgError struct {
	Op   string // Operation that rejected the argument (e.g., "squeeze1d").
	Arg  int    // Position of the offending parameter.
	Name string // Parameter name.
	Msg  string // What was wrong with it.
}

// Error implements the error interface.
func (e *ArgError) Error() string {
	return fmt.Sprintf("%s: bad argument #%d (%s): %s", e.Op, e.Arg, e.Name, e.Msg)
}

// Is makes errors.Is(err, ErrInvalidArgument) match every ArgError.
func (e *ArgError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func argError(op string, arg int, name, format string, args ...any) error {
	return &ArgError{Op: op, Arg: arg, Name: name, Msg: fmt.Sprintf(format, args...)}
}

// invalidOffset panics: a negative offset means the metadata is corrupt.
func invalidOffset(offset int) {
	panic(errors.Wrapf(ErrInvalidStorageOffset, "offset %d", offset))
}
