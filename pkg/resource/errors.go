package resource

import (
	"errors"
	"fmt"
)

// ErrArityMismatch is matched by every *ArityError.
var ErrArityMismatch = errors.New("arity mismatch")

// ArityError reports a handler invoked with the wrong number of arguments.
type ArityError struct {
	Keyword string
	Want    int
	Got     int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("keyword %q: want %d argument(s), got %d", e.Keyword, e.Want, e.Got)
}

// Is lets errors.Is(err, ErrArityMismatch) match.
func (e *ArityError) Is(target error) bool {
	return target == ErrArityMismatch
}

// HandlerError reports a handler that rejected its argument content.
type HandlerError struct {
	Keyword string
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("keyword %q: %v", e.Keyword, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }
