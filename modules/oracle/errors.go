package oracle

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable = errors.New("oracle unavailable")
	ErrProtocol    = errors.New("oracle protocol violation")
	ErrFailed      = errors.New("oracle command failed")
)

// Error describes a failed oracle operation.
type Error struct {
	Op     string
	Output string
	Err    error
}

func (e *Error) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("oracle %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("oracle %s: %v: %s", e.Op, e.Err, e.Output)
}

func (e *Error) Unwrap() error {
	return e.Err
}
