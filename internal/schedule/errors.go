package schedule

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument reports a missing or malformed destination, text or
	// fire time. Nothing is registered when it is returned.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidDate reports a fire time that cannot be parsed. It wraps
	// ErrInvalidArgument.
	ErrInvalidDate = fmt.Errorf("%w: invalid dateTime", ErrInvalidArgument)
	// ErrNotFound reports an unknown job id.
	ErrNotFound = errors.New("scheduled message not found")
	// ErrClosed is returned by Schedule after Close.
	ErrClosed = errors.New("registry closed")
)
