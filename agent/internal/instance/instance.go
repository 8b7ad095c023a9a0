package instance

import "errors"

// ErrAlreadyRunning is returned when another agent holds the instance lock.
var ErrAlreadyRunning = errors.New("another instance is already running")

// Lock is held for the lifetime of the process.
type Lock interface {
	Release() error
}
