//go:build windows

package instance

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

type mutexLock struct{ h windows.Handle }

// Acquire creates a named mutex; an existing mutex means another agent runs.
func Acquire(name string) (Lock, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateMutex(nil, false, p)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if h != 0 {
			_ = windows.CloseHandle(h)
		}
		return nil, ErrAlreadyRunning
	}
	if err != nil {
		return nil, fmt.Errorf("create mutex %s: %w", name, err)
	}
	return &mutexLock{h: h}, nil
}

func (l *mutexLock) Release() error {
	return windows.CloseHandle(l.h)
}
