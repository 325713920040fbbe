package client

import (
	"errors"
	"fmt"
)

// ErrDaemonNotRunning is returned when the backend cannot be reached.
var ErrDaemonNotRunning = errors.New("backend not running")

// StatusError is a non-2xx response from the backend, carrying the decoded
// error message when the backend sent one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}
