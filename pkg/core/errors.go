package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalid     = errors.New("invalid record")
	ErrPersistence = errors.New("persistence fault")
)

// RemoteError is a transport failure reported by a Gateway.
// Status is the HTTP-like status code, or 0 when the request never produced a response
// (network failure, malformed payload).
type RemoteError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("remote %s failed (status %d): %s", e.Op, e.Status, msg)
	}
	return fmt.Sprintf("remote %s failed: %s", e.Op, msg)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsRemote reports whether err carries a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
