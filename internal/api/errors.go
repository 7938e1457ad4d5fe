package api

import (
	"errors"
	"fmt"
)

// RemoteError is the only error the client returns. Detail comes from the
// backend's {"detail": ...} body; Raw is the transport-level description
// used when there is no detail.
type RemoteError struct {
	Status  int
	Detail  string
	Raw     string
	Body    string
	Timeout bool
}

func (e *RemoteError) Error() string {
	msg := e.Message()
	if e.Status != 0 {
		return fmt.Sprintf("remote error (status %d): %s", e.Status, msg)
	}
	return "remote error: " + msg
}

// Message is the text shown to users: the backend detail when present,
// otherwise the transport error.
func (e *RemoteError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}
	if e.Raw != "" {
		return e.Raw
	}
	return "network error"
}

// Message extracts the user-facing text from any error.
func Message(err error) string {
	var rerr *RemoteError
	if errors.As(err, &rerr) {
		return rerr.Message()
	}
	return err.Error()
}

// IsTimeout reports whether err is a timed-out request.
func IsTimeout(err error) bool {
	var rerr *RemoteError
	return errors.As(err, &rerr) && rerr.Timeout
}
