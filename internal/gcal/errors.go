package gcal

import "fmt"

// RemoteReadError reports a failed existing-events fetch. It is fatal to the
// whole sync: nothing is written when the snapshot cannot be read.
type RemoteReadError struct {
	Err error
}

func (e *RemoteReadError) Error() string {
	return fmt.Sprintf("fetching existing events: %v", e.Err)
}

func (e *RemoteReadError) Unwrap() error { return e.Err }

// RemoteWriteError reports a wholesale batch failure at the transport level,
// as opposed to per-item failures which are delivered through callbacks.
type RemoteWriteError struct {
	Err error
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("executing batch insert: %v", e.Err)
}

func (e *RemoteWriteError) Unwrap() error { return e.Err }

// ItemError is the per-item failure detail extracted from one batch part.
type ItemError struct {
	Status  int
	Message string
}

func (e *ItemError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("calendar API error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("calendar API error (status %d)", e.Status)
}
