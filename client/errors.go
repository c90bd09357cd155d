package client

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------
// Public errors & helpers
// --------------------------------------------------------------------

// ErrUnauthenticated is returned when a call requires a token and none is
// present. No network request is made.
var ErrUnauthenticated = errors.New("not authenticated")

// ErrUnauthorized is returned when the backend rejects the current token.
// It is the only error with a side effect beyond the failing call: the
// session is cleared.
var ErrUnauthorized = errors.New("unauthorized")

// ErrBusy is returned by Conversation.Send while a previous send is still in
// flight. Sends are rejected, never queued.
var ErrBusy = errors.New("conversation busy")

// ErrEmptyMessage rejects blank chat input before any state is touched.
var ErrEmptyMessage = errors.New("empty message")

// ErrNoGroup reports that the user has not selected a timetable group yet.
var ErrNoGroup = errors.New("no group selected")

// HTTPError is a non-2xx response with the backend's detail message, when it
// supplied one in the {"detail": ...} envelope.
type HTTPError struct {
	Status int
	Detail string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// NetworkError is a transport-level failure: the request never produced an
// HTTP response.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network: %v", e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// IsUnauthorized reports whether err is a token rejection.
func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// IsUnauthenticated reports whether err is a missing-token fast failure.
func IsUnauthenticated(err error) bool { return errors.Is(err, ErrUnauthenticated) }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsRecoverableRead reports whether a read may fall back to cached data:
// server-side and transport failures qualify, token problems do not.
func IsRecoverableRead(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) || IsNetwork(err)
}
