package gateway

import (
	"errors"
	"fmt"
)

// ErrorKind says how far a request got before it failed.
type ErrorKind string

const (
	// KindNoResponse: the request was sent but no response arrived (timeout, transport, open breaker).
	KindNoResponse ErrorKind = "no_response"
	// KindRejected: the gateway answered with a non-2xx status.
	KindRejected ErrorKind = "rejected"
	// KindMalformedRequest: the request could not be built or sent at all.
	KindMalformedRequest ErrorKind = "malformed_request"
	// KindUnexpected: a 2xx response whose body could not be decoded.
	KindUnexpected ErrorKind = "unexpected"
	// KindCanceled: the caller gave up before the gateway answered.
	KindCanceled ErrorKind = "canceled"
)

// Error is returned by every Client method.
type Error struct {
	Op     string
	Kind   ErrorKind
	Status int
	// Message is the gateway's "message" field, when it sent one.
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("gateway %s: %s (status %d): %s", e.Op, e.Kind, e.Status, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("gateway %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("gateway %s: %s (status %d)", e.Op, e.Kind, e.Status)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts a *Error from err.
func AsError(err error) (*Error, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr, true
	}
	return nil, false
}

// ServerMessage returns the gateway's message carried by err, or "".
func ServerMessage(err error) string {
	if gwErr, ok := AsError(err); ok {
		return gwErr.Message
	}
	return ""
}

// countsAgainstBreaker: only an unreachable or failing gateway trips the breaker.
// A caller walking away says nothing about the gateway's health.
func countsAgainstBreaker(err error) bool {
	gwErr, ok := AsError(err)
	if !ok {
		return true
	}
	if gwErr.Kind == KindCanceled {
		return false
	}
	return gwErr.Kind == KindNoResponse || gwErr.Status >= 500
}
