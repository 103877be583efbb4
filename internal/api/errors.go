package api

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure so the UI layer can route it: validation
// failures never reach the network, rejections carry the server's message
// verbatim, 401 is a session-level event, and unavailability is retriable.
type Kind int

const (
	KindValidation Kind = iota
	KindRejected
	KindUnauthorized
	KindUnavailable
)

// Error is a typed request failure.
type Error struct {
	Kind    Kind
	Status  int // HTTP status when one was received, else 0
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	}
	return "api: " + e.Message
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, k Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == k
}

// Message returns the user-facing message of an *Error, or err.Error() for
// anything else.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}
