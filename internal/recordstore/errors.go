package recordstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a record store failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindServer
	KindValidation
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	case KindValidation:
		return "validation"
	case KindTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Any *Error matches the sentinel of its Kind.
var (
	ErrNotFound   = &Error{Kind: KindNotFound, Message: msgNotFound}
	ErrServer     = &Error{Kind: KindServer, Message: msgServer}
	ErrValidation = &Error{Kind: KindValidation, Message: "Invalid request"}
	ErrTransport  = &Error{Kind: KindTransport, Message: "Record store unreachable"}
	ErrUnknown    = &Error{Kind: KindUnknown, Message: msgUnexpected}
)

const (
	msgNotFound   = "Resource not found"
	msgServer     = "Server error. Please try again later."
	msgUnexpected = "An unexpected error occurred"
)

// Error is a failed record store call. Message is safe to show to users.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("record store: %s (status %d)", e.Message, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("record store: %s: %v", e.Message, e.Err)
	}
	return "record store: " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindForStatus maps an HTTP status to a Kind.
func KindForStatus(status int) Kind {
	switch {
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	case status == http.StatusBadRequest, status == http.StatusConflict, status == http.StatusUnprocessableEntity:
		return KindValidation
	default:
		return KindUnknown
	}
}

// StatusError builds the error for a non-2xx response. detail is the
// server-supplied message and wins over the generic text when present.
func StatusError(status int, detail string) *Error {
	msg := detail
	if msg == "" {
		switch status {
		case http.StatusNotFound:
			msg = msgNotFound
		case http.StatusInternalServerError:
			msg = msgServer
		default:
			msg = msgUnexpected
		}
	}
	return &Error{Kind: KindForStatus(status), Status: status, Message: msg}
}

func transportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: "Network error. Please check your connection.", Err: err}
}

func decodeError(err error) *Error {
	return &Error{Kind: KindTransport, Message: "Invalid response from server", Err: err}
}

// Message returns the user-facing text for err. Errors that did not come
// from the record store fall back to the generic message.
func Message(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timed out. Please try again."
	}
	var rsErr *Error
	if errors.As(err, &rsErr) && rsErr.Message != "" {
		return rsErr.Message
	}
	return msgUnexpected
}
