package api

import (
	"encoding/json"

	"github.com/and161185/shiftreport/internal/errs"
)

// Messages used when the backend gives nothing better.
const (
	msgFailedToFetch = "Failed to fetch"
	backendNotFound  = "not_found"
)

// Error describes a failed call: transport failure, structured server error or HTTP status.
type Error struct {
	Message string          // shown to the user verbatim
	Details json.RawMessage // error body as sent by the backend, if any
	Status  int             // HTTP status; 0 on transport failure
	Kind    error           // errs.ErrTransport, errs.ErrNotFound or nil
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the sentinel so callers can use errors.Is.
func (e *Error) Unwrap() error { return e.Kind }

// Result is a tagged outcome: Err is nil on success, Data may be nil for empty successes.
type Result[T any] struct {
	Data *T
	Err  *Error
}

// OK reports success.
func (r Result[T]) OK() bool { return r.Err == nil }

// Message returns the error message or fallback when the call failed without one.
func (r Result[T]) Message(fallback string) string {
	if r.Err == nil || r.Err.Message == "" {
		return fallback
	}
	return r.Err.Message
}

// envelope is the backend response body: {"data": T} or {"error": "...", "details": ...}.
type envelope[T any] struct {
	Data    *T              `json:"data"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

func transportError() *Error {
	return &Error{Message: msgFailedToFetch, Kind: errs.ErrTransport}
}

func serverError(status int, msg string, details json.RawMessage) *Error {
	e := &Error{Message: msg, Details: details, Status: status}
	if msg == backendNotFound {
		e.Kind = errs.ErrNotFound
	}
	return e
}
