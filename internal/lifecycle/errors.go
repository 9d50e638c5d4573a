// Package lifecycle implements the state machines that govern bookings,
// rider acknowledgments and contracts. Status values, transition tables
// and role guards live here so that invalid edges are rejected at a
// single point instead of ad hoc checks scattered across handlers.
package lifecycle

import "errors"

// ErrNotFound is returned when a referenced booking, acknowledgment or
// contract does not exist. Handlers should translate this into an HTTP
// 404 response.
var ErrNotFound = errors.New("not found")

// ErrForbidden is returned when the caller is not an authorized party
// for the requested transition. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrValidation is returned when required fields of a request are
// missing or malformed, such as an empty modification proposal. The
// caller can correct the input and retry. Handlers should translate
// this into an HTTP 400 response.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when an attempted transition violates the
// state machine, such as double-signing a contract or moving a
// cancelled booking back to confirmed. Handlers should translate this
// into an HTTP 409 response.
var ErrConflict = errors.New("conflict")
