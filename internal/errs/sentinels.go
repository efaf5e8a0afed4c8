// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across api/service/ui layers.
var (
	// ErrNotFound indicates the requested entity does not exist (backend "not_found", missing draft).
	ErrNotFound = errors.New("not found")

	// ErrTransport indicates no response was obtained from the backend.
	ErrTransport = errors.New("transport failure")

	// ErrValidation indicates input rejected locally before any network call.
	ErrValidation = errors.New("validation")

	// ErrNoIdentity indicates the host did not supply a platform identity.
	ErrNoIdentity = errors.New("no platform identity")

	// ErrAlreadyRegistered indicates the backend already knows this identity (unique constraint).
	ErrAlreadyRegistered = errors.New("already registered")

	// ErrCorruptDraft indicates a persisted draft that cannot be read back.
	ErrCorruptDraft = errors.New("corrupt draft")
)
