package domain

import "errors"

var (
	// ErrInvalidCredentials covers empty or malformed login/register input.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrNotAuthenticated is returned when an operation requires a session
	// token and none is present.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when the session role does not satisfy a
	// route's role requirement.
	ErrForbidden = errors.New("access forbidden")

	// ErrSlotEmpty signals that a storage slot holds no prior state. Corrupt
	// or undecryptable slots are reported as empty as well: a broken session
	// must degrade to logged-out, never crash the client.
	ErrSlotEmpty = errors.New("storage slot empty")

	// ErrHydrating is returned by the gateway while persisted state is still
	// being restored and no trustworthy answer exists yet.
	ErrHydrating = errors.New("session still hydrating")
)
