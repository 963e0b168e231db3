// Package errs contains sentinel errors shared across layers for stable error mapping.
package errs

import "errors"

var (
	// ErrNotFound indicates the requested user or message does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden indicates an ownership or role check failed.
	ErrForbidden = errors.New("forbidden")

	// ErrUsernameTaken indicates a unique constraint violation on username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials indicates failed authentication. Lookup misses and
	// password mismatches both map here so account existence is not leaked.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrStorageUnavailable indicates a connectivity or transient storage fault.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrMalformedInput indicates an unparseable or out-of-domain value.
	ErrMalformedInput = errors.New("malformed input")
)
