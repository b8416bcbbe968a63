package model

import "errors"

// Domain errors surfaced to callers. Handlers map these to user-facing
// responses; everything else is wrapped and reported as a store failure.
var (
	// ErrInvalidOrExpiredCode deliberately covers unknown, expired and
	// already-used codes with one message, so a caller cannot probe
	// which case applies.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired invite code")
	ErrAlreadyLinked        = errors.New("already linked to this teacher")
	ErrNotATeacher          = errors.New("user is not a teacher")
	ErrNotFound             = errors.New("record not found")
	ErrForbidden            = errors.New("access denied")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrEmailTaken           = errors.New("email already registered")
)
