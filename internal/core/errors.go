package core

import "errors"

var (
	// ErrEmptyTable is the empty-table condition: the file parsed but has no
	// data rows. It is reported to the user, never treated as a crash.
	ErrEmptyTable = errors.New("empty table: the file has no pole rows")

	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the session store is full.
	ErrTooManySessions = errors.New("too many active sessions")

	// ErrInvalidSettings wraps every settings validation failure.
	ErrInvalidSettings = errors.New("invalid settings")

	// ErrInvalidCoordinate is returned for NaN or infinite coordinates.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrNoFile is returned when an upload carries no file.
	ErrNoFile = errors.New("no file provided")

	// ErrFileTooLarge is returned when an upload exceeds the configured limit.
	ErrFileTooLarge = errors.New("file too large")
)
