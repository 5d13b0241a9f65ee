package domain

import "errors"

var (
	// ErrDuplicateName is returned when a catalog entry with the same
	// normalized name already exists.
	ErrDuplicateName = errors.New("penalty type already exists")

	// ErrInvalidAmount is returned for zero, negative or unparseable amounts.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNotFound is returned when a catalog entry is absent.
	ErrNotFound = errors.New("not found")

	// ErrSyncUnavailable is returned when the external scheduling service
	// cannot be reached. Writes committed before the failure stand.
	ErrSyncUnavailable = errors.New("scheduling service unavailable")
)
