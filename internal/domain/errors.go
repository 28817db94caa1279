package domain

import "errors"

// Sentinel errors shared across services and adapters. Callers classify
// failures with errors.Is; everything else is treated as internal.
var (
	// ErrInvalidRequest marks malformed input (empty vehicle set, bad coordinates).
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNotFound marks lookups for unknown missions, vehicles, proposals or
	// infrastructure records.
	ErrNotFound = errors.New("not found")
)
