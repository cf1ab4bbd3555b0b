// Package sentinel holds the storage-level errors shared by the warranty
// store, the resolution cache and the reconciliation journal. They describe
// what happened to the data, not what the caller should see; services map
// them onto domain error codes.
package sentinel

import "errors"

var (
	// ErrNotFound means no record exists for the serial number or token id.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique serial number or token id was already taken.
	ErrConflict = errors.New("conflict")
	// ErrInvalidState means the record exists but refuses the mutation, such
	// as attaching a second token id.
	ErrInvalidState = errors.New("invalid state")
	// ErrUnavailable means the backing database could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
