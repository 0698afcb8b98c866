// Package common defines shared constants and sentinel errors used across
// the Routine-Calendary core. Callers should use errors.Is to match these
// values; services wrap them with human-readable context.
package common

import "errors"

var (
	// Validation errors (missing or malformed required field).
	ErrInvalidInput = errors.New("invalid input")

	// Registration / profile-update errors.
	ErrDuplicateIdentifier = errors.New("email or username already in use")

	// Authentication errors. Deliberately covers both "no such user" and
	// "wrong password" so callers cannot enumerate identifiers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Entity lookup errors (missing calendar or user).
	ErrNotFound = errors.New("not found")

	// Substrate read/write errors. Stores catch and degrade these; the
	// sentinel exists for diagnostics and tests, not for UI surfacing.
	ErrPersistence = errors.New("persistence failure")
)
