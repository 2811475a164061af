package config

import "errors"

var (
	// ErrConfigCorrupted signals that the settings file existed but could not
	// be parsed. The store recovers by rewriting defaults; callers should
	// warn the user, not abort.
	ErrConfigCorrupted = errors.New("settings file corrupted, reset to defaults")

	// ErrProtectedProfile rejects deletion of the Default profile or the
	// currently active one.
	ErrProtectedProfile = errors.New("profile is protected and cannot be deleted")

	// ErrDuplicateSuffix rejects adding a suffix that already exists in the
	// profile. The existing mapping is preserved.
	ErrDuplicateSuffix = errors.New("suffix already mapped in profile")

	// ErrUnknownSuffix is returned when updating or removing a suffix the
	// profile does not contain.
	ErrUnknownSuffix = errors.New("suffix not present in profile")

	// ErrUnknownProfile is returned when activating a profile that does not
	// exist.
	ErrUnknownProfile = errors.New("no such profile")
)
