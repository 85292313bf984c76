// Package common provides shared constants, types, and utilities
// used across the EVPN Assistant application.
package common

import "errors"

// Sentinel errors. Check them with errors.Is().
var (
	// Process execution errors.
	ErrProcessSpawn = errors.New("unable to launch vpn client")
	ErrProcessExit  = errors.New("vpn client exited abnormally")
	ErrStreamRead   = errors.New("unable to read vpn client output")

	// Location catalogue errors.
	ErrLocationNotFound = errors.New("location not found")
	ErrInvalidLocations = errors.New("invalid locations file")

	// Configuration errors.
	ErrConfigLoad = errors.New("failed to load configuration")
	ErrConfigSave = errors.New("failed to save configuration")
	ErrInvalidRGB = errors.New("invalid rgb colour")

	// Notification errors.
	ErrNotifierUnavailable = errors.New("no notification service available")
)

// WrapError wraps an error with additional context.
func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{
		msg: message,
		err: err,
	}
}

type wrappedError struct {
	msg string
	err error
}

func (e *wrappedError) Error() string {
	return e.msg + ": " + e.err.Error()
}

func (e *wrappedError) Unwrap() error {
	return e.err
}
