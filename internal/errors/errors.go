package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portal front end
var (
	// Session errors
	ErrBootstrapStarted = errors.New("session bootstrap already started")
	ErrInvalidToken     = errors.New("invalid token")
	ErrMalformedReply   = errors.New("malformed response")

	// Credential slot errors
	ErrNotFound = errors.New("not found")

	// Upload errors
	ErrBusy            = errors.New("upload already in progress")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file too large")

	// General errors
	ErrInvalidRequest = errors.New("invalid request")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
