// Package errors provides a structured error type hierarchy for reelflix.
//
// This package defines base error types for common error conditions, wrapped error
// types that add contextual information, and helper functions for error wrapping
// and type checking.
//
// # Error Types
//
// Base errors (sentinel errors):
//   - ErrNotFound - resource not found
//   - ErrInvalid - validation failed
//   - ErrCorrupt - persisted data could not be decoded
//   - ErrIO - storage or file I/O error
//   - ErrCanceled - user canceled operation
//
// Wrapped error types (add context):
//   - StorageReadError{Key, Err} - reading or decoding a stored value failed
//   - StorageWriteError{Op, Key, Err} - persisting a value failed
//   - ConfigError{Path, Err} - configuration errors
//
// # Usage
//
//	// Wrap with context using Wrap
//	return errors.Wrap(err, "openStore")
//
//	// Use structured error types
//	return &errors.StorageWriteError{Op: "set", Key: key, Err: err}
//
//	// Check error types
//	if errors.IsCorrupt(err) {
//	    // fall back to an empty history
//	}
package errors

import (
	"errors"
	"fmt"
)

// Base error types (sentinel errors).
var (
	// ErrNotFound indicates a resource was not found.
	ErrNotFound = baseError("not found")

	// ErrInvalid indicates validation failed.
	ErrInvalid = baseError("invalid")

	// ErrCorrupt indicates persisted data exists but has the wrong shape.
	ErrCorrupt = baseError("corrupt data")

	// ErrIO indicates a storage or file I/O error.
	ErrIO = baseError("I/O error")

	// ErrCanceled indicates the user canceled an operation.
	ErrCanceled = baseError("canceled")
)

// baseError is a string that implements error.
type baseError string

func (e baseError) Error() string { return string(e) }

// StorageReadError represents a failure to read or decode a stored value.
type StorageReadError struct {
	// Key is the storage key that was read.
	Key string
	// Err is the underlying error.
	Err error
}

func (e *StorageReadError) Error() string {
	return fmt.Sprintf("storage read %q: %s", e.Key, e.Err)
}

func (e *StorageReadError) Unwrap() error { return e.Err }

// StorageWriteError represents a failure to persist a value.
type StorageWriteError struct {
	// Op is the storage operation being performed ("set" or "delete").
	Op string
	// Key is the storage key being written.
	Key string
	// Err is the underlying error.
	Err error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("storage %s %q: %s", e.Op, e.Key, e.Err)
}

func (e *StorageWriteError) Unwrap() error { return e.Err }

// ConfigError represents an error related to configuration.
type ConfigError struct {
	// Path is the configuration file path (optional).
	Path string
	// Err is the underlying error.
	Err error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %s", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %s", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Wrap adds context to an error by wrapping it with an operation name.
// The returned error implements Unwrap() allowing errors.Is and errors.As
// to work with the wrapped error.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return &wrappedError{op: op, err: err}
}

// wrappedError is an error with an operation context.
type wrappedError struct {
	op  string
	err error
}

func (e *wrappedError) Error() string { return fmt.Sprintf("%s: %s", e.op, e.err) }
func (e *wrappedError) Unwrap() error { return e.err }

// ioError joins ErrIO with the cause so both match errors.Is.
type ioError struct {
	err error
}

func (e *ioError) Error() string   { return e.err.Error() }
func (e *ioError) Unwrap() []error { return []error{ErrIO, e.err} }

// IO marks err as an I/O failure while keeping the original cause reachable.
func IO(err error) error {
	if err == nil {
		return nil
	}
	return &ioError{err: err}
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalid reports whether err is or wraps ErrInvalid.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrInvalid)
}

// IsCorrupt reports whether err is or wraps ErrCorrupt.
func IsCorrupt(err error) bool {
	return errors.Is(err, ErrCorrupt)
}

// IsIO reports whether err is or wraps ErrIO.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

// IsCanceled reports whether err is or wraps ErrCanceled.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}

// AsStorageReadError reports whether err can be typed as a *StorageReadError.
func AsStorageReadError(err error) (*StorageReadError, bool) {
	var re *StorageReadError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// AsStorageWriteError reports whether err can be typed as a *StorageWriteError.
func AsStorageWriteError(err error) (*StorageWriteError, bool) {
	var we *StorageWriteError
	if errors.As(err, &we) {
		return we, true
	}
	return nil, false
}

// AsConfigError reports whether err can be typed as a *ConfigError.
func AsConfigError(err error) (*ConfigError, bool) {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
