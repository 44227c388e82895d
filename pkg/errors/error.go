// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid parameters, configuration and playback settings
//   - Fetch errors (200-299): A symbol file could not be found or transferred
//   - Payload errors (300-399): A symbol file was fetched but could not be normalized
//   - Catalog errors (400-499): The catalog as a whole could not be built
//   - Market data errors (700-799): Historical data download and writing errors
//
// Per-symbol failures (2xx, 3xx) are recoverable: the loader skips the symbol.
// ErrCodeNoDataAvailable is terminal.
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidParameter, "invalid parameter value")
//
//	// Create a formatted error
//	err := errors.Newf(errors.ErrCodeSymbolNotFound, "no data file for symbol %s", symbol)
//
//	// Wrap an existing error
//	err := errors.Wrap(errors.ErrCodePayloadParseFailed, "failed to decode payload", originalErr)
//
//	// Check error code
//	if errors.HasCode(err, errors.ErrCodeNoDataAvailable) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around the standard errors.Is function.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around the standard errors.As function.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode from an error if it's an *Error type.
// Returns ErrCodeUnknown if the error is not an *Error type.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if an error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// SymbolError records why a single symbol was excluded from the catalog.
type SymbolError struct {
	Symbol string
	Code   ErrorCode
	Cause  error
}

// NewSymbolError creates a SymbolError. The code is taken from cause when it is an *Error.
func NewSymbolError(symbol string, cause error) *SymbolError {
	return &SymbolError{
		Symbol: symbol,
		Code:   GetCode(cause),
		Cause:  cause,
	}
}

// Error implements the error interface.
func (e *SymbolError) Error() string {
	return fmt.Sprintf("symbol %s skipped: %v", e.Symbol, e.Cause)
}

// Unwrap returns the underlying error cause.
func (e *SymbolError) Unwrap() error {
	return e.Cause
}

// IsSymbolError checks if an error is a SymbolError.
// It uses errors.As to check the error chain.
func IsSymbolError(err error) bool {
	var symbolErr *SymbolError

	return errors.As(err, &symbolErr)
}
