// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrMissingCredentials = errors.New("authentication failed: missing credentials")
	ErrChainNotFound      = errors.New("no option chain data found")
	ErrNoExpirationFound  = errors.New("no eligible expiration found")
	ErrNoCandidates       = errors.New("no strikes found in target delta range")
	ErrConnectionLost     = errors.New("connection lost")
	ErrNotConnected       = errors.New("feed not connected")
	ErrSessionExpired     = errors.New("session expired")
)

// UpstreamError represents a network or venue failure during a fetch or
// subscribe operation.
type UpstreamError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("upstream unavailable [%s]: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("upstream unavailable [%s]: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// NewUpstreamError creates a new UpstreamError.
func NewUpstreamError(endpoint string, status int, err error) *UpstreamError {
	return &UpstreamError{
		Endpoint: endpoint,
		Status:   status,
		Err:      err,
	}
}

// PartialOiError indicates the Phase-2 window elapsed without open interest
// on both sides of the balanced set. Calls and Puts carry the number of
// contracts per side that reported data before the timer fired.
type PartialOiError struct {
	Calls int
	Puts  int
}

func (e *PartialOiError) Error() string {
	return fmt.Sprintf("open interest collection timed out: data on %d calls, %d puts", e.Calls, e.Puts)
}

// NewPartialOiError creates a new PartialOiError.
func NewPartialOiError(calls, puts int) *PartialOiError {
	return &PartialOiError{Calls: calls, Puts: puts}
}

// ChainError represents a chain resolution failure for a specific symbol.
type ChainError struct {
	Symbol string
	Err    error
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("chain error [%s]: %v", e.Symbol, e.Err)
}

func (e *ChainError) Unwrap() error {
	return e.Err
}

// NewChainError creates a new ChainError.
func NewChainError(symbol string, err error) *ChainError {
	return &ChainError{Symbol: symbol, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
