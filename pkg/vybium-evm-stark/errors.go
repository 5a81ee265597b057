package vybiumevmstark

import "fmt"

// ErrorCode represents a Vybium EVM STARK error code
type ErrorCode int

const (
	// ErrUnknown represents an unknown error
	ErrUnknown ErrorCode = iota

	// ErrInvalidConfig represents an invalid configuration error
	ErrInvalidConfig

	// ErrInvalidInput represents an invalid input error
	ErrInvalidInput

	// ErrInvalidWitness represents a malformed or inconsistent witness
	ErrInvalidWitness

	// ErrProofGeneration represents a proof generation error
	ErrProofGeneration

	// ErrProofVerification represents a proof verification error
	ErrProofVerification

	// ErrNotImplemented represents a not implemented error.
	// NOTE: This error code is defined for completeness but should NOT be used
	// in production code. All features must be fully implemented before release.
	ErrNotImplemented
)

// StarkError represents a Vybium EVM STARK error
type StarkError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error returns the error message
func (e *StarkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("vybium-evm-stark error [%d]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("vybium-evm-stark error [%d]: %s", e.Code, e.Message)
}

// Unwrap returns the cause of the error
func (e *StarkError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target error
func (e *StarkError) Is(target error) bool {
	t, ok := target.(*StarkError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}
