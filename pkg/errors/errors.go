// Package errors provides structured error handling for cnftdrop.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess    = 0 // Successful execution
	ExitGeneral    = 1 // General/unknown error
	ExitInput      = 2 // Invalid input or configuration
	ExitAuth       = 3 // Key material could not be opened
	ExitNotFound   = 4 // Resource not found
	ExitPermission = 5 // Permission denied or insufficient funds
	ExitPartial    = 6 // Batch finished but at least one entry failed
)

// DropError is the structured error type for cnftdrop.
type DropError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *DropError) Error() string {
	msg := e.Message

	// Include details in error message (sorted for deterministic output)
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *DropError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for DropError.
func (e *DropError) Is(target error) bool {
	var t *DropError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &DropError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &DropError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &DropError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	ErrInsufficientFunds = &DropError{
		Code:     "INSUFFICIENT_FUNDS",
		Message:  "insufficient funds for transaction",
		ExitCode: ExitPermission,
	}

	// Batch pipeline errors.
	ErrConfiguration = &DropError{
		Code:     "CONFIGURATION_ERROR",
		Message:  "tree context is incomplete",
		ExitCode: ExitInput,
	}

	ErrFunding = &DropError{
		Code:     "FUNDING_ERROR",
		Message:  "claim wallet funding failed",
		ExitCode: ExitGeneral,
	}

	ErrMintSubmission = &DropError{
		Code:     "MINT_SUBMISSION_ERROR",
		Message:  "compressed mint failed",
		ExitCode: ExitGeneral,
	}

	ErrPartialBatch = &DropError{
		Code:     "PARTIAL_BATCH",
		Message:  "one or more catalog entries failed",
		ExitCode: ExitPartial,
	}

	// Key-specific errors.
	ErrInvalidAddress = &DropError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid public key",
		ExitCode: ExitInput,
	}

	ErrInvalidKeypair = &DropError{
		Code:     "INVALID_KEYPAIR",
		Message:  "invalid keypair",
		ExitCode: ExitAuth,
	}

	ErrInvalidMnemonic = &DropError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	ErrInvalidHandle = &DropError{
		Code:     "INVALID_CLAIM_LINK",
		Message:  "invalid claim link",
		ExitCode: ExitInput,
	}

	ErrDecryptionFailed = &DropError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong identity or corrupted file",
		ExitCode: ExitAuth,
	}

	// Chain-specific errors.
	ErrNetworkError = &DropError{
		Code:     "NETWORK_ERROR",
		Message:  "network communication failed",
		ExitCode: ExitGeneral,
	}

	ErrTxRejected = &DropError{
		Code:     "TX_REJECTED",
		Message:  "transaction rejected by network",
		ExitCode: ExitGeneral,
	}

	ErrConfirmTimeout = &DropError{
		Code:     "CONFIRM_TIMEOUT",
		Message:  "transaction was not confirmed in time",
		ExitCode: ExitGeneral,
	}

	// Config-specific errors.
	ErrConfigNotFound = &DropError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &DropError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrInvalidFormat = &DropError{
		Code:     "INVALID_FORMAT",
		Message:  "invalid format",
		ExitCode: ExitInput,
	}

	ErrNotSupported = &DropError{
		Code:     "NOT_SUPPORTED",
		Message:  "operation not supported",
		ExitCode: ExitInput,
	}
)

// New creates a new DropError with the given code and message.
func New(code, message string) *DropError {
	return &DropError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// WithCause returns a copy of a sentinel error carrying cause.
// The result matches both the sentinel and cause with errors.Is.
func WithCause(sentinel *DropError, cause error) error {
	return &DropError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Details:    sentinel.Details,
		Suggestion: sentinel.Suggestion,
		Cause:      cause,
		ExitCode:   sentinel.ExitCode,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var se *DropError
	if errors.As(err, &se) {
		return &DropError{
			Code:       se.Code,
			Message:    fmt.Sprintf("%s: %s", msg, se.Message),
			Details:    se.Details,
			Suggestion: se.Suggestion,
			Cause:      se.Cause,
			ExitCode:   se.ExitCode,
		}
	}

	return &DropError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var se *DropError
	if errors.As(err, &se) {
		return &DropError{
			Code:       se.Code,
			Message:    se.Message,
			Details:    details,
			Suggestion: se.Suggestion,
			Cause:      se.Cause,
			ExitCode:   se.ExitCode,
		}
	}

	return &DropError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var se *DropError
	if errors.As(err, &se) {
		return &DropError{
			Code:       se.Code,
			Message:    se.Message,
			Details:    se.Details,
			Suggestion: suggestion,
			Cause:      se.Cause,
			ExitCode:   se.ExitCode,
		}
	}

	return &DropError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var se *DropError
	if errors.As(err, &se) {
		return se.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var se *DropError
	if errors.As(err, &se) {
		return se.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
