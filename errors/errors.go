package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if re-running could succeed without operator action.
	Retryable bool `json:"retryable"`
	// ExitCode is the process exit code the CLI reports for this error.
	ExitCode int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with retryable and exit code derived from the code.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
		ExitCode:  ExitCodeFor(code),
	}
}

// --- Domain constructors ---

// Configuration creates an error for a missing or invalid setting.
func Configuration(field, reason string) *AppError {
	err := New(ErrCodeConfiguration, fmt.Sprintf("Invalid configuration: %s", reason))
	if field != "" {
		err.WithDetail("field", field)
	}
	return err
}

// MissingCredential creates a configuration error for an absent secret.
// The name of the variable is reported, never its value.
func MissingCredential(name string) *AppError {
	return New(ErrCodeConfiguration, fmt.Sprintf("%s is not set. Supply it via the environment or a .env file.", name)).
		WithDetail("field", name)
}

// AssetNotFound creates an error for an audio path that does not exist.
func AssetNotFound(path string) *AppError {
	return New(ErrCodeAssetNotFound, fmt.Sprintf("Audio file not found: %s", path)).
		WithDetail("path", path)
}

// AssetDecode creates an error for an audio file that could not be decoded.
func AssetDecode(path string, cause error) *AppError {
	return New(ErrCodeAssetDecode, fmt.Sprintf("Unable to decode audio file: %s", path)).
		WithDetail("path", path).
		WithCause(cause)
}

// CapabilityUnavailable creates an error for a diarization pipeline that
// could not be constructed.
func CapabilityUnavailable(name string, cause error) *AppError {
	return New(ErrCodeCapabilityUnavailable, fmt.Sprintf("The %s diarization pipeline could not be loaded.", name)).
		WithDetail("capability", name).
		WithCause(cause)
}

// --- Generic constructors ---

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	err := New(ErrCodeInvalidInput, fmt.Sprintf("Invalid input: %s", reason))
	if field != "" {
		err.WithDetail("field", field)
	}
	return err
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message)
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return New(ErrCodeMissingField, fmt.Sprintf("Missing required field: %s", field)).
		WithDetail("field", field)
}

// Timeout creates a new AppError for an operation that timed out.
func Timeout(operation string) *AppError {
	return New(ErrCodeTimeout, "The operation took too long.").
		WithDetail("operation", operation)
}

// ExternalServiceError creates a new AppError for a failing collaborator.
func ExternalServiceError(service string, cause error) *AppError {
	return New(ErrCodeExternalService, fmt.Sprintf("The %s service encountered an error.", service)).
		WithDetail("service", service).
		WithCause(cause)
}

// Internal creates a new AppError for an unexpected failure.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred.").WithCause(cause)
}

// --- Inspection ---

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err (or anything it wraps) is an AppError with code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

// ExitCode returns the CLI exit code for err: 0 for nil, the AppError's exit
// code when present, and ExitFailure otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if appErr, ok := AsAppError(err); ok && appErr.ExitCode != 0 {
		return appErr.ExitCode
	}
	return ExitFailure
}

// Wrap converts any error to an AppError. AppErrors anywhere in the chain are
// returned as-is; anything else becomes an INTERNAL_ERROR carrying err as cause.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
