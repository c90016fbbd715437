package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")

	// ErrFatalDocument: the upload is not a readable PDF or could not be rasterized.
	ErrFatalDocument = errors.New("unreadable document")
	// ErrTransientService: the vision model or the asset download is unavailable.
	ErrTransientService = errors.New("service unavailable")
	// ErrMalformedReply: the vision model answered without a usable JSON payload.
	ErrMalformedReply = errors.New("malformed model reply")
	ErrNotConfigured  = errors.New("not configured")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// FatalDocument wraps cause so that errors.Is(err, ErrFatalDocument) holds.
func FatalDocument(message string, cause error) error {
	return NewAppError("FATAL_DOCUMENT", message, errors.Join(ErrFatalDocument, cause))
}

// TransientService wraps cause so that errors.Is(err, ErrTransientService) holds.
func TransientService(message string, cause error) error {
	return NewAppError("TRANSIENT_SERVICE", message, errors.Join(ErrTransientService, cause))
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}
