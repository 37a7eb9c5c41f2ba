package core

import "github.com/pkg/errors"

// FieldError ties a validation message to the request field it concerns.
type FieldError struct {
	Field string
	Error string
}

// ValidationError carries per-field failures from request validation.
// The HTTP layer renders it as a 400 with the field map attached.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

// NewValidationError wraps err with zero or more field-level messages.
func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{Err: err, Fields: flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

// shutdown signals an unrecoverable integrity problem. The error handler
// forwards it to the server's shutdown channel instead of responding 500.
type shutdown struct {
	msg string
}

// NewShutdownError returns an error that triggers a graceful shutdown.
func NewShutdownError(msg string) error {
	return &shutdown{msg: msg}
}

func (s shutdown) Error() string { return s.msg }

// IsShutdown reports whether err's cause is a shutdown error.
func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
