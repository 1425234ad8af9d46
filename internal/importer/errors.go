package importer

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an import failure.
type ErrorKind string

const (
	// ParseFailure: the file could not be read at all. Aborts the import.
	ParseFailure ErrorKind = "PARSE_FAILURE"
	// InvalidFormat: the file parsed but has the wrong shape.
	InvalidFormat ErrorKind = "INVALID_FORMAT"
	// RowValidationFailure: one row was rejected; the rest continue.
	RowValidationFailure ErrorKind = "ROW_VALIDATION_FAILURE"
	// CommitFailure: the batch write was rejected; nothing was imported.
	CommitFailure ErrorKind = "COMMIT_FAILURE"
	// NotificationFailure: the post-commit fan-out failed. Logged, retried by the worker.
	NotificationFailure ErrorKind = "NOTIFICATION_FAILURE"
)

// Error is an import failure with its kind and, for row failures, the row label.
type Error struct {
	Kind    ErrorKind
	Row     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Row != "" {
		msg = e.Row + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind carried by err, or "" if err is not an *Error.
func KindOf(err error) ErrorKind {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Kind
	}
	return ""
}

func parseErr(err error, format string, args ...any) *Error {
	return &Error{Kind: ParseFailure, Message: fmt.Sprintf(format, args...), Err: err}
}

func formatErr(format string, args ...any) *Error {
	return &Error{Kind: InvalidFormat, Message: fmt.Sprintf(format, args...)}
}
