package service

import (
	"errors"
	"fmt"
)

// FailureKind is the stable classification every public operation reports
// its failures under. Handlers map kinds to HTTP status codes; anything not
// carrying a kind is treated as an internal failure and never leaks details.
type FailureKind string

const (
	KindValidation          FailureKind = "VALIDATION"
	KindNotFound            FailureKind = "NOT_FOUND"
	KindInvalidTransition   FailureKind = "INVALID_TRANSITION"
	KindInsufficientBalance FailureKind = "INSUFFICIENT_BALANCE"
	KindAlreadyClaimed      FailureKind = "ALREADY_CLAIMED"
	KindConflict            FailureKind = "CONFLICT"
	KindInternal            FailureKind = "INTERNAL"
)

// Error is a structured operation failure. Fields carries field-level detail
// for validation and filter errors ("which cart line failed"); it is nil for
// kinds where a message is enough.
type Error struct {
	Kind    FailureKind
	Message string
	Fields  map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func failure(kind FailureKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func validationFailure(message string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func internalFailure(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, cause: cause}
}

// KindOf classifies any error for the transport boundary.
func KindOf(err error) FailureKind {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind
	}
	return KindInternal
}

// FieldsOf returns the field-level detail map, if any.
func FieldsOf(err error) map[string]string {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Fields
	}
	return nil
}

// MessageOf returns the user-safe message for an error. Internal causes are
// never included.
func MessageOf(err error) string {
	var e *Error
	if ok := asError(err, &e); ok && e.Kind != KindInternal {
		return e.Message
	}
	return "internal server error"
}

func asError(err error, target **Error) bool {
	return errors.As(err, target)
}
