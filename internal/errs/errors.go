// Package errs provides the unified error type used across the adapter.
//
// Every subsystem (scan engine, sources, database and object-store drivers)
// wraps its native errors into *errs.Error before returning them. The host
// surface turns an *errs.Error into the single user-visible message string the
// host expects; Go callers use the Is* predicates instead.
//
// Usage:
//
//	// In a source, wrap native errors:
//	return nil, errs.Wrap(errs.ErrKindFetchFailed, "request failed", err)
//
//	// In a caller, check the error kind:
//	if errs.IsParseFailed(err) {
//	    // body was not a JSON array
//	}
package errs

import (
	"errors"
	"fmt"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
type ErrKind int

const (
	ErrKindUnknown ErrKind = iota

	// adapter taxonomy
	ErrKindMissingOption         // required option absent
	ErrKindFetchFailed           // source could not be read
	ErrKindParseFailed           // source body is malformed
	ErrKindUnknownField          // column has no matching field in the record
	ErrKindTypeMismatch          // raw value does not fit the declared column type
	ErrKindUnsupportedColumnType // declared column type is not convertible
	ErrKindUnsupportedOperation  // write path
	ErrKindIndexOutOfRange       // row accessor outside bounds
	ErrKindInvalidState          // lifecycle callback out of order

	// backend kinds, usually the cause of a FetchFailed
	ErrKindNotFound
	ErrKindConnectionFailed
	ErrKindTimeout
	ErrKindQueryFailed
	ErrKindInvalidInput
	ErrKindPermissionDenied
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindMissingOption:
		return "missing_option"
	case ErrKindFetchFailed:
		return "fetch_failed"
	case ErrKindParseFailed:
		return "parse_failed"
	case ErrKindUnknownField:
		return "unknown_field"
	case ErrKindTypeMismatch:
		return "type_mismatch"
	case ErrKindUnsupportedColumnType:
		return "unsupported_column_type"
	case ErrKindUnsupportedOperation:
		return "unsupported_operation"
	case ErrKindIndexOutOfRange:
		return "index_out_of_range"
	case ErrKindInvalidState:
		return "invalid_state"
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all subsystems.
type Error struct {
	Kind    ErrKind
	Message string
	// Subject names what the error is about: an option key, a column name
	// or an operation. Empty when not applicable.
	Subject string
	Cause   error // underlying driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func MissingOption(key string) *Error {
	return &Error{
		Kind:    ErrKindMissingOption,
		Message: fmt.Sprintf("option '%s' is required but not provided", key),
		Subject: key,
	}
}

func InvalidOption(key, value string, cause error) *Error {
	return &Error{
		Kind:    ErrKindInvalidInput,
		Message: fmt.Sprintf("option '%s' has invalid value %q", key, value),
		Subject: key,
		Cause:   cause,
	}
}

func UnknownField(column string) *Error {
	return &Error{
		Kind:    ErrKindUnknownField,
		Message: fmt.Sprintf("column '%s' has no matching field in the source record", column),
		Subject: column,
	}
}

// TypeMismatch reports a raw value that cannot become a cell of the declared
// type. cause carries the parser error for timestamps and JSON, and is nil
// otherwise.
func TypeMismatch(column, expected, actual string, cause error) *Error {
	return &Error{
		Kind:    ErrKindTypeMismatch,
		Message: fmt.Sprintf("column '%s': expected %s, got %s", column, expected, actual),
		Subject: column,
		Cause:   cause,
	}
}

func UnsupportedColumnType(column string) *Error {
	return &Error{
		Kind:    ErrKindUnsupportedColumnType,
		Message: fmt.Sprintf("column '%s' has an unsupported type", column),
		Subject: column,
	}
}

// UnsupportedConversion is an UnsupportedColumnType for one value: the raw
// value has no conversion to the declared type.
func UnsupportedConversion(column, declared, actual string, cause error) *Error {
	return &Error{
		Kind:    ErrKindUnsupportedColumnType,
		Message: fmt.Sprintf("column '%s': cannot read %s as %s", column, actual, declared),
		Subject: column,
		Cause:   cause,
	}
}

// UnsupportedOperation uses the wording hosts show to users verbatim,
// e.g. "insert on foreign table is not supported".
func UnsupportedOperation(op string) *Error {
	return &Error{
		Kind:    ErrKindUnsupportedOperation,
		Message: fmt.Sprintf("%s on foreign table is not supported", op),
		Subject: op,
	}
}

func IndexOutOfRange(index, length int) *Error {
	return &Error{
		Kind:    ErrKindIndexOutOfRange,
		Message: fmt.Sprintf("index %d out of range for row of length %d", index, length),
	}
}

// --- Predicates ---

func IsMissingOption(err error) bool {
	return kindOf(err) == ErrKindMissingOption
}

// IsFetchFailed reports whether the source could not be read (network,
// non-success status, database or object store failure).
func IsFetchFailed(err error) bool {
	return kindOf(err) == ErrKindFetchFailed
}

// IsParseFailed reports whether the source returned a malformed body.
func IsParseFailed(err error) bool {
	return kindOf(err) == ErrKindParseFailed
}

func IsUnknownField(err error) bool {
	return kindOf(err) == ErrKindUnknownField
}

func IsTypeMismatch(err error) bool {
	return kindOf(err) == ErrKindTypeMismatch
}

func IsUnsupportedColumnType(err error) bool {
	return kindOf(err) == ErrKindUnsupportedColumnType
}

func IsUnsupportedOperation(err error) bool {
	return kindOf(err) == ErrKindUnsupportedOperation
}

func IsIndexOutOfRange(err error) bool {
	return kindOf(err) == ErrKindIndexOutOfRange
}

// IsInvalidState reports whether a lifecycle callback was issued out of order.
func IsInvalidState(err error) bool {
	return kindOf(err) == ErrKindInvalidState
}

// IsNotFound reports whether err represents a "not found" result
// (no rows, missing object, unknown table/bucket, …).
func IsNotFound(err error) bool {
	return kindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return kindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or auth failure.
func IsConnectionFailed(err error) bool {
	return kindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a backend operation failure.
func IsQueryFailed(err error) bool {
	return kindOf(err) == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller,
// including malformed option values.
func IsInvalidInput(err error) bool {
	return kindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return kindOf(err) == ErrKindPermissionDenied
}

// KindOf returns the ErrKind of the outermost *Error in the chain.
func KindOf(err error) ErrKind {
	return kindOf(err)
}

// kindOf extracts the ErrKind from any error in the chain.
func kindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}
