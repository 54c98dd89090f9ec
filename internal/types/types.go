// =============================================================================
// SWIFT MT Engine - Shared Types
// =============================================================================
//
// This package contains the error model shared across the engine packages to
// avoid import cycles. Types defined here are used by:
//   - envelope   (block structure errors)
//   - field      (field format errors)
//   - message    (sequence parser errors)
//   - xmlwriter, report, server (conversion errors)
//
// ERROR FAMILIES:
//   1. Structural errors (ParseError) are fatal and halt parsing.
//   2. Validation errors live in the validation package and never surface
//      as a Go error from parsing.
//   3. Conversion errors (ConversionError) wrap encoding and decoding
//      failures of the output formats, so callers can tell bad wire text
//      from a bad document.
//
// =============================================================================

package types

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// STRUCTURAL ERRORS
// =============================================================================

// ErrorKind classifies a structural parse failure.
type ErrorKind int

const (
	// InvalidBlockStructure means the envelope is missing a mandatory block
	// or its braces do not balance.
	InvalidBlockStructure ErrorKind = iota + 1

	// InvalidFieldFormat means a field's content does not match its format.
	InvalidFieldFormat

	// MissingMandatoryField means a mandatory field or sequence is absent.
	MissingMandatoryField

	// WrongMessageType means the message is not of the requested type.
	WrongMessageType

	// UnsupportedMessageType means no schema exists for the message type.
	UnsupportedMessageType

	// UnparsedContent means block 4 holds occurrences no schema entry consumed.
	UnparsedContent
)

// Sentinel errors, one per kind, so callers can use errors.Is.
var (
	ErrInvalidBlockStructure  = errors.New("swiftmt: invalid block structure")
	ErrInvalidFieldFormat     = errors.New("swiftmt: invalid field format")
	ErrMissingMandatoryField  = errors.New("swiftmt: missing mandatory field")
	ErrWrongMessageType       = errors.New("swiftmt: wrong message type")
	ErrUnsupportedMessageType = errors.New("swiftmt: unsupported message type")
	ErrUnparsedContent        = errors.New("swiftmt: unparsed content")
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case InvalidBlockStructure:
		return "InvalidBlockStructure"
	case InvalidFieldFormat:
		return "InvalidFieldFormat"
	case MissingMandatoryField:
		return "MissingMandatoryField"
	case WrongMessageType:
		return "WrongMessageType"
	case UnsupportedMessageType:
		return "UnsupportedMessageType"
	case UnparsedContent:
		return "UnparsedContent"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case InvalidBlockStructure:
		return ErrInvalidBlockStructure
	case InvalidFieldFormat:
		return ErrInvalidFieldFormat
	case MissingMandatoryField:
		return ErrMissingMandatoryField
	case WrongMessageType:
		return ErrWrongMessageType
	case UnsupportedMessageType:
		return ErrUnsupportedMessageType
	case UnparsedContent:
		return ErrUnparsedContent
	default:
		return nil
	}
}

// ParseError is a fatal structural error raised while parsing a message.
type ParseError struct {
	// Kind classifies the failure.
	Kind ErrorKind

	// MessageType is the MT number ("103"), empty when not yet known.
	MessageType string

	// Tag is the raw field tag involved, empty for envelope errors.
	Tag string

	// Detail is a human-readable description.
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.MessageType != "" {
		b.WriteString(" MT")
		b.WriteString(e.MessageType)
	}
	if e.Tag != "" {
		b.WriteString(" field ")
		b.WriteString(e.Tag)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *ParseError) Unwrap() error { return e.Err }

// Is matches the sentinel error of the kind.
func (e *ParseError) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// NewParseError builds a ParseError without an underlying cause.
func NewParseError(kind ErrorKind, tag, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Tag: tag, Detail: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a structural error anywhere in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

// =============================================================================
// CONVERSION ERRORS
// =============================================================================

// ConversionError wraps an encoding or decoding failure of an output or
// request document (XML, XLSX, JSON).
type ConversionError struct {
	// Format is the document format, e.g. "xml", "xlsx", "json".
	Format string

	// Op is the operation that failed, e.g. "encode", "decode", "write".
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ConversionError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Format, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ConversionError) Unwrap() error { return e.Err }

// IsConversion reports whether err is a conversion error.
func IsConversion(err error) bool {
	var ce *ConversionError
	return errors.As(err, &ce)
}
