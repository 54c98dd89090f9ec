// =============================================================================
// SWIFT MT Engine - Field Format Contract
// =============================================================================
//
// This package turns field content into typed values and back.
//
// CONTRACT:
//   - Parse(tag, content) builds the typed value and enforces syntax
//     (lengths, character classes, numeric ranges).
//   - Field.Serialize() writes the wire content back; amounts and other
//     literals are emitted as they were read.
//   - Validator.Validate() enforces content rules (BIC structure, ISO codes,
//     currency decimals) and is independent of parsing.
//
// DISPATCH:
//   Built-in tags resolve through a fixed table of concrete types. Fields
//   with lettered options (50a, 52a, ... 59a, 60a, 62a) dispatch on the
//   option letter of the raw tag. Tags the table does not know are looked up
//   in the extension Registry and otherwise become an Unknown passthrough.
//
// =============================================================================

package field

import (
	"fmt"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/envelope"
)

// Field is a typed field value.
type Field interface {
	// Tag returns the raw tag including the option letter ("50K").
	Tag() string

	// Serialize returns the wire content, without the ":TAG:" marker.
	Serialize() string
}

// Validator is implemented by fields with content rules beyond syntax.
type Validator interface {
	Validate() error
}

// ContentError is a content-level violation found by Validate. Code is the
// network validation code of the violated rule.
type ContentError struct {
	Code    string
	Tag     string
	Value   string
	Message string
}

// Error implements the error interface.
func (e *ContentError) Error() string {
	return fmt.Sprintf("%s field %s: %s (value: %q)", e.Code, e.Tag, e.Message, e.Value)
}

func contentError(code string, f Field, format string, args ...interface{}) *ContentError {
	return &ContentError{
		Code:    code,
		Tag:     f.Tag(),
		Value:   f.Serialize(),
		Message: fmt.Sprintf(format, args...),
	}
}

// Option returns the option letter of a field's tag.
func Option(f Field) string {
	return envelope.Option(f.Tag())
}

// =============================================================================
// UNKNOWN
// =============================================================================

// Unknown carries a field whose tag is neither built in nor registered. It
// round-trips the content untouched.
type Unknown struct {
	RawTag  string
	Content string
}

func (f *Unknown) Tag() string       { return f.RawTag }
func (f *Unknown) Serialize() string { return f.Content }
