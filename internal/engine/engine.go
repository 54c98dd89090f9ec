// =============================================================================
// SWIFT MT Engine - Entry Points
// =============================================================================
//
// The three operations callers need:
//   - Parse: raw wire text -> typed, order-preserving Message
//   - Serialize: Message -> wire text, byte-faithful for parsed input
//   - Validate: Message -> network rule violations
//
// Parse failures are structural (*types.ParseError). Validation never fails;
// it returns the violations found, empty when the message is valid.
//
// =============================================================================

package engine

import (
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/validation"
)

// Parse parses one raw SWIFT MT message. The message type is read from the
// application header.
func Parse(raw string) (*message.Message, error) {
	return message.Parse(raw)
}

// ParseAs parses a raw message that must be of the given type, e.g. "103".
func ParseAs(raw, messageType string) (*message.Message, error) {
	return message.ParseAs(raw, messageType)
}

// Serialize renders a message back to wire text.
func Serialize(m *message.Message) string {
	return m.Serialize()
}

// Validate runs the built-in rules of the message's type. With
// stopOnFirstError only the violations of the first failing rule are
// returned.
func Validate(m *message.Message, stopOnFirstError bool) []validation.ValidationError {
	return validation.Validate(m, stopOnFirstError)
}

// ValidateWith runs the built-in rules with explicit options.
func ValidateWith(m *message.Message, opts validation.Options) *validation.Result {
	return validation.Default.Check(m, opts)
}

// Process parses raw and validates the result in one call. A structural
// failure is returned as the error and no validation runs.
func Process(raw string, opts validation.Options) (*message.Message, *validation.Result, error) {
	m, err := Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	return m, ValidateWith(m, opts), nil
}
