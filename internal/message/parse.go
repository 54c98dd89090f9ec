package message

import (
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/envelope"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
)

// Parse tokenizes a raw message and parses it with the schema of the type
// named in its application header.
func Parse(raw string) (*Message, error) {
	blocks, fields, err := envelope.Tokenize(raw)
	if err != nil {
		return nil, err
	}
	m, err := parseHeaders(blocks)
	if err != nil {
		return nil, err
	}
	schema, ok := Lookup(m.Type)
	if !ok {
		return nil, &types.ParseError{
			Kind:        types.UnsupportedMessageType,
			MessageType: m.Type,
			Detail:      "no schema for this message type",
		}
	}
	return parseBody(m, schema, fields)
}

// ParseAs is Parse for callers expecting one message type.
func ParseAs(raw, messageType string) (*Message, error) {
	blocks, fields, err := envelope.Tokenize(raw)
	if err != nil {
		return nil, err
	}
	m, err := parseHeaders(blocks)
	if err != nil {
		return nil, err
	}
	if m.Type != messageType {
		return nil, &types.ParseError{
			Kind:        types.WrongMessageType,
			MessageType: m.Type,
			Detail:      "expected MT" + messageType,
		}
	}
	schema, ok := Lookup(messageType)
	if !ok {
		return nil, &types.ParseError{Kind: types.UnsupportedMessageType, MessageType: messageType}
	}
	return parseBody(m, schema, fields)
}

// ParseWith parses a raw message with a caller supplied schema. The header
// message type must match the schema's.
func ParseWith(raw string, schema *Schema) (*Message, error) {
	blocks, fields, err := envelope.Tokenize(raw)
	if err != nil {
		return nil, err
	}
	m, err := parseHeaders(blocks)
	if err != nil {
		return nil, err
	}
	if schema.Type != "" && m.Type != schema.Type {
		return nil, &types.ParseError{
			Kind:        types.WrongMessageType,
			MessageType: m.Type,
			Detail:      "expected MT" + schema.Type,
		}
	}
	return parseBody(m, schema, fields)
}

func parseHeaders(b *envelope.Blocks) (*Message, error) {
	basic, err := parseBasicHeader(b.Basic)
	if err != nil {
		return nil, err
	}
	app, err := parseApplicationHeader(b.Application)
	if err != nil {
		return nil, err
	}
	m := &Message{
		Type:        app.MessageType,
		Basic:       basic,
		Application: app,
		Trailer:     b.Trailer,
		HasTrailer:  b.HasTrailer,
		lineEnding:  b.LineEnding,
		inlineText:  !b.TextOpensLine,
		openText:    !b.TextClosesLine,
	}
	if b.HasUser {
		if m.User, err = parseUserHeader(b.User); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func parseBody(m *Message, schema *Schema, fields []envelope.Field) (*Message, error) {
	p := NewParser(m.Type, fields).WithDuplicates(schema.Duplicates)
	seqs, err := p.run(schema.Entries)
	if err != nil {
		return nil, err
	}
	m.Sequences = seqs
	p.assemble(m)
	return m, nil
}
