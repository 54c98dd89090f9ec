// =============================================================================
// SWIFT MT Engine - Message Model
// =============================================================================
//
// A Message is the typed, order-preserving result of parsing one wire
// message.
//
// STRUCTURE:
//   - Headers: parsed blocks 1, 2, 3 and the raw trailer.
//   - FieldOrder: normalized tag of every block 4 occurrence, in textual
//     order, duplicates included.
//   - Fields: every typed field keyed by normalized tag, in textual order.
//   - Body: the fields outside repeating groups.
//   - Sequences: repeating groups, each a list of instances with their own
//     order and field map.
//
// A Message is immutable once parsing completes; validation only reads it.
//
// =============================================================================

package message

import (
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/field"
)

// Message is a parsed SWIFT MT message.
type Message struct {
	// Type is the three digit message type, e.g. "103".
	Type string

	Basic       BasicHeader
	Application ApplicationHeader
	User        UserHeader

	Trailer    string
	HasTrailer bool

	// FieldOrder holds one normalized tag per block 4 occurrence.
	FieldOrder []string

	// RawTags holds the tag of each occurrence as written on the wire,
	// parallel to FieldOrder. A letterless variant stays letterless here
	// even though its typed value carries the resolved option.
	RawTags []string

	// Fields holds every occurrence keyed by normalized tag.
	Fields map[string][]field.Field

	// Body holds the fields that are not part of a repeating group.
	Body *Instance

	// Sequences holds the repeating groups in schema order.
	Sequences []*Sequence

	lineEnding string

	// inlineText and openText record a block 4 written without the line
	// break after "{4:" or before "-}".
	inlineText bool
	openText   bool
}

// Get returns the first field with the normalized tag, or nil.
func (m *Message) Get(tag string) field.Field {
	if fs := m.Fields[tag]; len(fs) > 0 {
		return fs[0]
	}
	return nil
}

// All returns every field with the normalized tag.
func (m *Message) All(tag string) []field.Field { return m.Fields[tag] }

// Has reports whether the message holds the normalized tag anywhere.
func (m *Message) Has(tag string) bool { return len(m.Fields[tag]) > 0 }

// Sequence returns the named repeating group, or nil.
func (m *Message) Sequence(name string) *Sequence {
	for _, s := range m.Sequences {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// Reference returns the content of field 20, the sender's reference.
func (m *Message) Reference() string {
	if f := m.Body.Get("20"); f != nil {
		return f.Serialize()
	}
	if f := m.Get("20"); f != nil {
		return f.Serialize()
	}
	return ""
}

// SenderBIC returns the sending institution's BIC from the headers.
func (m *Message) SenderBIC() string {
	if m.Application.IsInput() {
		return ltToBIC(m.Basic.LTAddress)
	}
	if len(m.Application.MIR) == 28 {
		return ltToBIC(m.Application.MIR[6:18])
	}
	return ""
}

// ReceiverBIC returns the receiving institution's BIC from the headers.
func (m *Message) ReceiverBIC() string {
	if m.Application.IsInput() {
		return ltToBIC(m.Application.Address)
	}
	return ltToBIC(m.Basic.LTAddress)
}

// UETR returns the unique end-to-end transaction reference of block 3.
func (m *Message) UETR() (string, bool) {
	return m.User.Get("121")
}

// =============================================================================
// INSTANCES AND SEQUENCES
// =============================================================================

// Instance is a bundle of fields: the message body or one occurrence of a
// repeating group.
type Instance struct {
	Order  []string
	Fields map[string][]field.Field
}

func newInstance() *Instance {
	return &Instance{Fields: make(map[string][]field.Field)}
}

func (i *Instance) add(tag string, f field.Field) {
	i.Order = append(i.Order, tag)
	i.Fields[tag] = append(i.Fields[tag], f)
}

// Get returns the first field with the normalized tag, or nil.
func (i *Instance) Get(tag string) field.Field {
	if fs := i.Fields[tag]; len(fs) > 0 {
		return fs[0]
	}
	return nil
}

// All returns every field with the normalized tag.
func (i *Instance) All(tag string) []field.Field { return i.Fields[tag] }

// Has reports whether the instance holds the normalized tag.
func (i *Instance) Has(tag string) bool { return len(i.Fields[tag]) > 0 }

// WithOption returns the fields with the normalized tag whose option letter
// is one of options.
func (i *Instance) WithOption(tag string, options ...string) []field.Field {
	var out []field.Field
	for _, f := range i.Fields[tag] {
		opt := field.Option(f)
		for _, o := range options {
			if opt == o {
				out = append(out, f)
				break
			}
		}
	}
	return out
}

// Sequence is a repeating group.
type Sequence struct {
	Name       string
	LeadingTag string
	Instances  []*Instance
}

// Len returns the number of instances.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Instances)
}
