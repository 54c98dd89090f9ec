package message

import (
	"strings"
)

// Serialize writes the message back to wire format. Fields are emitted in
// FieldOrder under the tag they were written with, so a letterless variant
// stays letterless.
func (m *Message) Serialize() string {
	le := m.lineEnding
	if le == "" {
		le = "\n"
	}

	var b strings.Builder
	b.WriteString("{1:")
	b.WriteString(m.Basic.Raw)
	b.WriteString("}{2:")
	b.WriteString(m.Application.Raw)
	b.WriteString("}")
	if m.User.Present {
		b.WriteString("{3:")
		b.WriteString(m.User.Raw)
		b.WriteString("}")
	}

	b.WriteString("{4:")
	if !m.inlineText {
		b.WriteString(le)
	}
	next := make(map[string]int, len(m.Fields))
	for i, tag := range m.FieldOrder {
		f := m.Fields[tag][next[tag]]
		next[tag]++

		if i > 0 {
			b.WriteString(le)
		}
		b.WriteString(":")
		b.WriteString(m.rawTag(i, f.Tag()))
		b.WriteString(":")
		b.WriteString(strings.ReplaceAll(f.Serialize(), "\n", le))
	}
	if !m.openText {
		b.WriteString(le)
	}
	b.WriteString("-}")

	if m.HasTrailer {
		b.WriteString("{5:")
		b.WriteString(m.Trailer)
		b.WriteString("}")
	}
	return b.String()
}

func (m *Message) rawTag(i int, fallback string) string {
	if i < len(m.RawTags) && m.RawTags[i] != "" {
		return m.RawTags[i]
	}
	return fallback
}
