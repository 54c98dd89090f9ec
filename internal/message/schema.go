package message

import (
	"sort"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/envelope"
)

// Schema declares the field schedule of one message type. A single
// interpreter walks every schema; message types differ only in data.
type Schema struct {
	Type string
	Name string

	// Duplicates enables FIFO consumption of repeated tags and more than one
	// instance per repeating group.
	Duplicates bool

	Entries []Entry
}

// Entry is one position of a schedule: a field or a repeating group.
type Entry struct {
	// Tag is a normalized tag, or the numeric base of a lettered field.
	Tag string

	// Options lists the allowed option letters of a lettered field.
	Options []string

	Variant   bool
	Mandatory bool
	Repeat    bool

	// Seq is set for a repeating group.
	Seq *SequenceSpec
}

// SequenceSpec declares a repeating group. Instances start at LeadingTag and
// run while the following tags belong to Entries.
type SequenceSpec struct {
	Name       string
	LeadingTag string
	Min        int
	Entries    []Entry
}

// M declares a mandatory field.
func M(tag string) Entry { return Entry{Tag: tag, Mandatory: true} }

// O declares an optional field.
func O(tag string) Entry { return Entry{Tag: tag} }

// R declares an optional field that may repeat.
func R(tag string) Entry { return Entry{Tag: tag, Repeat: true} }

// MV declares a mandatory lettered field.
func MV(base string, options ...string) Entry {
	return Entry{Tag: base, Options: options, Variant: true, Mandatory: true}
}

// OV declares an optional lettered field.
func OV(base string, options ...string) Entry {
	return Entry{Tag: base, Options: options, Variant: true}
}

// Seq declares a repeating group that must occur at least min times.
func Seq(name, leading string, min int, entries ...Entry) Entry {
	return Entry{Seq: &SequenceSpec{Name: name, LeadingTag: leading, Min: min, Entries: entries}}
}

// matches reports whether an occurrence can fill the entry. A lettered field
// written without its letter matches when the letterless option is not
// allowed; its option is then resolved from the content.
func (e Entry) matches(occ envelope.Field) bool {
	if !e.Variant {
		return occ.Normalized == e.Tag
	}
	if envelope.Base(occ.Tag) != e.Tag {
		return false
	}
	opt := envelope.Option(occ.Tag)
	if len(e.Options) == 0 || contains(e.Options, opt) {
		return true
	}
	return opt == "" && !contains(e.Options, "")
}

// needsResolve reports whether the occurrence carries no usable option hint.
func (e Entry) needsResolve(occ envelope.Field) bool {
	return e.Variant && envelope.Option(occ.Tag) == "" && !contains(e.Options, "") && len(e.Options) > 0
}

func (s *SequenceSpec) belongs(occ envelope.Field) bool {
	for _, e := range s.Entries {
		if e.matches(occ) {
			return true
		}
	}
	return false
}

func (s *SequenceSpec) leads(occ envelope.Field) bool {
	return occ.Normalized == s.LeadingTag
}

// Tags lists the normalized tags or bases a schema mentions, sorted.
func (s *Schema) Tags() []string {
	seen := make(map[string]bool)
	var walk func([]Entry)
	walk = func(entries []Entry) {
		for _, e := range entries {
			if e.Seq != nil {
				walk(e.Seq.Entries)
				continue
			}
			seen[e.Tag] = true
		}
	}
	walk(s.Entries)

	tags := make([]string, 0, len(seen))
	for t := range seen {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
