// =============================================================================
// SWIFT MT Engine - Sequence-Aware Message Parser
// =============================================================================
//
// The parser consumes block 4 occurrences according to a Schema and builds
// a Message.
//
// STATE:
//   - the occurrence list with a consumed flag per occurrence
//   - a window [lo, hi) the current schedule may consume from
//   - the duplicates toggle
//   - the instance receiving consumed fields
//
// WINDOWS:
//   Body fields before a repeating group may only consume occurrences up to
//   the group's first leading tag. An instance of a repeating group starts
//   at its leading tag and runs while the next tags belong to the group's
//   schedule. Detection is purely by tag identity. Within a window fields are
//   taken first-come-first-served in textual order, so their order inside
//   the window does not matter.
//
// FAILURES:
//   A missing mandatory field, malformed content or an occurrence left over
//   in a window is a fatal ParseError. Occurrences with unknown tags are
//   never errors: they stay in the window where they appear as passthrough.
//
// =============================================================================

package message

import (
	"errors"
	"fmt"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/envelope"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/field"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
)

type occurrence struct {
	envelope.Field

	value       field.Field
	owner       *Instance
	consumed    bool
	passthrough bool
}

// Parser consumes field occurrences for one message.
type Parser struct {
	messageType string
	occ         []occurrence
	lo, hi      int
	duplicates  bool
	target      *Instance
	body        *Instance
}

// NewParser prepares the occurrences of one message. Occurrences whose tag
// is neither built in nor registered become passthrough fields at once.
func NewParser(messageType string, fields []envelope.Field) *Parser {
	p := &Parser{
		messageType: messageType,
		occ:         make([]occurrence, len(fields)),
		hi:          len(fields),
		body:        newInstance(),
	}
	p.target = p.body
	for i, f := range fields {
		p.occ[i].Field = f
		if !field.Known(f.Tag) {
			p.occ[i].value = &field.Unknown{RawTag: f.Tag, Content: f.Content}
			p.occ[i].consumed = true
			p.occ[i].passthrough = true
		}
	}
	return p
}

// WithDuplicates switches between single-slot and FIFO consumption of
// repeated tags.
func (p *Parser) WithDuplicates(on bool) *Parser {
	p.duplicates = on
	return p
}

// =============================================================================
// FIELD OPERATIONS
// =============================================================================

// Mandatory consumes the next occurrence of a normalized tag.
func (p *Parser) Mandatory(tag string) (field.Field, error) {
	return p.take(M(tag))
}

// Optional consumes the next occurrence of a normalized tag, returning nil
// when there is none.
func (p *Parser) Optional(tag string) (field.Field, error) {
	return p.take(O(tag))
}

// Variant consumes the next occurrence of a lettered field. The option
// letter of the raw tag selects the layout; a letterless occurrence is
// resolved by trying the allowed options in priority order.
func (p *Parser) Variant(base string, options ...string) (field.Field, error) {
	return p.take(MV(base, options...))
}

// OptionalVariant is Variant returning nil when there is no occurrence.
func (p *Parser) OptionalVariant(base string, options ...string) (field.Field, error) {
	return p.take(OV(base, options...))
}

// Repeated consumes every occurrence of a normalized tag in the window when
// duplicates are enabled, and at most one otherwise.
func (p *Parser) Repeated(tag string) ([]field.Field, error) {
	return p.takeAll(R(tag))
}

// Detect reports, without consuming, whether the next unconsumed occurrence
// in the window has the normalized tag.
func (p *Parser) Detect(tag string) bool {
	i := p.next(p.lo)
	return i < p.hi && p.occ[i].Normalized == tag
}

// Complete fails when any occurrence has not been consumed.
func (p *Parser) Complete() error {
	return p.leftover(0, len(p.occ))
}

func (p *Parser) take(e Entry) (field.Field, error) {
	i := p.find(e)
	if i < 0 {
		if e.Mandatory {
			return nil, p.errorf(types.MissingMandatoryField, displayTag(e), "not found")
		}
		return nil, nil
	}
	return p.consume(i, e)
}

func (p *Parser) takeAll(e Entry) ([]field.Field, error) {
	var out []field.Field
	for {
		i := p.find(e)
		if i < 0 {
			break
		}
		f, err := p.consume(i, e)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
		if !p.duplicates {
			break
		}
	}
	if e.Mandatory && len(out) == 0 {
		return nil, p.errorf(types.MissingMandatoryField, displayTag(e), "not found")
	}
	return out, nil
}

func (p *Parser) find(e Entry) int {
	for i := p.lo; i < p.hi; i++ {
		if !p.occ[i].consumed && e.matches(p.occ[i].Field) {
			return i
		}
	}
	return -1
}

func (p *Parser) consume(i int, e Entry) (field.Field, error) {
	o := &p.occ[i]
	var (
		f   field.Field
		err error
	)
	if e.needsResolve(o.Field) {
		f, err = field.Resolve(e.Tag, o.Content, e.Options...)
	} else {
		f, err = field.Parse(o.Tag, o.Content)
	}
	if err != nil {
		var pe *types.ParseError
		if errors.As(err, &pe) && pe.MessageType == "" {
			pe.MessageType = p.messageType
		}
		return nil, err
	}
	o.value, o.owner, o.consumed = f, p.target, true
	return f, nil
}

// next returns the first unconsumed occurrence at or after from.
func (p *Parser) next(from int) int {
	i := from
	for i < len(p.occ) && p.occ[i].consumed {
		i++
	}
	return i
}

// leftover fails on the first unconsumed occurrence in [lo, hi). Content
// that does not parse at all is reported as a format error.
func (p *Parser) leftover(lo, hi int) error {
	for i := lo; i < hi; i++ {
		o := p.occ[i]
		if o.consumed {
			continue
		}
		if _, err := field.Parse(o.Tag, o.Content); err != nil {
			var pe *types.ParseError
			if errors.As(err, &pe) && pe.MessageType == "" {
				pe.MessageType = p.messageType
			}
			return err
		}
		return p.errorf(types.UnparsedContent, o.Tag,
			"occurrence %d is not part of the message schedule", i+1)
	}
	return nil
}

func (p *Parser) errorf(kind types.ErrorKind, tag, format string, args ...interface{}) error {
	return &types.ParseError{
		Kind:        kind,
		MessageType: p.messageType,
		Tag:         tag,
		Detail:      fmt.Sprintf(format, args...),
	}
}

func displayTag(e Entry) string {
	if e.Variant {
		return e.Tag + "a"
	}
	return e.Tag
}

// =============================================================================
// SCHEDULE INTERPRETER
// =============================================================================

// run interprets a schema's entries over the whole occurrence list.
func (p *Parser) run(entries []Entry) ([]*Sequence, error) {
	var sequences []*Sequence
	pos := 0

	for i := 0; i < len(entries); {
		if entries[i].Seq == nil {
			j := i
			for j < len(entries) && entries[j].Seq == nil {
				j++
			}
			end := len(p.occ)
			if j < len(entries) {
				end = p.segmentEnd(entries[i:j], entries[j:], pos)
			}
			if err := p.fill(entries[i:j], p.body, pos, end); err != nil {
				return nil, err
			}
			pos, i = end, j
			continue
		}

		spec := entries[i].Seq
		seq := &Sequence{Name: spec.Name, LeadingTag: spec.LeadingTag}
		for p.duplicates || len(seq.Instances) == 0 {
			p.lo, p.hi = pos, len(p.occ)
			if !p.Detect(spec.LeadingTag) {
				break
			}
			start := p.next(pos)
			end := p.instanceEnd(spec, start)
			inst := newInstance()
			if err := p.fill(spec.Entries, inst, pos, end); err != nil {
				return nil, err
			}
			seq.Instances = append(seq.Instances, inst)
			pos = end
		}
		if len(seq.Instances) < spec.Min {
			return nil, p.errorf(types.MissingMandatoryField, spec.LeadingTag,
				"sequence %s needs at least %d instance(s), found %d", spec.Name, spec.Min, len(seq.Instances))
		}
		sequences = append(sequences, seq)
		i++
	}

	p.lo, p.hi, p.target = pos, len(p.occ), p.body
	p.adopt(pos, len(p.occ), p.body)
	if err := p.Complete(); err != nil {
		return nil, err
	}
	return sequences, nil
}

// fill consumes entries from the window [lo, hi) into inst and fails on
// anything left over in the window.
func (p *Parser) fill(entries []Entry, inst *Instance, lo, hi int) error {
	p.lo, p.hi, p.target = lo, hi, inst
	for _, e := range entries {
		var err error
		if e.Repeat {
			_, err = p.takeAll(e)
		} else {
			_, err = p.take(e)
		}
		if err != nil {
			return err
		}
	}
	if err := p.leftover(lo, hi); err != nil {
		return err
	}
	p.adopt(lo, hi, inst)
	return nil
}

// adopt hands passthrough occurrences of a window to its instance.
func (p *Parser) adopt(lo, hi int, inst *Instance) {
	for i := lo; i < hi; i++ {
		if p.occ[i].passthrough && p.occ[i].owner == nil {
			p.occ[i].owner = inst
		}
	}
}

// segmentEnd returns where a body segment followed by a repeating group
// stops: at the group's first leading tag, or at the first occurrence only
// a later body segment can take when the group is absent.
func (p *Parser) segmentEnd(current, following []Entry, from int) int {
	spec := following[0].Seq
	var later []Entry
	for _, e := range following[1:] {
		if e.Seq == nil {
			later = append(later, e)
		}
	}
	for i := from; i < len(p.occ); i++ {
		o := p.occ[i]
		if o.consumed {
			continue
		}
		if spec.leads(o.Field) || (matchesAny(later, o.Field) && !matchesAny(current, o.Field)) {
			return i
		}
	}
	return len(p.occ)
}

func matchesAny(entries []Entry, occ envelope.Field) bool {
	for _, e := range entries {
		if e.matches(occ) {
			return true
		}
	}
	return false
}

// instanceEnd returns the end of the instance starting at start: the run of
// occurrences that belong to the group, up to the next leading tag.
func (p *Parser) instanceEnd(spec *SequenceSpec, start int) int {
	i := start + 1
	for i < len(p.occ) {
		o := p.occ[i]
		if !o.passthrough && (spec.leads(o.Field) || !spec.belongs(o.Field)) {
			break
		}
		i++
	}
	return i
}

// assemble builds the flattened views once every occurrence is owned.
func (p *Parser) assemble(m *Message) {
	m.Fields = make(map[string][]field.Field)
	m.FieldOrder = make([]string, 0, len(p.occ))
	m.RawTags = make([]string, 0, len(p.occ))
	for _, o := range p.occ {
		m.FieldOrder = append(m.FieldOrder, o.Normalized)
		m.RawTags = append(m.RawTags, o.Tag)
		m.Fields[o.Normalized] = append(m.Fields[o.Normalized], o.value)
		owner := o.owner
		if owner == nil {
			owner = p.body
		}
		owner.add(o.Normalized, o.value)
	}
	m.Body = p.body
}
