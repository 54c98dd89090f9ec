package converter

import (
	"path/filepath"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/validation"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/xmlwriter"
)

// Header keys accepted by export rules besides field tags.
const (
	KeySender    = "sender"
	KeyReceiver  = "receiver"
	KeyReference = "reference"
	KeyType      = "type"
)

func (c *Converter) buildDocument(messages []parsed, failures []failed) (*xmlwriter.Document, error) {
	doc := &xmlwriter.Document{
		Source:  filepath.Base(c.inputPath),
		Profile: c.profile.Code,
	}
	for _, sf := range c.profile.StaticFields {
		doc.Meta = append(doc.Meta, xmlwriter.Meta{Name: sf.Name, Value: sf.Value})
	}

	for _, p := range messages {
		xm, err := ExportMessage(p.index, p.msg, p.result, c.transformer)
		if err != nil {
			return nil, err
		}
		doc.Messages = append(doc.Messages, xm)
	}
	for _, f := range failures {
		doc.Failures = append(doc.Failures, xmlwriter.Failure{
			Index:  f.index,
			Line:   f.entry.Line,
			Kind:   failureKind(f.err),
			Detail: f.err.Error(),
		})
	}
	return doc, nil
}

// ExportMessage builds the XML view of a parsed message. res may be nil for
// a message that was not validated.
func ExportMessage(index int, m *message.Message, res *validation.Result, t *Transformer) (xmlwriter.Message, error) {
	values := exportValues(m)
	apply := func(key, value string) (string, error) {
		if t == nil {
			return value, nil
		}
		return t.Transform(key, value, values)
	}

	xm := xmlwriter.Message{
		Index: index,
		Type:  m.Type,
		Valid: res == nil || res.Valid(),
	}

	var err error
	if xm.Header.Sender, err = apply(KeySender, values[KeySender]); err != nil {
		return xm, err
	}
	if xm.Header.Receiver, err = apply(KeyReceiver, values[KeyReceiver]); err != nil {
		return xm, err
	}
	if xm.Header.Reference, err = apply(KeyReference, values[KeyReference]); err != nil {
		return xm, err
	}
	xm.Header.Direction = m.Application.Direction
	if uetr, ok := m.UETR(); ok {
		xm.Header.UETR = uetr
	}

	if xm.Body, err = exportInstance(m.Body, apply); err != nil {
		return xm, err
	}
	for _, seq := range m.Sequences {
		for i, inst := range seq.Instances {
			fields, err := exportInstance(inst, apply)
			if err != nil {
				return xm, err
			}
			xm.Sequences = append(xm.Sequences, xmlwriter.Sequence{Name: seq.Name, Index: i + 1, Fields: fields})
		}
	}

	if res != nil {
		for _, e := range res.Errors {
			xm.Errors = append(xm.Errors, xmlwriter.Error{Code: e.Code, Rule: e.RuleID, Tag: e.Tag, Message: e.Message})
		}
	}
	return xm, nil
}

// exportInstance lists the fields of an instance in textual order.
func exportInstance(inst *message.Instance, apply func(key, value string) (string, error)) ([]xmlwriter.Field, error) {
	if inst == nil {
		return nil, nil
	}
	seen := make(map[string]int, len(inst.Fields))
	out := make([]xmlwriter.Field, 0, len(inst.Order))
	for _, tag := range inst.Order {
		n := seen[tag]
		seen[tag]++
		fs := inst.Fields[tag]
		if n >= len(fs) {
			continue
		}
		value, err := apply(tag, fs[n].Serialize())
		if err != nil {
			return nil, err
		}
		out = append(out, xmlwriter.Field{Tag: fs[n].Tag(), Value: value})
	}
	return out, nil
}

// exportValues holds the untransformed header values and the first
// occurrence of every tag, for if_empty_use_field fallbacks.
func exportValues(m *message.Message) map[string]string {
	values := map[string]string{
		KeySender:    m.SenderBIC(),
		KeyReceiver:  m.ReceiverBIC(),
		KeyReference: m.Reference(),
		KeyType:      m.Type,
	}
	for tag, fs := range m.Fields {
		if len(fs) > 0 {
			values[tag] = fs[0].Serialize()
		}
	}
	return values
}
