package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/field"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/format"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
)

// =============================================================================
// BUNDLES AND CONDITIONS
// =============================================================================

// bundle is one field bundle a rule looks at: the body or one instance of a
// sequence.
type bundle struct {
	seq   string
	index int
	in    *message.Instance
}

// bundles returns the body when seq is empty, otherwise every instance of
// the named sequence.
func bundles(m *message.Message, seq string) []bundle {
	if seq == "" {
		return []bundle{{in: m.Body}}
	}
	s := m.Sequence(seq)
	if s == nil {
		return nil
	}
	out := make([]bundle, len(s.Instances))
	for i, in := range s.Instances {
		out[i] = bundle{seq: seq, index: i + 1, in: in}
	}
	return out
}

func (b bundle) violation(tag, msg string, args ...interface{}) ValidationError {
	v := ValidationError{
		Tag:      tag,
		Message:  fmt.Sprintf(msg, args...),
		Sequence: b.seq,
		Instance: b.index,
	}
	if fs := pick(b.in, tag); len(fs) > 0 {
		v.Value = fs[0].Serialize()
	}
	return v
}

// pick returns the fields of a bundle with the normalized tag, restricted to
// the option letters when any are given.
func pick(in *message.Instance, tag string, options ...string) []field.Field {
	if in == nil {
		return nil
	}
	if len(options) == 0 {
		return in.All(tag)
	}
	return in.WithOption(tag, options...)
}

// Condition is a predicate over one field bundle.
type Condition func(in *message.Instance) bool

// Present holds when the bundle has the tag, in one of the options if given.
func Present(tag string, options ...string) Condition {
	return func(in *message.Instance) bool { return len(pick(in, tag, options...)) > 0 }
}

// Absent is the negation of Present.
func Absent(tag string, options ...string) Condition {
	return Not(Present(tag, options...))
}

// ValueIn holds when the first field with the tag has one of the values.
func ValueIn(tag string, values ...string) Condition {
	return func(in *message.Instance) bool {
		fs := pick(in, tag)
		if len(fs) == 0 {
			return false
		}
		v := fs[0].Serialize()
		for _, want := range values {
			if v == want {
				return true
			}
		}
		return false
	}
}

// HasCode holds when any instruction code field with the tag carries one of
// the codes.
func HasCode(tag string, codes ...string) Condition {
	return func(in *message.Instance) bool {
		for _, f := range pick(in, tag) {
			ic, ok := f.(*field.InstructionCode)
			if !ok {
				continue
			}
			for _, c := range codes {
				if ic.Code == c {
					return true
				}
			}
		}
		return false
	}
}

// Not negates a condition.
func Not(c Condition) Condition {
	return func(in *message.Instance) bool { return !c(in) }
}

// All holds when every condition holds.
func All(cs ...Condition) Condition {
	return func(in *message.Instance) bool {
		for _, c := range cs {
			if !c(in) {
				return false
			}
		}
		return true
	}
}

// Any holds when at least one condition holds.
func Any(cs ...Condition) Condition {
	return func(in *message.Instance) bool {
		for _, c := range cs {
			if c(in) {
				return true
			}
		}
		return false
	}
}

// =============================================================================
// RULE SHAPES
// =============================================================================

// ConditionalPresence checks, in every bundle of seq where when holds, that
// then holds as well. tag names the field reported on violation.
func ConditionalPresence(seq string, when, then Condition, tag, msg string) Check {
	return func(m *message.Message) []ValidationError {
		var out []ValidationError
		for _, b := range bundles(m, seq) {
			if when(b.in) && !then(b.in) {
				out = append(out, b.violation(tag, "%s", msg))
			}
		}
		return out
	}
}

// Multiplicity selects the Exclusive variant.
type Multiplicity int

const (
	// ExactlyOne: in the body or in every instance, never both, never neither.
	ExactlyOne Multiplicity = iota

	// AtMostOne: in the body, or in every instance, or nowhere.
	AtMostOne
)

// Exclusive checks where a field may appear between the body and the
// instances of seq.
func Exclusive(seq string, mode Multiplicity, tag string, options ...string) Check {
	display := tag
	if len(options) > 0 {
		display = tag + "a"
	}
	return func(m *message.Message) []ValidationError {
		present := Present(tag, options...)
		inBody := present(m.Body)
		instances := bundles(m, seq)

		var with, without []bundle
		for _, b := range instances {
			if present(b.in) {
				with = append(with, b)
			} else {
				without = append(without, b)
			}
		}

		var out []ValidationError
		switch {
		case inBody && len(with) > 0:
			for _, b := range with {
				out = append(out, b.violation(tag, "field %s is present in the general part and in sequence %s", display, seq))
			}
		case inBody:
		case mode == ExactlyOne && len(instances) == 0:
			out = append(out, ValidationError{Tag: tag, Message: fmt.Sprintf("field %s is missing", display)})
		case mode == ExactlyOne || len(with) > 0:
			for _, b := range without {
				out = append(out, b.violation(tag, "field %s must be present in every occurrence of sequence %s when absent from the general part", display, seq))
			}
		}
		return out
	}
}

// SumEquals checks that the amounts of itemTag across the instances of seq
// add up exactly to the amount of totalTag in the body.
func SumEquals(totalTag, seq, itemTag string) Check {
	return func(m *message.Message) []ValidationError {
		tf := m.Body.Get(totalTag)
		total, ok := amountOf(tf)
		if !ok {
			return nil
		}
		sum := decimal.Zero
		decimals := total.Decimals()
		for _, b := range bundles(m, seq) {
			for _, f := range b.in.All(itemTag) {
				if a, ok := amountOf(f); ok {
					sum = sum.Add(a.Exact())
					if d := a.Decimals(); d > decimals {
						decimals = d
					}
				}
			}
		}
		if !sum.Equal(total.Exact()) {
			return []ValidationError{{
				Tag:     totalTag,
				Value:   total.Raw,
				Message: fmt.Sprintf("sum of field %s amounts is %s", itemTag, format.FormatDecimal(sum, decimals)),
			}}
		}
		return nil
	}
}

// SameCurrency checks that every field with one of the tags carries the
// same currency code.
func SameCurrency(tags ...string) Check {
	return sameCurrency(3, "currency", tags)
}

// SameCurrencyPrefix checks that every field with one of the tags carries a
// currency code with the same first two characters (the country).
func SameCurrencyPrefix(tags ...string) Check {
	return sameCurrency(2, "currency country", tags)
}

func sameCurrency(n int, what string, tags []string) Check {
	return func(m *message.Message) []ValidationError {
		var want, wantTag string
		var out []ValidationError
		for _, tag := range tags {
			for _, f := range m.All(tag) {
				ccy, ok := currencyOf(f)
				if !ok || len(ccy) < n {
					continue
				}
				if want == "" {
					want, wantTag = ccy[:n], f.Tag()
					continue
				}
				if ccy[:n] != want {
					out = append(out, ValidationError{
						Tag:     f.Tag(),
						Value:   f.Serialize(),
						Message: fmt.Sprintf("%s %s differs from %s in field %s", what, ccy[:n], want, wantTag),
					})
				}
			}
		}
		return out
	}
}

// InstanceCount checks the number of instances of seq.
func InstanceCount(seq string, min, max int) Check {
	return func(m *message.Message) []ValidationError {
		s := m.Sequence(seq)
		n := s.Len()
		if n >= min && (max <= 0 || n <= max) {
			return nil
		}
		tag := ""
		if s != nil {
			tag = s.LeadingTag
		}
		return []ValidationError{{
			Tag:     tag,
			Message: fmt.Sprintf("sequence %s occurs %d time(s), allowed %d to %d", seq, n, min, max),
		}}
	}
}

// =============================================================================
// CODE MATRIX
// =============================================================================

// CodeMatrix constrains the codes of an instruction code field such as 23E.
type CodeMatrix struct {
	// Allowed is the code set (T47).
	Allowed []string

	// WithInfo lists the codes that may carry additional information (D97).
	WithInfo []string

	// Exclusive lists code pairs that must not appear together (D98).
	Exclusive [][2]string

	// Repeatable lists the codes that may appear more than once (E46).
	Repeatable []string
}

// Codes checks every bundle of seq against the matrix.
func Codes(seq, tag string, matrix CodeMatrix) Check {
	allowed := codeSet(matrix.Allowed)
	withInfo := codeSet(matrix.WithInfo)
	repeatable := codeSet(matrix.Repeatable)

	return func(m *message.Message) []ValidationError {
		var out []ValidationError
		for _, b := range bundles(m, seq) {
			seen := make(map[string]int)
			for _, f := range b.in.All(tag) {
				ic, ok := f.(*field.InstructionCode)
				if !ok {
					continue
				}
				v := ValidationError{Tag: f.Tag(), Value: f.Serialize(), Sequence: b.seq, Instance: b.index}
				switch {
				case !allowed[ic.Code]:
					v.Code, v.Message = "T47", fmt.Sprintf("code %s is not allowed", ic.Code)
					out = append(out, v)
				case ic.Info != "" && !withInfo[ic.Code]:
					v.Code, v.Message = "D97", fmt.Sprintf("code %s must not carry additional information", ic.Code)
					out = append(out, v)
				}
				seen[ic.Code]++
				if seen[ic.Code] == 2 && !repeatable[ic.Code] {
					v.Code, v.Message = "E46", fmt.Sprintf("code %s appears more than once", ic.Code)
					out = append(out, v)
				}
			}
			for _, pair := range matrix.Exclusive {
				if seen[pair[0]] > 0 && seen[pair[1]] > 0 {
					out = append(out, ValidationError{
						Code:     "D98",
						Tag:      tag,
						Value:    pair[0] + "," + pair[1],
						Message:  fmt.Sprintf("codes %s and %s must not be combined", pair[0], pair[1]),
						Sequence: b.seq,
						Instance: b.index,
					})
				}
			}
		}
		return out
	}
}

func codeSet(codes []string) map[string]bool {
	set := make(map[string]bool, len(codes))
	for _, c := range codes {
		set[c] = true
	}
	return set
}

// =============================================================================
// FIELD CONTENT AND HEADERS
// =============================================================================

// FieldContent runs the content checks of every field in textual order.
func FieldContent() Check {
	return func(m *message.Message) []ValidationError {
		var out []ValidationError
		next := make(map[string]int)
		for _, tag := range m.FieldOrder {
			f := m.Fields[tag][next[tag]]
			next[tag]++

			v, ok := f.(field.Validator)
			if !ok {
				continue
			}
			err := v.Validate()
			if err == nil {
				continue
			}
			var ce *field.ContentError
			if errors.As(err, &ce) {
				out = append(out, ValidationError{Code: ce.Code, Tag: ce.Tag, Value: ce.Value, Message: ce.Message})
				continue
			}
			out = append(out, ValidationError{Tag: f.Tag(), Value: f.Serialize(), Message: err.Error()})
		}
		return out
	}
}

// UETR checks that the end-to-end reference of block 3, when present, is a
// lowercase version 4 UUID.
func UETR() Check {
	return func(m *message.Message) []ValidationError {
		raw, ok := m.UETR()
		if !ok {
			return nil
		}
		bad := func(why string) []ValidationError {
			return []ValidationError{{Tag: "121", Value: raw, Message: why}}
		}
		id, err := uuid.Parse(raw)
		if err != nil || len(raw) != 36 {
			return bad("not a UUID in 8-4-4-4-12 form")
		}
		if id.Version() != 4 || id.Variant() != uuid.RFC4122 {
			return bad(fmt.Sprintf("UUID version %d, want 4", id.Version()))
		}
		if raw != id.String() {
			return bad("UUID must be lowercase")
		}
		return nil
	}
}

// =============================================================================
// VALUE HELPERS
// =============================================================================

func amountOf(f field.Field) (format.Amount, bool) {
	switch v := f.(type) {
	case *field.Sum:
		return v.Amount, true
	case *field.CurrencyAmount:
		return v.Amount, true
	case *field.ValueDateAmount:
		return v.Amount, true
	case *field.Balance:
		return v.Amount, true
	case *field.EntrySummary:
		return v.Amount, true
	case *field.FloorLimit:
		return v.Amount, true
	}
	return format.Amount{}, false
}

func currencyOf(f field.Field) (string, bool) {
	switch v := f.(type) {
	case *field.CurrencyAmount:
		return v.Currency, true
	case *field.ValueDateAmount:
		return v.Currency, true
	case *field.Balance:
		return v.Currency, true
	case *field.EntrySummary:
		return v.Currency, true
	case *field.FloorLimit:
		return v.Currency, true
	}
	return "", false
}

// accountOf returns the account of a party field's identifier line.
func accountOf(f field.Field) string {
	if p, ok := f.(field.Party); ok {
		return p.Identifier().Account
	}
	return ""
}

// country returns the country code of a BIC, empty when too short.
func country(bic string) string {
	if len(bic) < 6 {
		return ""
	}
	return strings.ToUpper(bic[4:6])
}

// =============================================================================
// VALUE CONDITIONS
// =============================================================================

// NonZeroAmount holds when the first field with the tag has a non-zero
// amount.
func NonZeroAmount(tag string) Condition {
	return func(in *message.Instance) bool {
		a, ok := amountOf(in.Get(tag))
		return ok && !a.IsZero()
	}
}

// SameCurrencyAs holds when both fields are present with the same currency.
func SameCurrencyAs(a, b string) Condition {
	return func(in *message.Instance) bool {
		ca, okA := currencyOf(in.Get(a))
		cb, okB := currencyOf(in.Get(b))
		return okA && okB && ca == cb
	}
}

// OnlyCodes holds when every instruction code with the tag is in the set.
func OnlyCodes(tag string, codes ...string) Condition {
	set := codeSet(codes)
	return func(in *message.Instance) bool {
		for _, f := range pick(in, tag) {
			if ic, ok := f.(*field.InstructionCode); ok && !set[ic.Code] {
				return false
			}
		}
		return true
	}
}

// NoAccount holds when the party field with the tag carries no account.
func NoAccount(tag string) Condition {
	return func(in *message.Instance) bool {
		f := in.Get(tag)
		return f == nil || accountOf(f) == ""
	}
}

// combine runs checks in order and concatenates their violations.
func combine(checks ...Check) Check {
	return func(m *message.Message) []ValidationError {
		var out []ValidationError
		for _, c := range checks {
			out = append(out, c(m)...)
		}
		return out
	}
}
