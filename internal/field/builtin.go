package field

import (
	"fmt"
	"sort"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/envelope"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/format"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
)

type parseFunc func(tag, content string) (Field, error)

// =============================================================================
// BUILT-IN TABLES
// =============================================================================

// builtin is keyed by normalized tag.
var builtin = map[string]parseFunc{
	"13C": parseTimeIndication,
	"13D": parseDateTimeIndication,
	"19":  parseSum,
	"20":  textParser("16x"),
	"21":  textParser("16x"),
	"21F": textParser("16x"),
	"21R": textParser("16x"),
	"23B": textParser("4!c"),
	"23E": parseInstructionCode,
	"25":  textParser("35x"),
	"25A": parseAccount,
	"25P": parseAccountBIC,
	"26T": textParser("3!c"),
	"28C": parseStatementNumber,
	"28D": parseMessageIndex,
	"30":  parseDate,
	"32A": parseValueDateAmount,
	"32B": parseCurrencyAmount,
	"33B": parseCurrencyAmount,
	"34F": parseFloorLimit,
	"36":  parseRate,
	"61":  parseStatementLine,
	"64":  parseBalance,
	"65":  parseBalance,
	"70":  narrativeParser("4*35x"),
	"71A": textParser("3!a"),
	"71F": parseCurrencyAmount,
	"71G": parseCurrencyAmount,
	"72":  narrativeParser("6*35x"),
	"77B": narrativeParser("3*35x"),
	"79":  narrativeParser("35*50x"),
	"86":  narrativeParser("6*65x"),
	"90C": parseEntrySummary,
	"90D": parseEntrySummary,
}

// variants holds the option arms of lettered fields, keyed by numeric base
// and option letter ("" for the letterless option of 59).
var variants = map[string]map[string]parseFunc{
	"50": {
		"A": partyBICParser(identifierOptional),
		"C": partyBICParser(identifierForbidden),
		"F": parsePartyStructured,
		"G": partyBICParser(identifierRequired),
		"H": partyNameAddressParser(identifierRequired),
		"K": partyNameAddressParser(identifierOptional),
		"L": textParser("35x"),
	},
	"51": {
		"A": partyBICParser(identifierOptional),
	},
	"52": institution("A", "B", "C", "D"),
	"53": institution("A", "B", "D"),
	"54": institution("A", "B", "D"),
	"55": institution("A", "B", "D"),
	"56": institution("A", "C", "D"),
	"57": institution("A", "B", "C", "D"),
	"58": institution("A", "D"),
	"59": {
		"":  partyNameAddressParser(identifierOptional),
		"A": partyBICParser(identifierOptional),
		"F": parsePartyStructured,
	},
	"60": {"F": parseBalance, "M": parseBalance},
	"62": {"F": parseBalance, "M": parseBalance},
}

func institution(options ...string) map[string]parseFunc {
	all := map[string]parseFunc{
		"A": partyBICParser(identifierOptional),
		"B": parsePartyLocation,
		"C": parseAccount,
		"D": partyNameAddressParser(identifierOptional),
	}
	arms := make(map[string]parseFunc, len(options))
	for _, o := range options {
		arms[o] = all[o]
	}
	return arms
}

// ResolvePriority is the order in which options are tried when a variant
// field has to be resolved without its option letter. Stricter layouts come
// first; the result is a best structural match, not a semantic guarantee.
var ResolvePriority = []string{"A", "C", "G", "P", "F", "M", "B", "H", "K", "D", "L", ""}

// =============================================================================
// DISPATCH
// =============================================================================

// Parse builds the typed value of one occurrence. The raw tag's option letter
// selects the variant arm. Tags that are not built in go to the Default
// registry, then fall back to Unknown.
func Parse(tag, content string) (Field, error) {
	if fn, known := lookupBuiltin(tag); known {
		if fn == nil {
			return nil, formatError(tag, content, "option %q is not defined for field %sa",
				envelope.Option(tag), envelope.Base(tag))
		}
		return fn(tag, content)
	}
	if fn, ok := Default.Lookup(tag); ok {
		return fn(tag, content)
	}
	return &Unknown{RawTag: tag, Content: content}, nil
}

// Resolve parses a lettered field whose option letter is not known. The
// options in ResolvePriority order are tried in turn, restricted to the given
// options when any are passed, and the first structural match wins.
func Resolve(base, content string, options ...string) (Field, error) {
	allowed := make(map[string]bool, len(options))
	for _, o := range options {
		allowed[o] = true
	}
	for _, opt := range ResolvePriority {
		if len(options) > 0 && !allowed[opt] {
			continue
		}
		tag := base + opt
		if fn, _ := lookupBuiltin(tag); fn == nil {
			continue
		}
		if f, err := Parse(tag, content); err == nil {
			return f, nil
		}
	}
	return nil, formatError(base+"a", content, "no option of field %sa matches", base)
}

// lookupBuiltin returns the built-in parser for tag. known is true when the
// tag belongs to a built-in field even if its option letter is undefined,
// in which case fn is nil.
func lookupBuiltin(tag string) (fn parseFunc, known bool) {
	if fn, ok := builtin[envelope.Normalize(tag)]; ok {
		return fn, true
	}
	if arms, ok := variants[envelope.Base(tag)]; ok {
		return arms[envelope.Option(tag)], true
	}
	return nil, false
}

// IsBuiltin reports whether tag belongs to a built-in field.
func IsBuiltin(tag string) bool {
	_, known := lookupBuiltin(tag)
	return known
}

// Known reports whether tag is built in or registered.
func Known(tag string) bool {
	if IsBuiltin(tag) {
		return true
	}
	_, ok := Default.Lookup(tag)
	return ok
}

// BuiltinTags lists the built-in raw tags in sorted order.
func BuiltinTags() []string {
	var tags []string
	for t := range builtin {
		tags = append(tags, t)
	}
	for base, arms := range variants {
		for opt := range arms {
			tags = append(tags, base+opt)
		}
	}
	sort.Strings(tags)
	return tags
}

// =============================================================================
// HELPERS
// =============================================================================

func matchFormat(tag, spec, content string) ([]string, error) {
	vals, ok := format.MustLookup(spec).Match(content)
	if !ok {
		return nil, formatError(tag, content, "does not match %s", spec)
	}
	return vals, nil
}

func formatError(tag, content, msg string, args ...interface{}) error {
	return &types.ParseError{
		Kind:   types.InvalidFieldFormat,
		Tag:    tag,
		Detail: fmt.Sprintf("%q ", content) + fmt.Sprintf(msg, args...),
	}
}

func wrapFormat(tag, content string, err error) error {
	return &types.ParseError{
		Kind:   types.InvalidFieldFormat,
		Tag:    tag,
		Detail: fmt.Sprintf("%q", content),
		Err:    err,
	}
}
