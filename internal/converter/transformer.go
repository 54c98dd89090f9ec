// =============================================================================
// SWIFT MT Engine - Export Transformation Engine
// =============================================================================
//
// This module rewrites field values on their way into the XML export. The
// parsed message itself is never changed; only the exported copy is.
//
// TRANSFORMATION TYPES:
//   - String manipulations (prepend, append, trim, case conversion)
//   - Padding and fixed length
//   - Lookup table replacements
//   - Amount and date presentation (decimal point, YYMMDD conversion)
//   - Masking of account identifiers
//
// PROFILE RULES:
//   Each profile lists export_rules keyed by normalized tag ("32A") or by a
//   header key ("sender", "receiver", "reference", "type"). Common uses:
//   - Converting the SWIFT decimal comma to a point for spreadsheets
//   - Masking account numbers in exports leaving the payments team
//   - Mapping bank codes to internal desk names
//
// =============================================================================

package converter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/config"
)

// =============================================================================
// TRANSFORMER
// =============================================================================

// Transformer applies a profile's export rules.
type Transformer struct {
	rules map[string][]config.TransformationAction
}

// NewTransformer creates a Transformer. Rules for the same field are
// concatenated in order.
func NewTransformer(rules []config.TransformationRule) *Transformer {
	t := &Transformer{rules: make(map[string][]config.TransformationAction)}
	for _, r := range rules {
		t.rules[r.Field] = append(t.rules[r.Field], r.Actions...)
	}
	return t
}

// Transform applies the rules of one field.
//
// PARAMETERS:
//   - field: The normalized tag or header key.
//   - value: The exported value.
//   - allFields: Every exported value of the message, for fallbacks.
func (t *Transformer) Transform(field, value string, allFields map[string]string) (string, error) {
	actions := t.rules[field]
	if len(actions) == 0 {
		return value, nil
	}

	result := value
	for _, action := range actions {
		var err error
		result, err = ApplyTransformation(result, action, allFields)
		if err != nil {
			return "", fmt.Errorf("transformation '%s' on field %s failed: %w", action.Type, field, err)
		}
	}
	return result, nil
}

// Empty reports whether the transformer has no rules.
func (t *Transformer) Empty() bool { return len(t.rules) == 0 }

// =============================================================================
// TRANSFORMATION FUNCTIONS
// =============================================================================

// ApplyTransformation applies a single transformation action.
func ApplyTransformation(value string, action config.TransformationAction, allFields map[string]string) (string, error) {
	switch action.Type {

	// =========================================================================
	// STRING MANIPULATIONS
	// =========================================================================

	case "prepend_string":
		return action.Value + value, nil

	case "append_string":
		return value + action.Value, nil

	case "trim":
		return strings.TrimSpace(value), nil

	case "uppercase":
		return strings.ToUpper(value), nil

	case "lowercase":
		return strings.ToLower(value), nil

	case "replace":
		// EXAMPLE:
		//   Input: "BANK-DE"
		//   Action: replace with find "-" and value "_"
		//   Output: "BANK_DE"
		if action.Find == "" {
			return value, nil
		}
		return strings.ReplaceAll(value, action.Find, action.Value), nil

	case "regex_replace":
		if action.Find == "" {
			return value, nil
		}
		re, err := regexp.Compile(action.Find)
		if err != nil {
			return "", fmt.Errorf("invalid regex pattern: %w", err)
		}
		return re.ReplaceAllString(value, action.Value), nil

	case "normalize_whitespace":
		// Multi-line narrative becomes one line.
		return strings.Join(strings.Fields(value), " "), nil

	// =========================================================================
	// PADDING
	// =========================================================================

	case "pad_zeros_to_length":
		// EXAMPLE:
		//   Input: "123"
		//   Action: pad_zeros_to_length with value "8"
		//   Output: "00000123"
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 {
			return value, nil
		}
		return PadLeft(value, targetLength, '0'), nil

	case "ensure_length":
		// Truncate from the right or pad with leading zeros.
		targetLength, err := strconv.Atoi(action.Value)
		if err != nil || targetLength <= 0 {
			return value, nil
		}
		if len(value) > targetLength {
			return value[:targetLength], nil
		}
		return PadLeft(value, targetLength, '0'), nil

	// =========================================================================
	// LOOKUP TABLE REPLACEMENTS
	// =========================================================================

	case "lookup":
		// EXAMPLE:
		//   Input: "BANKDEFFXXX"
		//   Action: lookup with lookup_table {"BANKDEFFXXX": "FRANKFURT DESK"}
		//   Output: "FRANKFURT DESK"
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return value, nil

	case "lookup_with_default":
		if replacement, exists := action.LookupTable[value]; exists {
			return replacement, nil
		}
		return action.Value, nil

	case "if_empty_use_default":
		if strings.TrimSpace(value) == "" {
			return action.Value, nil
		}
		return value, nil

	case "if_empty_use_field":
		if strings.TrimSpace(value) == "" {
			if other, exists := allFields[action.Value]; exists {
				return other, nil
			}
		}
		return value, nil

	// =========================================================================
	// SWIFT PRESENTATION
	// =========================================================================

	case "decimal_point":
		// SWIFT amounts use a decimal comma.
		//
		// EXAMPLE:
		//   Input: "250101EUR1000,50"
		//   Output: "250101EUR1000.50"
		return strings.ReplaceAll(value, ",", "."), nil

	case "format_date":
		// Converts a leading YYMMDD date to the layout in Value.
		//
		// EXAMPLE:
		//   Input: "250101EUR1000,50"
		//   Action: format_date with value "2006-01-02"
		//   Output: "2025-01-01EUR1000,50"
		if len(value) < 6 || action.Value == "" {
			return value, nil
		}
		t, err := time.Parse("060102", value[:6])
		if err != nil {
			return value, nil
		}
		return t.Format(action.Value) + value[6:], nil

	case "mask":
		// Masks every character but the last N (Value, default 4) of each
		// line. The leading "/" of an account line is kept.
		//
		// EXAMPLE:
		//   Input: "/DE89370400440532013000"
		//   Output: "/******************3000"
		keep := 4
		if n, err := strconv.Atoi(action.Value); err == nil && n >= 0 {
			keep = n
		}
		lines := strings.Split(value, "\n")
		for i, line := range lines {
			lines[i] = maskLine(line, keep)
		}
		return strings.Join(lines, "\n"), nil

	default:
		return "", fmt.Errorf("unknown transformation type: %s", action.Type)
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PadLeft pads a string with a character on the left to reach the target length.
func PadLeft(s string, length int, padChar rune) string {
	if len(s) >= length {
		return s
	}
	return strings.Repeat(string(padChar), length-len(s)) + s
}

func maskLine(line string, keep int) string {
	prefix := ""
	if strings.HasPrefix(line, "/") {
		prefix, line = "/", line[1:]
	}
	if len(line) <= keep {
		return prefix + line
	}
	return prefix + strings.Repeat("*", len(line)-keep) + line[len(line)-keep:]
}
