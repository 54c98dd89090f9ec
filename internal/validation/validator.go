// =============================================================================
// SWIFT MT Engine - Validation Rule Engine
// =============================================================================
//
// This module runs the network validation rules of a message type over a
// parsed Message. Parsing has already enforced syntax; rules check what only
// the whole message can tell:
//   - Field content (BIC structure, ISO currency, decimals, code lists)
//   - Conditional presence ("if 36 is present, 21F is mandatory")
//   - Exclusivity between the body and the instances of a sequence
//   - Aggregates (sum of the transaction amounts equals field 19)
//   - Code matrices (allowed codes, companion text, exclusive pairs)
//
// RULE MODEL:
//   A Rule is a pure function over a read-only Message. It returns the
//   violations it found, each carrying the network error code of the
//   published rule catalogue. Rules of one message type run in a fixed
//   order.
//
// MODES:
//   - collect all: every rule runs, errors are concatenated in rule order
//   - stop on first error: only the errors of the first violated rule are
//     returned
//
// =============================================================================

package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError is one rule violation.
type ValidationError struct {
	// RuleID is the business rule identifier, e.g. "MT101-C1".
	RuleID string

	// Code is the network validation code, e.g. "D54".
	Code string

	// Tag is the offending field, empty for message level violations.
	Tag string

	// Value is the offending content.
	Value string

	// Message is a human readable explanation.
	Message string

	// Rule is the abstract rule description.
	Rule string

	// Sequence and Instance locate the violation inside a repeating group.
	// Instance is 1-based; both are zero values for the message body.
	Sequence string
	Instance int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	var loc string
	if e.Sequence != "" {
		loc = fmt.Sprintf(" sequence %s[%d]", e.Sequence, e.Instance)
	}
	if e.Tag == "" {
		return fmt.Sprintf("[%s] %s%s: %s", e.Code, e.RuleID, loc, e.Message)
	}
	return fmt.Sprintf("[%s] %s%s field '%s': %s (value: '%s')",
		e.Code, e.RuleID, loc, e.Tag, e.Message, e.Value)
}

// =============================================================================
// RULES
// =============================================================================

// Check inspects a message and returns its violations. The engine fills in
// RuleID and Rule, and Code when a violation leaves it empty.
type Check func(m *message.Message) []ValidationError

// Rule is a named network validation rule.
type Rule struct {
	ID          string
	Code        string
	Description string
	Check       Check
}

func (r Rule) apply(m *message.Message) []ValidationError {
	if r.Check == nil {
		return nil
	}
	errs := r.Check(m)
	for i := range errs {
		errs[i].RuleID = r.ID
		errs[i].Rule = r.Description
		if errs[i].Code == "" {
			errs[i].Code = r.Code
		}
	}
	return errs
}

// RuleSet is the ordered rule battery of one message type.
type RuleSet struct {
	MessageType string
	Rules       []Rule
}

// =============================================================================
// RESULT
// =============================================================================

// Result summarizes one validation run.
type Result struct {
	MessageType string
	Reference   string

	// Errors holds the violations in rule order.
	Errors []ValidationError

	// RulesChecked is the number of rules that ran.
	RulesChecked int

	// RulesFailed is the number of rules with at least one violation.
	RulesFailed int
}

// Valid reports whether no rule was violated.
func (r *Result) Valid() bool { return len(r.Errors) == 0 }

// Codes returns the distinct error codes in first-seen order.
func (r *Result) Codes() []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range r.Errors {
		if !seen[e.Code] {
			seen[e.Code] = true
			out = append(out, e.Code)
		}
	}
	return out
}

// =============================================================================
// ENGINE
// =============================================================================

// Options controls a validation run.
type Options struct {
	// StopOnFirstError returns after the first rule with violations.
	StopOnFirstError bool

	// DisabledRules lists rule IDs or network codes to skip.
	DisabledRules []string
}

// Engine holds one RuleSet per message type. It is read-only after
// construction and safe for concurrent use.
type Engine struct {
	sets   map[string]*RuleSet
	common []Rule
}

// NewEngine builds an engine from rule sets. Types without a set are checked
// with the common rules only.
func NewEngine(sets ...*RuleSet) *Engine {
	e := &Engine{
		sets:   make(map[string]*RuleSet, len(sets)),
		common: commonRules(),
	}
	for _, s := range sets {
		e.sets[s.MessageType] = s
	}
	return e
}

// Default is the engine with the built-in rule sets.
var Default = NewEngine(builtinRuleSets()...)

// Validate runs the default engine.
func Validate(m *message.Message, stopOnFirstError bool) []ValidationError {
	return Default.Validate(m, Options{StopOnFirstError: stopOnFirstError})
}

// Validate returns the violations of m.
func (e *Engine) Validate(m *message.Message, opts Options) []ValidationError {
	return e.Check(m, opts).Errors
}

// Check validates m and returns a detailed result.
func (e *Engine) Check(m *message.Message, opts Options) *Result {
	result := &Result{
		MessageType: m.Type,
		Reference:   m.Reference(),
	}
	disabled := make(map[string]bool, len(opts.DisabledRules))
	for _, id := range opts.DisabledRules {
		disabled[strings.TrimSpace(id)] = true
	}

	for _, r := range e.Rules(m.Type) {
		if disabled[r.ID] || disabled[r.Code] {
			continue
		}
		result.RulesChecked++

		errs := r.apply(m)
		if len(errs) == 0 {
			continue
		}
		result.RulesFailed++
		result.Errors = append(result.Errors, errs...)
		if opts.StopOnFirstError {
			break
		}
	}
	return result
}

// Rules returns the rules run for a message type, in order.
func (e *Engine) Rules(messageType string) []Rule {
	if s, ok := e.sets[messageType]; ok {
		return s.Rules
	}
	return e.common
}

// Types lists the message types with a rule set, sorted.
func (e *Engine) Types() []string {
	out := make([]string, 0, len(e.sets))
	for t := range e.sets {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// FormatErrors renders violations one per line.
func FormatErrors(errs []ValidationError) string {
	var b strings.Builder
	for _, e := range errs {
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return b.String()
}
