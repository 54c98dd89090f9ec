package field

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/format"
)

// ParseFunc parses the content of a registered field.
type ParseFunc func(tag, content string) (Field, error)

var (
	ErrBuiltinTag   = errors.New("field: tag is built in")
	ErrInvalidTag   = errors.New("field: invalid tag")
	ErrNilParseFunc = errors.New("field: nil parse func")
)

// Registry maps raw tags the built-in table does not know to custom parsers.
// The lock guards the map only and is never held while a parser runs.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]ParseFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]ParseFunc)}
}

// Default is the process-wide registry consulted by Parse.
var Default = NewRegistry()

// Register adds or replaces the parser for tag.
func (r *Registry) Register(tag string, fn ParseFunc) error {
	if !validTag(tag) {
		return fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	if IsBuiltin(tag) {
		return fmt.Errorf("%w: %s", ErrBuiltinTag, tag)
	}
	if fn == nil {
		return ErrNilParseFunc
	}
	r.mu.Lock()
	r.parsers[tag] = fn
	r.mu.Unlock()
	return nil
}

// Unregister removes the parser for tag.
func (r *Registry) Unregister(tag string) {
	r.mu.Lock()
	delete(r.parsers, tag)
	r.mu.Unlock()
}

// Lookup returns the parser registered for tag.
func (r *Registry) Lookup(tag string) (ParseFunc, bool) {
	r.mu.RLock()
	fn, ok := r.parsers[tag]
	r.mu.RUnlock()
	return fn, ok
}

// Tags lists the registered tags in sorted order.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tags := make([]string, 0, len(r.parsers))
	for t := range r.parsers {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

// Register adds a parser to the Default registry.
func Register(tag string, fn ParseFunc) error {
	return Default.Register(tag, fn)
}

func validTag(tag string) bool {
	digits := 0
	for digits < len(tag) && tag[digits] >= '0' && tag[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits > 3 {
		return false
	}
	rest := tag[digits:]
	return rest == "" || (len(rest) == 1 && rest[0] >= 'A' && rest[0] <= 'Z')
}

// =============================================================================
// FORMAT-DRIVEN CUSTOM FIELDS
// =============================================================================

// Custom is a registered field described only by its component notation.
// Values hold one entry per atom of the notation.
type Custom struct {
	RawTag  string
	Name    string
	Values  []string
	program *format.Program
}

func (f *Custom) Tag() string { return f.RawTag }

func (f *Custom) Serialize() string {
	s, err := f.program.Render(f.Values)
	if err != nil {
		return ""
	}
	return s
}

// Format returns the component notation of the field.
func (f *Custom) Format() string { return f.program.Spec() }

// FormatParser returns a ParseFunc that parses content with the given
// component notation, e.g. "4!c[/30x]".
func FormatParser(name, spec string) (ParseFunc, error) {
	p, err := format.Lookup(spec)
	if err != nil {
		return nil, err
	}
	return func(tag, content string) (Field, error) {
		vals, ok := p.Match(content)
		if !ok {
			return nil, formatError(tag, content, "does not match %s", spec)
		}
		return &Custom{RawTag: tag, Name: name, Values: vals, program: p}, nil
	}, nil
}
