// =============================================================================
// SWIFT MT Engine - Format Program Interpreter
// =============================================================================
//
// This module interprets SWIFT component notation so one description of a
// field drives both parsing and serialization.
//
// NOTATION:
//   16x        up to 16 characters of charset x
//   6!n        exactly 6 digits
//   4*35x      up to 4 lines of up to 35 characters each
//   [/34x]     optional group
//   /  //  :   literal text
//   $          line break
//
// CHARSETS:
//   n digits, a upper-case letters, c upper-case alphanumerics,
//   d digits with a decimal comma, h hexadecimal, e space,
//   x SWIFT character set, z extended SWIFT character set.
//
// MATCHING:
//   A compiled Program matches content with backtracking: variable length
//   atoms try the longest run first and optional groups try presence before
//   absence. Every atom owns one value slot; Render writes the slots back in
//   program order, omitting optional groups whose slots are all empty.
//
// =============================================================================

package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Program is a compiled component format.
type Program struct {
	spec  string
	items []item
	slots int
}

type itemKind int

const (
	literalItem itemKind = iota
	atomItem
	groupItem
)

type item struct {
	kind    itemKind
	literal string

	// atom
	charset  byte
	min, max int
	lines    int
	slot     int

	// group
	children []item
}

// Spec returns the notation the program was compiled from.
func (p *Program) Spec() string { return p.spec }

// Slots returns the number of value slots (one per atom).
func (p *Program) Slots() int { return p.slots }

// =============================================================================
// COMPILATION
// =============================================================================

// Compile parses SWIFT component notation into a Program.
func Compile(spec string) (*Program, error) {
	c := &compiler{src: spec}
	items, err := c.sequence(false)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", spec, err)
	}
	return &Program{spec: spec, items: items, slots: c.slot}, nil
}

// MustCompile is like Compile but panics on a malformed notation.
func MustCompile(spec string) *Program {
	p, err := Compile(spec)
	if err != nil {
		panic(err)
	}
	return p
}

type compiler struct {
	src  string
	pos  int
	slot int
}

func (c *compiler) sequence(inGroup bool) ([]item, error) {
	var items []item
	for c.pos < len(c.src) {
		ch := c.src[c.pos]
		switch {
		case ch == '[':
			c.pos++
			children, err := c.sequence(true)
			if err != nil {
				return nil, err
			}
			items = append(items, item{kind: groupItem, children: children})
		case ch == ']':
			if !inGroup {
				return nil, fmt.Errorf("unexpected ] at %d", c.pos)
			}
			c.pos++
			return items, nil
		case ch >= '0' && ch <= '9':
			atom, err := c.atom()
			if err != nil {
				return nil, err
			}
			items = append(items, atom)
		case ch == '$':
			c.pos++
			items = appendLiteral(items, "\n")
		default:
			c.pos++
			items = appendLiteral(items, string(ch))
		}
	}
	if inGroup {
		return nil, fmt.Errorf("unterminated [")
	}
	return items, nil
}

func appendLiteral(items []item, s string) []item {
	if n := len(items); n > 0 && items[n-1].kind == literalItem {
		items[n-1].literal += s
		return items
	}
	return append(items, item{kind: literalItem, literal: s})
}

func (c *compiler) number() (int, error) {
	start := c.pos
	for c.pos < len(c.src) && c.src[c.pos] >= '0' && c.src[c.pos] <= '9' {
		c.pos++
	}
	return strconv.Atoi(c.src[start:c.pos])
}

func (c *compiler) atom() (item, error) {
	n, err := c.number()
	if err != nil {
		return item{}, err
	}
	it := item{kind: atomItem, min: 1, max: n, lines: 1}

	if c.pos < len(c.src) && c.src[c.pos] == '*' {
		c.pos++
		width, err := c.number()
		if err != nil {
			return item{}, fmt.Errorf("line width at %d: %w", c.pos, err)
		}
		it.lines, it.max = n, width
	} else if c.pos < len(c.src) && c.src[c.pos] == '!' {
		c.pos++
		it.min = n
	}

	if c.pos >= len(c.src) || !knownCharset(c.src[c.pos]) {
		return item{}, fmt.Errorf("missing charset at %d", c.pos)
	}
	it.charset = c.src[c.pos]
	c.pos++
	it.slot = c.slot
	c.slot++
	return it, nil
}

// =============================================================================
// MATCHING
// =============================================================================

// Match parses content and returns one value per slot. Absent optional
// values are empty strings. ok is false when the content does not conform.
func (p *Program) Match(content string) ([]string, bool) {
	vals := make([]string, p.slots)
	ok := match(p.items, content, 0, vals, func(pos int) bool {
		return pos == len(content)
	})
	return vals, ok
}

func match(items []item, s string, pos int, vals []string, k func(int) bool) bool {
	if len(items) == 0 {
		return k(pos)
	}
	it, rest := items[0], items[1:]
	next := func(p int) bool { return match(rest, s, p, vals, k) }

	switch it.kind {
	case literalItem:
		if strings.HasPrefix(s[pos:], it.literal) {
			return next(pos + len(it.literal))
		}
		return false

	case groupItem:
		if match(it.children, s, pos, vals, next) {
			return true
		}
		clearSlots(it.children, vals)
		return next(pos)

	default:
		if it.lines > 1 {
			return matchLines(it, s, pos, vals, next)
		}
		run := runLength(s, pos, it.charset, it.max)
		for l := run; l >= it.min; l-- {
			vals[it.slot] = s[pos : pos+l]
			if next(pos + l) {
				return true
			}
		}
		vals[it.slot] = ""
		return false
	}
}

// matchLines matches a n*m atom: one to n lines of one to m characters.
// Line counts are tried from the most to the fewest.
func matchLines(it item, s string, pos int, vals []string, next func(int) bool) bool {
	var ends []int
	p := pos
	for len(ends) < it.lines {
		if len(ends) > 0 {
			if p >= len(s) || s[p] != '\n' {
				break
			}
			p++
		}
		l := runLength(s, p, it.charset, it.max)
		if l == 0 {
			break
		}
		p += l
		ends = append(ends, p)
	}
	for i := len(ends) - 1; i >= 0; i-- {
		vals[it.slot] = s[pos:ends[i]]
		if next(ends[i]) {
			return true
		}
	}
	vals[it.slot] = ""
	return false
}

func runLength(s string, pos int, charset byte, max int) int {
	l := 0
	for pos+l < len(s) && l < max && inCharset(charset, s[pos+l]) {
		l++
	}
	return l
}

func clearSlots(items []item, vals []string) {
	for _, it := range items {
		switch it.kind {
		case atomItem:
			vals[it.slot] = ""
		case groupItem:
			clearSlots(it.children, vals)
		}
	}
}

// =============================================================================
// RENDERING
// =============================================================================

// Render writes values back in program order. It is the inverse of Match
// for every value list Match produces.
func (p *Program) Render(vals []string) (string, error) {
	if len(vals) != p.slots {
		return "", fmt.Errorf("format %q: want %d values, got %d", p.spec, p.slots, len(vals))
	}
	var b strings.Builder
	render(p.items, vals, &b)
	return b.String(), nil
}

func render(items []item, vals []string, b *strings.Builder) {
	for _, it := range items {
		switch it.kind {
		case literalItem:
			b.WriteString(it.literal)
		case atomItem:
			b.WriteString(vals[it.slot])
		case groupItem:
			if anySlot(it.children, vals) {
				render(it.children, vals, b)
			}
		}
	}
}

func anySlot(items []item, vals []string) bool {
	for _, it := range items {
		switch it.kind {
		case atomItem:
			if vals[it.slot] != "" {
				return true
			}
		case groupItem:
			if anySlot(it.children, vals) {
				return true
			}
		}
	}
	return false
}
