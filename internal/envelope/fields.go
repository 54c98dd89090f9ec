package envelope

import (
	"strings"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
)

// Field is one field occurrence found in block 4.
type Field struct {
	// Tag is the raw tag including any option letter ("50K").
	Tag string

	// Normalized is the tag used as the message field key ("50", "23E").
	Normalized string

	// Content is the field value; continuation lines are joined with "\n".
	Content string

	// Index is the position of the occurrence in block 4.
	Index int
}

// distinctLetterBases lists the numeric tags whose letter names a separate
// field rather than an option of one field (13C and 13D, 21 and 21F, ...).
var distinctLetterBases = map[string]bool{
	"13": true,
	"21": true,
	"23": true,
	"25": true,
	"26": true,
	"28": true,
	"32": true,
	"33": true,
	"34": true,
	"71": true,
	"77": true,
	"90": true,
}

// Fields splits block 4 content into field occurrences in textual order.
func Fields(text string) ([]Field, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")

	var (
		fields  []Field
		current *Field
		body    []string
	)
	flush := func() {
		if current == nil {
			return
		}
		// the line break before "-}" belongs to the envelope
		for len(body) > 1 && body[len(body)-1] == "" {
			body = body[:len(body)-1]
		}
		current.Content = strings.Join(body, "\n")
		fields = append(fields, *current)
	}

	for _, line := range lines {
		if tag, rest, ok := marker(line); ok {
			flush()
			current = &Field{Tag: tag, Normalized: Normalize(tag), Index: len(fields)}
			body = []string{rest}
			continue
		}
		if current == nil {
			if strings.TrimSpace(line) != "" {
				return nil, types.NewParseError(types.InvalidBlockStructure, "",
					"text before the first field marker: %q", line)
			}
			continue
		}
		body = append(body, line)
	}
	flush()

	if len(fields) == 0 {
		return nil, types.NewParseError(types.InvalidBlockStructure, "", "block 4 has no fields")
	}
	return fields, nil
}

// marker recognises a ":TAG:" field marker at the start of a line.
func marker(line string) (tag, rest string, ok bool) {
	if len(line) < 3 || line[0] != ':' {
		return "", "", false
	}
	i := 1
	for i < len(line) && i <= 3 && isDigit(line[i]) {
		i++
	}
	if i == 1 {
		return "", "", false
	}
	if i < len(line) && line[i] >= 'A' && line[i] <= 'Z' {
		i++
	}
	if i >= len(line) || line[i] != ':' {
		return "", "", false
	}
	return line[1:i], line[i+1:], true
}

// Base returns the numeric part of a tag ("50K" -> "50").
func Base(tag string) string {
	i := 0
	for i < len(tag) && isDigit(tag[i]) {
		i++
	}
	return tag[:i]
}

// Option returns the option letter of a tag, or "" when it has none.
func Option(tag string) string {
	return tag[len(Base(tag)):]
}

// Normalize strips the option letter unless the numeric base names
// structurally distinct fields per letter.
func Normalize(tag string) string {
	base := Base(tag)
	if distinctLetterBases[base] {
		return tag
	}
	return base
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
