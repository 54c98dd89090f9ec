// =============================================================================
// SWIFT MT Engine - Envelope Tokenizer
// =============================================================================
//
// This package splits a raw wire message into its logical blocks and, for the
// text block, into an ordered list of field occurrences.
//
// WIRE LAYOUT:
//   {1:basic header}{2:application header}{3:{103:..}{121:..}}{4:
//   :20:REFERENCE
//   :32A:250101EUR1000,00
//   -}{5:{CHK:...}}
//
// DELIMITING:
//   - Blocks 1 and 2 end at the first closing brace.
//   - Blocks 3 and 5 hold nested sub-tags and end by brace-depth counting.
//   - Block 4 ends at the "-}" sentinel.
//
// Blocks 1, 2 and a non-empty block 4 are mandatory. Any structural failure
// is a fatal InvalidBlockStructure error.
//
// =============================================================================

package envelope

import (
	"errors"
	"strings"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
)

// Blocks holds the raw content of the envelope blocks. Contents exclude the
// "{n:" opener and the closing delimiter.
type Blocks struct {
	Basic       string
	Application string

	// User is block 3 with its sub-tags kept verbatim ("{108:REF}{121:...}").
	User    string
	HasUser bool

	// Text is block 4 between "{4:" and "-}".
	Text string

	Trailer    string
	HasTrailer bool

	// LineEnding is the line terminator found inside block 4.
	LineEnding string

	// TextOpensLine and TextClosesLine report whether block 4 starts right
	// after "{4:" with a line break and ends with one before "-}".
	TextOpensLine  bool
	TextClosesLine bool
}

// Split extracts the blocks from a raw message.
func Split(raw string) (*Blocks, error) {
	b := &Blocks{LineEnding: "\n"}
	seen := make(map[byte]bool)
	pos := 0

	for {
		pos = skipSpace(raw, pos)
		if pos >= len(raw) {
			break
		}
		if !strings.HasPrefix(raw[pos:], "{") || pos+2 >= len(raw) || raw[pos+2] != ':' {
			return nil, blockError("unexpected text at offset %d", pos)
		}

		id := raw[pos+1]
		if seen[id] {
			return nil, blockError("block %c appears more than once", id)
		}
		seen[id] = true
		start := pos + 3

		switch id {
		case '1', '2':
			end := strings.IndexByte(raw[start:], '}')
			if end < 0 {
				return nil, blockError("block %c is not terminated", id)
			}
			if id == '1' {
				b.Basic = raw[start : start+end]
			} else {
				b.Application = raw[start : start+end]
			}
			pos = start + end + 1

		case '3', '5':
			end, err := matchBrace(raw, start)
			if err != nil {
				return nil, blockError("block %c: %v", id, err)
			}
			if id == '3' {
				b.User, b.HasUser = raw[start:end], true
			} else {
				b.Trailer, b.HasTrailer = raw[start:end], true
			}
			pos = end + 1

		case '4':
			end := strings.Index(raw[start:], "-}")
			if end < 0 {
				return nil, blockError("block 4 is missing the -} terminator")
			}
			b.Text = raw[start : start+end]
			pos = start + end + 2

		default:
			return nil, blockError("unknown block %q", string(id))
		}
	}

	if !seen['1'] {
		return nil, blockError("missing block 1")
	}
	if !seen['2'] {
		return nil, blockError("missing block 2")
	}
	if !seen['4'] || strings.TrimSpace(b.Text) == "" {
		return nil, blockError("missing or empty block 4")
	}
	if strings.Contains(b.Text, "\r\n") {
		b.LineEnding = "\r\n"
	}
	b.TextOpensLine = strings.HasPrefix(b.Text, "\n") || strings.HasPrefix(b.Text, "\r\n")
	b.TextClosesLine = strings.HasSuffix(b.Text, "\n")
	return b, nil
}

// Tokenize splits a raw message into blocks and block 4 field occurrences.
func Tokenize(raw string) (*Blocks, []Field, error) {
	b, err := Split(raw)
	if err != nil {
		return nil, nil, err
	}
	fields, err := Fields(b.Text)
	if err != nil {
		return nil, nil, err
	}
	return b, fields, nil
}

// matchBrace returns the index of the brace closing a block whose content
// starts at start, counting nested braces.
func matchBrace(raw string, start int) (int, error) {
	depth := 1
	for i := start; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, errUnbalanced
}

func skipSpace(s string, pos int) int {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t' || s[pos] == '\r' || s[pos] == '\n') {
		pos++
	}
	return pos
}

func blockError(format string, args ...interface{}) error {
	return types.NewParseError(types.InvalidBlockStructure, "", format, args...)
}

var errUnbalanced = errors.New("unbalanced braces")
