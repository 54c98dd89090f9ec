// =============================================================================
// SWIFT MT Engine - Message File Reader
// =============================================================================
//
// This module splits a message file into the raw wire messages it holds.
// Files arrive from interface gateways in two layouts:
//   - RJE: messages separated by a "$" character
//   - concatenated: envelopes written back to back, with or without line
//     breaks in between
//
// SPLITTING:
//   The reader tracks brace depth. A separator seen at depth 0 ends the
//   current message; so does a new "{1:" at depth 0 once the current
//   message already holds a block 4. Separators inside blocks are content.
//   Whitespace around a message is dropped; everything else is kept so the
//   envelope tokenizer can report malformed input.
//
// ENCODINGS:
//   UTF-8 (with or without BOM), ISO-8859-1 and Windows-1252 files are
//   decoded to UTF-8 before splitting.
//
// =============================================================================

package batch

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/config"
)

// =============================================================================
// DATA STRUCTURES
// =============================================================================

// Entry is one raw message of a file.
type Entry struct {
	// Index is the 1-based position of the message in the file.
	Index int

	// Line is the 1-based line on which the message starts.
	Line int

	// Raw is the message text, trimmed of surrounding whitespace.
	Raw string
}

// File is a fully read message file.
type File struct {
	SourceFile string
	Entries    []Entry
}

// Count returns the number of messages in the file.
func (f *File) Count() int { return len(f.Entries) }

// =============================================================================
// WHOLE FILE READING
// =============================================================================

// Read splits a message file into its messages.
func Read(filePath string, settings config.InputSettings) (*File, error) {
	r, err := Open(filePath, settings)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out := &File{SourceFile: filePath}
	for r.Next() {
		out.Entries = append(out.Entries, r.Entry())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Split splits in-memory text with the given separator.
func Split(text, separator string) ([]Entry, error) {
	r := NewReader(strings.NewReader(text), separator)
	var out []Entry
	for r.Next() {
		out = append(out, r.Entry())
	}
	return out, r.Err()
}

// =============================================================================
// STREAMING READER
// =============================================================================

// Reader yields the messages of a stream one at a time.
//
// USAGE:
//   r, err := batch.Open(path, profile.Input)
//   if err != nil {
//       return err
//   }
//   defer r.Close()
//
//   for r.Next() {
//       entry := r.Entry()
//       ...
//   }
//   if err := r.Err(); err != nil {
//       return err
//   }
type Reader struct {
	in        *bufio.Reader
	closer    io.Closer
	separator rune

	line    int
	index   int
	current Entry
	err     error
	done    bool
}

// NewReader reads messages from r. Only the first rune of separator is
// used; an empty separator defaults to "$".
func NewReader(r io.Reader, separator string) *Reader {
	sep := '$'
	if separator != "" {
		sep = []rune(separator)[0]
	}
	return &Reader{
		in:        bufio.NewReader(r),
		separator: sep,
		line:      1,
	}
}

// Open opens a message file, decoding it with the configured encoding.
func Open(filePath string, settings config.InputSettings) (*Reader, error) {
	dec, err := decoder(settings.Encoding)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := NewReader(transform.NewReader(file, dec.NewDecoder()), settings.Separator)
	r.closer = file
	return r, nil
}

// decoder maps an encoding name to its decoder.
func decoder(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "UTF-8", "UTF8":
		return unicode.UTF8BOM, nil
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		return charmap.ISO8859_1, nil
	case "WINDOWS-1252", "CP1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// Next advances to the next message. It returns false at the end of the
// stream or on a read error.
func (r *Reader) Next() bool {
	if r.err != nil || r.done {
		return false
	}

	var b strings.Builder
	depth := 0
	start := 0
	hasText := false

	emit := func() bool {
		raw := strings.TrimSpace(b.String())
		if raw == "" {
			b.Reset()
			hasText = false
			return false
		}
		r.index++
		r.current = Entry{Index: r.index, Line: start, Raw: raw}
		return true
	}

	for {
		if depth == 0 && hasText && strings.Contains(b.String(), "{4:") {
			if next, _ := r.in.Peek(3); string(next) == "{1:" {
				return emit()
			}
		}

		c, _, err := r.in.ReadRune()
		if err == io.EOF {
			r.done = true
			return emit()
		}
		if err != nil {
			r.err = fmt.Errorf("error reading message %d: %w", r.index+1, err)
			return false
		}

		if depth == 0 {
			if c == r.separator {
				if emit() {
					return true
				}
				continue
			}
		}

		switch c {
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		}

		if !hasText && !isSpace(c) {
			hasText = true
			start = r.line
		}
		if c == '\n' {
			r.line++
		}
		b.WriteRune(c)
	}
}

// Entry returns the current message.
func (r *Reader) Entry() Entry { return r.current }

// Err returns the first read error.
func (r *Reader) Err() error { return r.err }

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func isSpace(c rune) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
