package field

import (
	"strings"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/format"
)

// PartyIdentifier is the optional "/..." line leading a party field. A one or
// two letter Code before a second slash names a clearing or account type
// ("/D/12345"); anything else is the account itself ("/12345", "//CH123").
type PartyIdentifier struct {
	Code    string
	Account string
}

// IsZero reports whether no identifier was given.
func (p PartyIdentifier) IsZero() bool { return p.Code == "" && p.Account == "" }

// String returns the identifier line, empty when absent.
func (p PartyIdentifier) String() string {
	switch {
	case p.IsZero():
		return ""
	case p.Code == "":
		return "/" + p.Account
	case p.Account == "":
		return "/" + p.Code
	default:
		return "/" + p.Code + "/" + p.Account
	}
}

func parsePartyIdentifier(tag, content, line string) (PartyIdentifier, error) {
	vals, err := matchFormat(tag, "[/2a][/34x]", line)
	if err != nil {
		return PartyIdentifier{}, err
	}
	if vals[0] == "" && vals[1] == "" {
		return PartyIdentifier{}, formatError(tag, content, "empty party identifier")
	}
	p := PartyIdentifier{Code: vals[0], Account: vals[1]}
	if p.Account == "" {
		p.Code, p.Account = "", p.Code
	}
	return p, nil
}

// Party is implemented by party fields that may carry an identifier line.
type Party interface {
	Field
	Identifier() PartyIdentifier
}

// splitIdentifier separates a leading "/..." line from the remaining lines.
func splitIdentifier(tag, content string) (PartyIdentifier, []string, error) {
	lines := strings.Split(content, "\n")
	if !strings.HasPrefix(lines[0], "/") {
		return PartyIdentifier{}, lines, nil
	}
	id, err := parsePartyIdentifier(tag, content, lines[0])
	if err != nil {
		return PartyIdentifier{}, nil, err
	}
	return id, lines[1:], nil
}

func joinParty(id PartyIdentifier, lines ...string) string {
	out := make([]string, 0, len(lines)+1)
	if !id.IsZero() {
		out = append(out, id.String())
	}
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

func parseBICLine(tag, content, line string) (format.BIC, error) {
	if _, err := matchFormat(tag, "4!a2!a2!c[3!c]", line); err != nil {
		return format.BIC{}, err
	}
	bic, err := format.ParseBIC(line)
	if err != nil {
		return format.BIC{}, wrapFormat(tag, content, err)
	}
	return bic, nil
}

// =============================================================================
// OPTION A, C (50C), G: IDENTIFIER CODE
// =============================================================================

// PartyBIC identifies a party by BIC with an optional identifier line
// (option A, 50C, 50G, 51A).
type PartyBIC struct {
	RawTag string
	Party  PartyIdentifier
	BIC    format.BIC
}

func (f *PartyBIC) Tag() string                 { return f.RawTag }
func (f *PartyBIC) Serialize() string           { return joinParty(f.Party, f.BIC.String()) }
func (f *PartyBIC) Identifier() PartyIdentifier { return f.Party }

// Validate checks the BIC content.
func (f *PartyBIC) Validate() error {
	if err := f.BIC.Validate(); err != nil {
		return contentError("T27", f, "%v", err)
	}
	return nil
}

func partyBICParser(identifier presence) parseFunc {
	return func(tag, content string) (Field, error) {
		id, rest, err := splitIdentifier(tag, content)
		if err != nil {
			return nil, err
		}
		if err := identifier.check(tag, content, id); err != nil {
			return nil, err
		}
		if len(rest) != 1 {
			return nil, formatError(tag, content, "want a single BIC line")
		}
		bic, err := parseBICLine(tag, content, rest[0])
		if err != nil {
			return nil, err
		}
		return &PartyBIC{RawTag: tag, Party: id, BIC: bic}, nil
	}
}

// AccountBIC is an unprefixed account line followed by a BIC (25P).
type AccountBIC struct {
	RawTag  string
	Account string
	BIC     format.BIC
}

func (f *AccountBIC) Tag() string       { return f.RawTag }
func (f *AccountBIC) Serialize() string { return f.Account + "\n" + f.BIC.String() }

// Validate checks the BIC content.
func (f *AccountBIC) Validate() error {
	if err := f.BIC.Validate(); err != nil {
		return contentError("T27", f, "%v", err)
	}
	return nil
}

func parseAccountBIC(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "35x$4!a2!a2!c[3!c]", content)
	if err != nil {
		return nil, err
	}
	bic, err := format.ParseBIC(vals[1] + vals[2] + vals[3] + vals[4])
	if err != nil {
		return nil, wrapFormat(tag, content, err)
	}
	return &AccountBIC{RawTag: tag, Account: vals[0], BIC: bic}, nil
}

// =============================================================================
// OPTION B: LOCATION
// =============================================================================

// PartyLocation identifies a party by branch location (option B).
type PartyLocation struct {
	RawTag   string
	Party    PartyIdentifier
	Location string
}

func (f *PartyLocation) Tag() string                 { return f.RawTag }
func (f *PartyLocation) Serialize() string           { return joinParty(f.Party, f.Location) }
func (f *PartyLocation) Identifier() PartyIdentifier { return f.Party }

func parsePartyLocation(tag, content string) (Field, error) {
	id, rest, err := splitIdentifier(tag, content)
	if err != nil {
		return nil, err
	}
	if len(rest) > 1 {
		return nil, formatError(tag, content, "want at most one location line")
	}
	p := &PartyLocation{RawTag: tag, Party: id}
	if len(rest) == 1 {
		if _, err := matchFormat(tag, "35x", rest[0]); err != nil {
			return nil, err
		}
		p.Location = rest[0]
	}
	if id.IsZero() && p.Location == "" {
		return nil, formatError(tag, content, "empty party")
	}
	return p, nil
}

// =============================================================================
// OPTION D, H, K, NO LETTER: NAME AND ADDRESS
// =============================================================================

// PartyNameAddress identifies a party by up to four lines of name and address
// (options D, H, K and 59 without letter).
type PartyNameAddress struct {
	RawTag string
	Party  PartyIdentifier
	Lines  []string
}

func (f *PartyNameAddress) Tag() string                 { return f.RawTag }
func (f *PartyNameAddress) Serialize() string           { return joinParty(f.Party, f.Lines...) }
func (f *PartyNameAddress) Identifier() PartyIdentifier { return f.Party }

func partyNameAddressParser(identifier presence) parseFunc {
	return func(tag, content string) (Field, error) {
		id, rest, err := splitIdentifier(tag, content)
		if err != nil {
			return nil, err
		}
		if err := identifier.check(tag, content, id); err != nil {
			return nil, err
		}
		if _, err := matchFormat(tag, "4*35x", strings.Join(rest, "\n")); err != nil {
			return nil, err
		}
		return &PartyNameAddress{RawTag: tag, Party: id, Lines: rest}, nil
	}
}

// =============================================================================
// OPTION F: STRUCTURED
// =============================================================================

// PartyStructured identifies a party by an identifier line followed by
// numbered lines such as "1/NAME" and "2/ADDRESS" (option F).
type PartyStructured struct {
	RawTag string
	IDLine string
	Lines  []string
}

func (f *PartyStructured) Tag() string { return f.RawTag }

func (f *PartyStructured) Serialize() string {
	if f.IDLine == "" {
		return strings.Join(f.Lines, "\n")
	}
	return f.IDLine + "\n" + strings.Join(f.Lines, "\n")
}

// Identifier returns the identifier line when it is an account.
func (f *PartyStructured) Identifier() PartyIdentifier {
	if !strings.HasPrefix(f.IDLine, "/") {
		return PartyIdentifier{}
	}
	id, err := parsePartyIdentifier(f.RawTag, f.IDLine, f.IDLine)
	if err != nil {
		return PartyIdentifier{}
	}
	return id
}

// Validate checks the line numbers run from 1 to 8 without going back.
func (f *PartyStructured) Validate() error {
	last := byte('0')
	for _, l := range f.Lines {
		if l[0] < last {
			return contentError("T56", f, "line numbers must not decrease")
		}
		last = l[0]
	}
	return nil
}

func parsePartyStructured(tag, content string) (Field, error) {
	lines := strings.Split(content, "\n")
	p := &PartyStructured{RawTag: tag}
	if !isNumberedLine(lines[0]) {
		if _, err := matchFormat(tag, "35x", lines[0]); err != nil {
			return nil, err
		}
		p.IDLine, lines = lines[0], lines[1:]
	}
	if len(lines) == 0 || len(lines) > 4 {
		return nil, formatError(tag, content, "want one to four numbered lines")
	}
	for _, l := range lines {
		if !isNumberedLine(l) {
			return nil, formatError(tag, content, "line %q is not numbered", l)
		}
		if _, err := matchFormat(tag, "1!n/33x", l); err != nil {
			return nil, err
		}
	}
	p.Lines = lines
	return p, nil
}

func isNumberedLine(l string) bool {
	return len(l) >= 3 && l[0] >= '1' && l[0] <= '8' && l[1] == '/'
}

// =============================================================================
// IDENTIFIER PRESENCE
// =============================================================================

type presence int

const (
	identifierOptional presence = iota
	identifierRequired
	identifierForbidden
)

func (p presence) check(tag, content string, id PartyIdentifier) error {
	switch {
	case p == identifierRequired && id.IsZero():
		return formatError(tag, content, "party identifier is mandatory")
	case p == identifierForbidden && !id.IsZero():
		return formatError(tag, content, "party identifier is not allowed")
	}
	return nil
}
