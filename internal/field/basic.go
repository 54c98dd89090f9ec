package field

import (
	"strings"
	"time"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/envelope"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/format"
)

// =============================================================================
// SINGLE LINE TEXT
// =============================================================================

// Text is a single-line value: references (20, 21, 21R, 21F), codes (23B,
// 26T, 71A) and identifications (25, 50L).
type Text struct {
	RawTag string
	Value  string
}

func (f *Text) Tag() string       { return f.RawTag }
func (f *Text) Serialize() string { return f.Value }

var (
	bankOperationCodes = codeSet("CRED", "CRTS", "SPAY", "SPRI", "SSTD")
	chargeCodes        = codeSet("BEN", "OUR", "SHA")
)

// Validate checks references and code words.
func (f *Text) Validate() error {
	switch envelope.Normalize(f.RawTag) {
	case "20", "21", "21R", "21F":
		if strings.HasPrefix(f.Value, "/") || strings.HasSuffix(f.Value, "/") || strings.Contains(f.Value, "//") {
			return contentError("T26", f, "reference must not start or end with a slash or contain two consecutive slashes")
		}
	case "23B":
		if !bankOperationCodes[f.Value] {
			return contentError("T36", f, "unknown bank operation code")
		}
	case "71A":
		if !chargeCodes[f.Value] {
			return contentError("T08", f, "unknown details of charges code")
		}
	}
	return nil
}

func textParser(spec string) parseFunc {
	return func(tag, content string) (Field, error) {
		if _, err := matchFormat(tag, spec, content); err != nil {
			return nil, err
		}
		return &Text{RawTag: tag, Value: content}, nil
	}
}

// =============================================================================
// NARRATIVE
// =============================================================================

// Narrative is a bounded multi-line free text (70, 72, 77B, 79, 86).
type Narrative struct {
	RawTag string
	Lines  []string
}

func (f *Narrative) Tag() string       { return f.RawTag }
func (f *Narrative) Serialize() string { return strings.Join(f.Lines, "\n") }

func narrativeParser(spec string) parseFunc {
	return func(tag, content string) (Field, error) {
		if _, err := matchFormat(tag, spec, content); err != nil {
			return nil, err
		}
		return &Narrative{RawTag: tag, Lines: strings.Split(content, "\n")}, nil
	}
}

// =============================================================================
// ACCOUNT, DATE, RATE, SUM
// =============================================================================

// Account is an account identification introduced by a slash (25A).
type Account struct {
	RawTag  string
	Account string
}

func (f *Account) Tag() string       { return f.RawTag }
func (f *Account) Serialize() string { return "/" + f.Account }

func parseAccount(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "/34x", content)
	if err != nil {
		return nil, err
	}
	return &Account{RawTag: tag, Account: vals[0]}, nil
}

// Date is a YYMMDD date (30).
type Date struct {
	RawTag string
	Date   time.Time
}

func (f *Date) Tag() string       { return f.RawTag }
func (f *Date) Serialize() string { return format.FormatDate(f.Date) }

func parseDate(tag, content string) (Field, error) {
	if _, err := matchFormat(tag, "6!n", content); err != nil {
		return nil, err
	}
	d, err := format.ParseDate(content)
	if err != nil {
		return nil, wrapFormat(tag, content, err)
	}
	return &Date{RawTag: tag, Date: d}, nil
}

// Rate is an exchange rate (36).
type Rate struct {
	RawTag string
	Rate   format.Amount
}

func (f *Rate) Tag() string       { return f.RawTag }
func (f *Rate) Serialize() string { return f.Rate.Raw }

func parseRate(tag, content string) (Field, error) {
	if _, err := matchFormat(tag, "12d", content); err != nil {
		return nil, err
	}
	a, err := format.ParseAmount(content)
	if err != nil {
		return nil, wrapFormat(tag, content, err)
	}
	return &Rate{RawTag: tag, Rate: a}, nil
}

// Validate rejects a zero rate.
func (f *Rate) Validate() error {
	if f.Rate.IsZero() {
		return contentError("T40", f, "exchange rate must not be zero")
	}
	return nil
}

// Sum is a control total without currency (19).
type Sum struct {
	RawTag string
	Amount format.Amount
}

func (f *Sum) Tag() string       { return f.RawTag }
func (f *Sum) Serialize() string { return f.Amount.Raw }

func parseSum(tag, content string) (Field, error) {
	if _, err := matchFormat(tag, "17d", content); err != nil {
		return nil, err
	}
	a, err := format.ParseAmount(content)
	if err != nil {
		return nil, wrapFormat(tag, content, err)
	}
	return &Sum{RawTag: tag, Amount: a}, nil
}

// =============================================================================
// CODES AND NUMBERING
// =============================================================================

// InstructionCode is a code word with optional additional information (23E).
type InstructionCode struct {
	RawTag string
	Code   string
	Info   string
}

func (f *InstructionCode) Tag() string { return f.RawTag }

func (f *InstructionCode) Serialize() string {
	if f.Info == "" {
		return f.Code
	}
	return f.Code + "/" + f.Info
}

func parseInstructionCode(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "4!c[/30x]", content)
	if err != nil {
		return nil, err
	}
	return &InstructionCode{RawTag: tag, Code: vals[0], Info: vals[1]}, nil
}

// StatementNumber is a statement number with optional sequence number (28C).
type StatementNumber struct {
	RawTag    string
	Statement string
	Sequence  string
}

func (f *StatementNumber) Tag() string { return f.RawTag }

func (f *StatementNumber) Serialize() string {
	if f.Sequence == "" {
		return f.Statement
	}
	return f.Statement + "/" + f.Sequence
}

func parseStatementNumber(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "5n[/5n]", content)
	if err != nil {
		return nil, err
	}
	return &StatementNumber{RawTag: tag, Statement: vals[0], Sequence: vals[1]}, nil
}

// MessageIndex is a message index over a total (28D).
type MessageIndex struct {
	RawTag string
	Index  string
	Total  string
}

func (f *MessageIndex) Tag() string       { return f.RawTag }
func (f *MessageIndex) Serialize() string { return f.Index + "/" + f.Total }

func parseMessageIndex(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "5n/5n", content)
	if err != nil {
		return nil, err
	}
	return &MessageIndex{RawTag: tag, Index: vals[0], Total: vals[1]}, nil
}

func codeSet(codes ...string) map[string]bool {
	m := make(map[string]bool, len(codes))
	for _, c := range codes {
		m[c] = true
	}
	return m
}
