package field

import (
	"strings"
	"time"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/format"
)

const statementLineFormat = "6!n[4!n]2a[1!a]15d1!a3!c16x[//16x][$34x]"

var entryMarks = codeSet("C", "D", "RC", "RD", "EC", "ED")

// StatementLine is one booked or pending entry of a statement (61).
type StatementLine struct {
	RawTag string

	ValueDate time.Time

	// EntryDate is the MMDD booking date, empty when absent.
	EntryDate string

	// Mark is the debit/credit mark: C, D, RC, RD, EC or ED.
	Mark string

	// FundsCode is the third character of the currency code, when given.
	FundsCode string

	Amount format.Amount

	// TransactionType is the type and identification code ("NTRF", "S103").
	TransactionType string

	CustomerReference string
	BankReference     string
	Supplementary     string
}

func (f *StatementLine) Tag() string { return f.RawTag }

func (f *StatementLine) Serialize() string {
	var b strings.Builder
	b.WriteString(format.FormatDate(f.ValueDate))
	b.WriteString(f.EntryDate)
	b.WriteString(f.Mark)
	b.WriteString(f.FundsCode)
	b.WriteString(f.Amount.Raw)
	b.WriteString(f.TransactionType)
	b.WriteString(f.CustomerReference)
	if f.BankReference != "" {
		b.WriteString("//")
		b.WriteString(f.BankReference)
	}
	if f.Supplementary != "" {
		b.WriteString("\n")
		b.WriteString(f.Supplementary)
	}
	return b.String()
}

// Validate checks the debit/credit mark and the transaction type.
func (f *StatementLine) Validate() error {
	if !entryMarks[f.Mark] {
		return contentError("T51", f, "invalid debit/credit mark %q", f.Mark)
	}
	switch f.TransactionType[0] {
	case 'S', 'N', 'F':
	default:
		return contentError("T53", f, "transaction type must start with S, N or F")
	}
	return nil
}

// Signed returns the amount, negative for debits and reversals of credits.
func (f *StatementLine) Signed() float64 {
	switch f.Mark {
	case "D", "RC", "ED":
		return -f.Amount.Value
	}
	return f.Amount.Value
}

func parseStatementLine(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, statementLineFormat, content)
	if err != nil {
		return nil, err
	}
	d, err := format.ParseDate(vals[0])
	if err != nil {
		return nil, wrapFormat(tag, content, err)
	}
	a, err := parseAmountValue(tag, content, vals[4])
	if err != nil {
		return nil, err
	}

	mark, funds := vals[2], vals[3]
	// "CD100,": the longest mark is tried first, so a funds code can end up
	// inside it
	if !entryMarks[mark] && funds == "" && len(mark) == 2 {
		mark, funds = mark[:1], mark[1:]
	}

	custRef, bankRef := vals[7], vals[8]
	if bankRef == "" {
		if i := strings.Index(custRef, "//"); i >= 0 && i+2 < len(custRef) {
			custRef, bankRef = custRef[:i], custRef[i+2:]
		}
	}

	return &StatementLine{
		RawTag:            tag,
		ValueDate:         d,
		EntryDate:         vals[1],
		Mark:              mark,
		FundsCode:         funds,
		Amount:            a,
		TransactionType:   vals[5] + vals[6],
		CustomerReference: custRef,
		BankReference:     bankRef,
		Supplementary:     vals[9],
	}, nil
}
