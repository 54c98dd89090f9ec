package format

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a decimal amount as written on the wire. Raw is what
// serialization emits, so "1234567,89" never becomes "1234567.89".
type Amount struct {
	Value float64
	Raw   string
}

var (
	ErrEmptyAmount     = errors.New("empty amount")
	ErrAmountSeparator = errors.New("amount has more than one decimal separator")
	ErrAmountInteger   = errors.New("amount has no integer part")
)

// ParseAmount accepts digits with at most one decimal separator, either
// ',' or '.'.
func ParseAmount(s string) (Amount, error) {
	if s == "" {
		return Amount{}, ErrEmptyAmount
	}
	sep := strings.IndexAny(s, ",.")
	if sep >= 0 && strings.IndexAny(s[sep+1:], ",.") >= 0 {
		return Amount{}, ErrAmountSeparator
	}
	if sep == 0 {
		return Amount{}, ErrAmountInteger
	}
	for i := 0; i < len(s); i++ {
		if i != sep && (s[i] < '0' || s[i] > '9') {
			return Amount{}, fmt.Errorf("invalid amount character %q", s[i])
		}
	}

	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return Amount{}, fmt.Errorf("amount %q: %w", s, err)
	}
	return Amount{Value: v, Raw: s}, nil
}

// NewAmount formats v with the given number of decimals and a decimal comma.
func NewAmount(v float64, decimals int) Amount {
	raw := strconv.FormatFloat(v, 'f', decimals, 64)
	raw = strings.Replace(raw, ".", ",", 1)
	if decimals == 0 {
		raw += ","
	}
	return Amount{Value: v, Raw: raw}
}

// Decimals returns the number of digits after the separator.
func (a Amount) Decimals() int {
	sep := strings.IndexAny(a.Raw, ",.")
	if sep < 0 {
		return 0
	}
	return len(a.Raw) - sep - 1
}

// Exact returns the amount as an exact decimal. Sums and comparisons of
// wire amounts go through Exact; Value is for display and ratios only.
func (a Amount) Exact() decimal.Decimal {
	s := strings.TrimRight(strings.Replace(a.Raw, ",", ".", 1), ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NewFromFloat(a.Value)
	}
	return d
}

// FormatDecimal writes d with the given number of decimals and a decimal
// comma, the way amounts appear on the wire.
func FormatDecimal(d decimal.Decimal, decimals int) string {
	raw := strings.Replace(d.StringFixed(int32(decimals)), ".", ",", 1)
	if decimals == 0 {
		raw += ","
	}
	return raw
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool { return a.Value == 0 }

// String returns the wire literal.
func (a Amount) String() string { return a.Raw }
