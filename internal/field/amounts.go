package field

import (
	"strconv"
	"time"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/format"
)

// checkCurrencyAmount applies the currency code and currency decimals rules
// shared by every amount field.
func checkCurrencyAmount(f Field, currency string, amount format.Amount) error {
	if !format.IsCurrency(currency) {
		return contentError("T52", f, "invalid currency code %q", currency)
	}
	if max, ok := format.CurrencyDecimals(currency); ok && amount.Decimals() > max {
		return contentError("C03", f, "%s allows at most %d decimal digits", currency, max)
	}
	return nil
}

func parseAmountValue(tag, content, raw string) (format.Amount, error) {
	a, err := format.ParseAmount(raw)
	if err != nil {
		return format.Amount{}, wrapFormat(tag, content, err)
	}
	return a, nil
}

// =============================================================================
// CURRENCY AMOUNT
// =============================================================================

// CurrencyAmount is a currency with an amount (32B, 33B, 71F, 71G).
type CurrencyAmount struct {
	RawTag   string
	Currency string
	Amount   format.Amount
}

func (f *CurrencyAmount) Tag() string       { return f.RawTag }
func (f *CurrencyAmount) Serialize() string { return f.Currency + f.Amount.Raw }
func (f *CurrencyAmount) Validate() error   { return checkCurrencyAmount(f, f.Currency, f.Amount) }

func parseCurrencyAmount(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "3!a15d", content)
	if err != nil {
		return nil, err
	}
	a, err := parseAmountValue(tag, content, vals[1])
	if err != nil {
		return nil, err
	}
	return &CurrencyAmount{RawTag: tag, Currency: vals[0], Amount: a}, nil
}

// =============================================================================
// VALUE DATE, CURRENCY, AMOUNT
// =============================================================================

// ValueDateAmount is a value date, currency and amount (32A).
type ValueDateAmount struct {
	RawTag    string
	ValueDate time.Time
	Currency  string
	Amount    format.Amount
}

func (f *ValueDateAmount) Tag() string { return f.RawTag }

func (f *ValueDateAmount) Serialize() string {
	return format.FormatDate(f.ValueDate) + f.Currency + f.Amount.Raw
}

func (f *ValueDateAmount) Validate() error { return checkCurrencyAmount(f, f.Currency, f.Amount) }

func parseValueDateAmount(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "6!n3!a15d", content)
	if err != nil {
		return nil, err
	}
	d, err := format.ParseDate(vals[0])
	if err != nil {
		return nil, wrapFormat(tag, content, err)
	}
	a, err := parseAmountValue(tag, content, vals[2])
	if err != nil {
		return nil, err
	}
	return &ValueDateAmount{RawTag: tag, ValueDate: d, Currency: vals[1], Amount: a}, nil
}

// =============================================================================
// BALANCE
// =============================================================================

// Balance is a debit/credit mark, date, currency and amount (60a, 62a, 64,
// 65).
type Balance struct {
	RawTag   string
	Mark     string
	Date     time.Time
	Currency string
	Amount   format.Amount
}

func (f *Balance) Tag() string { return f.RawTag }

func (f *Balance) Serialize() string {
	return f.Mark + format.FormatDate(f.Date) + f.Currency + f.Amount.Raw
}

// Validate checks the mark and the currency.
func (f *Balance) Validate() error {
	if f.Mark != "C" && f.Mark != "D" {
		return contentError("T51", f, "debit/credit mark must be C or D")
	}
	return checkCurrencyAmount(f, f.Currency, f.Amount)
}

// Signed returns the amount, negative for a debit balance.
func (f *Balance) Signed() float64 {
	if f.Mark == "D" {
		return -f.Amount.Value
	}
	return f.Amount.Value
}

func parseBalance(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "1!a6!n3!a15d", content)
	if err != nil {
		return nil, err
	}
	d, err := format.ParseDate(vals[1])
	if err != nil {
		return nil, wrapFormat(tag, content, err)
	}
	a, err := parseAmountValue(tag, content, vals[3])
	if err != nil {
		return nil, err
	}
	return &Balance{RawTag: tag, Mark: vals[0], Date: d, Currency: vals[2], Amount: a}, nil
}

// =============================================================================
// FLOOR LIMIT
// =============================================================================

// FloorLimit is a currency, optional debit/credit mark and amount (34F).
type FloorLimit struct {
	RawTag   string
	Currency string
	Mark     string
	Amount   format.Amount
}

func (f *FloorLimit) Tag() string       { return f.RawTag }
func (f *FloorLimit) Serialize() string { return f.Currency + f.Mark + f.Amount.Raw }

// Validate checks the mark and the currency.
func (f *FloorLimit) Validate() error {
	if f.Mark != "" && f.Mark != "C" && f.Mark != "D" {
		return contentError("T51", f, "debit/credit mark must be C or D")
	}
	return checkCurrencyAmount(f, f.Currency, f.Amount)
}

func parseFloorLimit(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "3!a[1!a]15d", content)
	if err != nil {
		return nil, err
	}
	a, err := parseAmountValue(tag, content, vals[2])
	if err != nil {
		return nil, err
	}
	return &FloorLimit{RawTag: tag, Currency: vals[0], Mark: vals[1], Amount: a}, nil
}

// =============================================================================
// ENTRY SUMMARY
// =============================================================================

// EntrySummary is the number and sum of debit or credit entries (90C, 90D).
type EntrySummary struct {
	RawTag   string
	Number   int
	Currency string
	Amount   format.Amount

	number string
}

func (f *EntrySummary) Tag() string { return f.RawTag }

func (f *EntrySummary) Serialize() string {
	n := f.number
	if n == "" {
		n = strconv.Itoa(f.Number)
	}
	return n + f.Currency + f.Amount.Raw
}

func (f *EntrySummary) Validate() error { return checkCurrencyAmount(f, f.Currency, f.Amount) }

func parseEntrySummary(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "5n3!a15d", content)
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(vals[0])
	if err != nil {
		return nil, wrapFormat(tag, content, err)
	}
	a, err := parseAmountValue(tag, content, vals[2])
	if err != nil {
		return nil, err
	}
	return &EntrySummary{RawTag: tag, Number: n, Currency: vals[1], Amount: a, number: vals[0]}, nil
}
