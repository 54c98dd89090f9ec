package format

import (
	"fmt"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// =============================================================================
// BIC
// =============================================================================

// BIC is a Bank Identifier Code: 4!a bank, 2!a country, 2!c location and an
// optional 3!c branch.
type BIC struct {
	Bank     string
	Country  string
	Location string
	Branch   string
}

// ParseBIC splits an 8 or 11 character BIC. It checks structure only; use
// Validate for content rules.
func ParseBIC(s string) (BIC, error) {
	if len(s) != 8 && len(s) != 11 {
		return BIC{}, fmt.Errorf("BIC %q: want 8 or 11 characters", s)
	}
	b := BIC{Bank: s[0:4], Country: s[4:6], Location: s[6:8]}
	if len(s) == 11 {
		b.Branch = s[8:11]
	}
	if !Conforms('a', b.Bank) || !Conforms('a', b.Country) ||
		!Conforms('c', b.Location) || !Conforms('c', b.Branch) {
		return BIC{}, fmt.Errorf("BIC %q: invalid characters", s)
	}
	return b, nil
}

// String returns the BIC as written.
func (b BIC) String() string {
	return b.Bank + b.Country + b.Location + b.Branch
}

// BIC8 returns the BIC without its branch code.
func (b BIC) BIC8() string {
	return b.Bank + b.Country + b.Location
}

// Validate checks the country is an ISO 3166 country and the branch code is
// not a reserved X-code other than XXX.
func (b BIC) Validate() error {
	if !IsCountry(b.Country) {
		return fmt.Errorf("BIC %s: unknown country code %q", b, b.Country)
	}
	if strings.HasPrefix(b.Branch, "X") && b.Branch != "XXX" {
		return fmt.Errorf("BIC %s: branch code %q is reserved", b, b.Branch)
	}
	return nil
}

// IsCountry reports whether code is an ISO 3166-1 alpha-2 country.
func IsCountry(code string) bool {
	r, err := language.ParseRegion(code)
	return err == nil && r.IsCountry() && r.String() == code
}

// =============================================================================
// CURRENCY
// =============================================================================

// IsCurrency reports whether code is an ISO 4217 currency.
func IsCurrency(code string) bool {
	if len(code) != 3 || !Conforms('a', code) {
		return false
	}
	_, err := currency.ParseISO(code)
	return err == nil
}

// CurrencyDecimals returns the number of minor-unit digits of a currency.
func CurrencyDecimals(code string) (int, bool) {
	u, err := currency.ParseISO(code)
	if err != nil {
		return 0, false
	}
	scale, _ := currency.Standard.Rounding(u)
	return scale, true
}
