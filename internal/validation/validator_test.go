package validation

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
)

// wire builds a message from BELGIUM to the given receiver BIC.
func wire(mt, receiver string, lines ...string) string {
	return fmt.Sprintf("{1:F01BANKBEBBAXXX0000000000}{2:I%s%sXN}{4:\n%s\n-}",
		mt, receiver, strings.Join(lines, "\n"))
}

func parse(t *testing.T, raw string) *message.Message {
	t.Helper()
	m, err := message.Parse(raw)
	require.NoError(t, err)
	return m
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func mt101(transaction ...string) string {
	lines := []string{
		":20:11FF99RR",
		":28D:1/1",
		":50H:/12345\nORDERING CO",
		":30:250103",
	}
	return wire("101", "BANKDEFFXXX", append(lines, transaction...)...)
}

var mt103Valid = []string{
	":20:REF-001",
	":23B:CRED",
	":32A:250101EUR1000,00",
	":50K:/12345\nJOHN DOE",
	":59:/DE89\nJANE DOE",
	":71A:SHA",
}

// =============================================================================
// SCENARIOS
// =============================================================================

func TestMinimalMessageIsValid(t *testing.T) {
	m := parse(t, wire("900", "BANKDEFFXXX",
		":20:C11126A1378",
		":21:5482ABC",
		":25:9-9876543",
		":32A:250102USD233530,",
	))
	assert.Empty(t, Validate(m, false))
	assert.Empty(t, Validate(m, true))
}

func TestExchangeRateWithoutDealReference(t *testing.T) {
	m := parse(t, mt101(
		":21:TX1",
		":32B:EUR100,00",
		":33B:USD110,00",
		":59:/DE89370400440532013000\nBENEFICIARY",
		":71A:SHA",
		":36:0,9",
	))

	errs := Validate(m, false)
	require.Len(t, errs, 1)
	assert.Equal(t, "D54", errs[0].Code)
	assert.Equal(t, "MT101-C1", errs[0].RuleID)
	assert.Equal(t, "21F", errs[0].Tag)
	assert.Equal(t, "B", errs[0].Sequence)
	assert.Equal(t, 1, errs[0].Instance)
}

// =============================================================================
// MODES
// =============================================================================

func mt103Broken() string {
	return wire("103", "BANKUS33XXX",
		":20:REF-002",
		":23B:CRED",
		":32A:250101EUR1000,00",
		":50K:/12345\nJOHN DOE",
		":56A:BANKDEFF",
		":59:/DE89\nJANE DOE",
		":71A:OUR",
		":71F:EUR5,00",
	)
}

func TestCollectAll(t *testing.T) {
	m := parse(t, mt103Broken())
	assert.Equal(t, []string{"C81", "E13", "D51"}, codes(Validate(m, false)))
}

func TestStopOnFirstError(t *testing.T) {
	m := parse(t, mt103Broken())
	errs := Validate(m, true)
	require.Len(t, errs, 1)
	assert.Equal(t, "C81", errs[0].Code)
}

func TestDisabledRules(t *testing.T) {
	m := parse(t, mt103Broken())

	errs := Default.Validate(m, Options{DisabledRules: []string{"C81", "MT103-C10"}})
	assert.Equal(t, []string{"D51"}, codes(errs))
}

func TestCheckResult(t *testing.T) {
	m := parse(t, mt103Broken())
	result := Default.Check(m, Options{})

	assert.False(t, result.Valid())
	assert.Equal(t, "103", result.MessageType)
	assert.Equal(t, "REF-002", result.Reference)
	assert.Equal(t, len(Default.Rules("103")), result.RulesChecked)
	assert.Equal(t, 3, result.RulesFailed)
	assert.Equal(t, []string{"C81", "E13", "D51"}, result.Codes())
}

// =============================================================================
// MT103
// =============================================================================

func TestMT103Valid(t *testing.T) {
	m := parse(t, wire("103", "BANKUS33XXX", mt103Valid...))
	assert.Empty(t, Validate(m, false))
}

func TestMT103InstructedAmountWithinEEA(t *testing.T) {
	m := parse(t, wire("103", "BANKDEFFXXX", mt103Valid...))
	assert.Equal(t, []string{"D49"}, codes(Validate(m, false)))

	withAmount := append([]string{}, mt103Valid[:3]...)
	withAmount = append(withAmount, ":33B:EUR1000,00")
	withAmount = append(withAmount, mt103Valid[3:]...)
	m = parse(t, wire("103", "BANKDEFFXXX", withAmount...))
	assert.Empty(t, Validate(m, false))
}

func TestMT103Rules(t *testing.T) {
	tests := []struct {
		name    string
		replace map[string]string
		want    []string
	}{
		{
			name:    "rate without currency difference",
			replace: map[string]string{":71A:SHA": ":71A:SHA\n:36:1,1"},
			want:    []string{"D75"},
		},
		{
			name:    "priority with invalid instruction",
			replace: map[string]string{":23B:CRED": ":23B:SPRI\n:23E:CHQB"},
			want:    []string{"E01", "E18"},
		},
		{
			name:    "standard with instruction",
			replace: map[string]string{":23B:CRED": ":23B:SSTD\n:23E:SDVA"},
			want:    []string{"E02"},
		},
		{
			name:    "beneficiary charges without sender charges",
			replace: map[string]string{":71A:SHA": ":71A:BEN"},
			want:    []string{"E15"},
		},
		{
			name:    "phone instruction without account with institution",
			replace: map[string]string{":23B:CRED": ":23B:CRED\n:23E:PHON/0123456"},
			want:    []string{"E45"},
		},
		{
			name:    "third reimbursement without correspondents",
			replace: map[string]string{":50K:/12345\nJOHN DOE": ":50K:/12345\nJOHN DOE\n:55A:BANKFRPP"},
			want:    []string{"E06"},
		},
		{
			name:    "shared charges with receiver charges",
			replace: map[string]string{":71A:SHA": ":71A:SHA\n:71G:EUR1,00"},
			want:    []string{"D50", "D51"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := wire("103", "BANKUS33XXX", mt103Valid...)
			for old, repl := range tt.replace {
				raw = strings.Replace(raw, old, repl, 1)
			}
			m := parse(t, raw)
			assert.Equal(t, tt.want, codes(Validate(m, false)))
		})
	}
}

// =============================================================================
// MT101
// =============================================================================

func TestMT101InstructionCodes(t *testing.T) {
	m := parse(t, mt101(
		":21:TX1",
		":23E:XXXX",
		":23E:URGP/INFO",
		":23E:CMSW",
		":23E:CMTO",
		":23E:OTHR/FIRST",
		":23E:OTHR/SECOND",
		":23E:NETS",
		":23E:NETS",
		":32B:EUR100,00",
		":59:/DE89370400440532013000\nBENEFICIARY",
		":71A:SHA",
	))

	errs := Validate(m, false)
	assert.Equal(t, []string{"T47", "D97", "E46", "D98"}, codes(errs))
	for _, e := range errs {
		assert.Equal(t, "MT101-23E", e.RuleID)
	}
}

func TestMT101OrderingCustomerPlacement(t *testing.T) {
	transaction := func(ref, extra string) []string {
		lines := []string{":21:" + ref}
		if extra != "" {
			lines = append(lines, extra)
		}
		return append(lines, ":32B:EUR100,00", ":59:/DE89370400440532013000\nBENEFICIARY", ":71A:SHA")
	}

	t.Run("in both places", func(t *testing.T) {
		m := parse(t, mt101(transaction("TX1", ":50H:/999\nOTHER CO")...))
		assert.Equal(t, []string{"D61"}, codes(Validate(m, false)))
	})

	t.Run("nowhere", func(t *testing.T) {
		raw := strings.Replace(mt101(transaction("TX1", "")...), ":50H:/12345\nORDERING CO\n", "", 1)
		m := parse(t, raw)
		assert.Equal(t, []string{"D61"}, codes(Validate(m, false)))
	})

	t.Run("instructing party in some transactions", func(t *testing.T) {
		lines := append(transaction("TX1", ":50L:PARTY ONE"), transaction("TX2", "")...)
		m := parse(t, mt101(lines...))
		errs := Validate(m, false)
		require.Equal(t, []string{"D62"}, codes(errs))
		assert.Equal(t, 2, errs[0].Instance)
	})
}

// =============================================================================
// AGGREGATES
// =============================================================================

func mt201(total string, transactions ...[2]string) string {
	lines := []string{":19:" + total, ":30:250101"}
	for i, tx := range transactions {
		lines = append(lines,
			fmt.Sprintf(":20:T%d", i+1),
			":32B:"+tx[0]+tx[1],
			":57A:BANKDEFF",
		)
	}
	return wire("201", "BANKDEFFXXX", lines...)
}

func TestMT201(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"valid", mt201("300,00", [2]string{"EUR", "100,00"}, [2]string{"EUR", "200,00"}), nil},
		{"sum mismatch", mt201("350,00", [2]string{"EUR", "100,00"}, [2]string{"EUR", "200,00"}), []string{"C01"}},
		{"mixed currencies", mt201("300,00", [2]string{"EUR", "100,00"}, [2]string{"USD", "200,00"}), []string{"C02"}},
		{"single transaction", mt201("100,00", [2]string{"EUR", "100,00"}), []string{"T10"}},
		{"fractions", mt201("0,3", [2]string{"EUR", "0,1"}, [2]string{"EUR", "0,2"}), nil},
		{"mixed decimal counts", mt201("100,5", [2]string{"EUR", "100,"}, [2]string{"EUR", "0,5"}), nil},
		{"mixed decimal counts total without fraction", mt201("101,", [2]string{"EUR", "100,5"}, [2]string{"EUR", "0,50"}), nil},
		{"mixed decimal counts mismatch", mt201("100,", [2]string{"EUR", "100,"}, [2]string{"EUR", "0,5"}), []string{"C01"}},
		{"large amounts", mt201("2999999999999,97",
			[2]string{"EUR", "999999999999,99"},
			[2]string{"EUR", "999999999999,99"},
			[2]string{"EUR", "999999999999,99"}), nil},
		{"large amounts off by one cent", mt201("2999999999999,96",
			[2]string{"EUR", "999999999999,99"},
			[2]string{"EUR", "999999999999,99"},
			[2]string{"EUR", "999999999999,99"}), []string{"C01"}},
		{"full length amounts", mt201("999999999999990,", tenTimes("99999999999999,")...), nil},
		{"full length amounts off by one", mt201("999999999999989,", tenTimes("99999999999999,")...), []string{"C01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := parse(t, tt.raw)
			errs := Validate(m, false)
			if tt.want == nil {
				assert.Empty(t, errs)
				return
			}
			assert.Equal(t, tt.want, codes(errs))
		})
	}
}

func tenTimes(amount string) [][2]string {
	out := make([][2]string, 10)
	for i := range out {
		out[i] = [2]string{"EUR", amount}
	}
	return out
}

func TestSumMismatchReportsExactSum(t *testing.T) {
	m := parse(t, mt201("2999999999999,96",
		[2]string{"EUR", "999999999999,99"},
		[2]string{"EUR", "999999999999,99"},
		[2]string{"EUR", "999999999999,99"}))

	errs := Validate(m, false)
	require.Len(t, errs, 1)
	assert.Equal(t, "19", errs[0].Tag)
	assert.Equal(t, "2999999999999,96", errs[0].Value)
	assert.Contains(t, errs[0].Message, "2999999999999,97")

	errs = Validate(parse(t, mt201("100,", [2]string{"EUR", "100,"}, [2]string{"EUR", "0,5"})), false)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Message, "100,5")
}

func TestStatementCurrencies(t *testing.T) {
	m := parse(t, wire("940", "BANKDEFFXXX",
		":20:STMT1",
		":25:123456789",
		":28C:1/1",
		":60F:C250101EUR1000,00",
		":62F:C250101USD1000,00",
	))
	errs := Validate(m, false)
	require.Equal(t, []string{"C27"}, codes(errs))
	assert.Equal(t, "62F", errs[0].Tag)
}

func TestFloorLimitMarks(t *testing.T) {
	report := func(limits ...string) string {
		lines := []string{":20:RPT1", ":25:123456789", ":28C:1/1"}
		for _, l := range limits {
			lines = append(lines, ":34F:"+l)
		}
		lines = append(lines, ":13D:2501011200+0100")
		return wire("942", "BANKDEFFXXX", lines...)
	}

	assert.Empty(t, Validate(parse(t, report("EUR0,")), false))
	assert.Empty(t, Validate(parse(t, report("EURD100,", "EURC200,")), false))
	assert.Equal(t, []string{"C23"}, codes(Validate(parse(t, report("EURD100,")), false)))
	assert.Equal(t, []string{"C23"}, codes(Validate(parse(t, report("EURC100,", "EURD200,")), false)))
}

func TestConfirmationOfCredit(t *testing.T) {
	base := []string{":20:C11126A1378", ":21:5482ABC", ":25:9-9876543", ":32A:250102USD233530,"}

	m := parse(t, wire("910", "BANKDEFFXXX", base...))
	assert.Equal(t, []string{"C06"}, codes(Validate(m, false)))

	m = parse(t, wire("910", "BANKDEFFXXX", append(base, ":52A:BANKFRPP")...))
	assert.Empty(t, Validate(m, false))

	m = parse(t, wire("910", "BANKDEFFXXX", append(base, ":50K:JOHN DOE", ":52A:BANKFRPP")...))
	assert.Equal(t, []string{"C06"}, codes(Validate(m, false)))
}

// =============================================================================
// FIELD CONTENT AND UETR
// =============================================================================

func TestFieldContent(t *testing.T) {
	m := parse(t, wire("900", "BANKDEFFXXX",
		":20:C11126A1378",
		":21:5482ABC",
		":25:9-9876543",
		":32A:250102USD1,234",
		":52A:BANKQQ22",
	))
	errs := Validate(m, false)
	assert.Equal(t, []string{"C03", "T27"}, codes(errs))
	assert.Equal(t, "MT900-FIELDS", errs[0].RuleID)
	assert.Equal(t, "32A", errs[0].Tag)
}

func TestUETR(t *testing.T) {
	tests := []struct {
		name  string
		uetr  string
		valid bool
	}{
		{"version 4", "e3a2b1c4-5d6e-4f70-8a9b-0c1d2e3f4a5b", true},
		{"uppercase", "E3A2B1C4-5D6E-4F70-8A9B-0C1D2E3F4A5B", false},
		{"version 1", "e3a2b1c4-5d6e-1f70-8a9b-0c1d2e3f4a5b", false},
		{"not a uuid", "REF-0001", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := wire("103", "BANKUS33XXX", mt103Valid...)
			raw = strings.Replace(raw, "{4:", "{3:{121:"+tt.uetr+"}}{4:", 1)
			errs := Validate(parse(t, raw), false)
			if tt.valid {
				assert.Empty(t, errs)
				return
			}
			require.Equal(t, []string{"U13"}, codes(errs))
			assert.Equal(t, "121", errs[0].Tag)
		})
	}
}

// =============================================================================
// ENGINE
// =============================================================================

func TestEngineTypes(t *testing.T) {
	assert.Equal(t, []string{"101", "103", "199", "201", "202", "900", "910", "940", "942"}, Default.Types())
	assert.Len(t, Default.Rules("999"), 2)

	for _, mt := range Default.Types() {
		rules := Default.Rules(mt)
		require.NotEmpty(t, rules)
		assert.Equal(t, "MT"+mt+"-FIELDS", rules[0].ID)
		for _, r := range rules {
			assert.NotEmpty(t, r.Description, r.ID)
			assert.NotNil(t, r.Check, r.ID)
		}
	}
}

func TestCustomEngine(t *testing.T) {
	m := parse(t, wire("199", "BANKDEFFXXX", ":20:FREE", ":79:HELLO"))

	always := Rule{
		ID:          "X1",
		Code:        "X99",
		Description: "always fails",
		Check: func(m *message.Message) []ValidationError {
			return []ValidationError{{Tag: "79", Message: "no free text"}}
		},
	}
	e := NewEngine(&RuleSet{MessageType: "199", Rules: []Rule{always, always}})

	errs := e.Validate(m, Options{})
	require.Len(t, errs, 2)
	assert.Equal(t, "X99", errs[0].Code)
	assert.Equal(t, "X1", errs[0].RuleID)
	assert.Equal(t, "always fails", errs[0].Rule)

	assert.Len(t, e.Validate(m, Options{StopOnFirstError: true}), 1)
}

func TestValidationErrorString(t *testing.T) {
	e := ValidationError{RuleID: "MT101-C1", Code: "D54", Tag: "21F", Message: "missing", Sequence: "B", Instance: 2}
	assert.Equal(t, "[D54] MT101-C1 sequence B[2] field '21F': missing (value: '')", e.Error())

	e = ValidationError{RuleID: "MT201-C3", Code: "T10", Message: "too few"}
	assert.Equal(t, "[T10] MT201-C3: too few", e.Error())
	assert.Contains(t, FormatErrors([]ValidationError{e, e}), "too few\n[T10]")
}
