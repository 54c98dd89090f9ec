package message

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/envelope"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/field"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
)

const (
	inputHeaders  = "{1:F01BANKBEBBAXXX0000000000}{2:I%sBANKDEFFXXXXN}"
	outputHeaders = "{1:F01BANKDEFFAXXX0000000000}{2:O%s1200250101BANKBEBBAXXX00000000002501011201N}"
)

func wire(mt string, lines ...string) string {
	return fmt.Sprintf(inputHeaders, mt) + "{4:\n" + strings.Join(lines, "\n") + "\n-}"
}

var mt103 = "{1:F01BANKBEBBAXXX0000000000}{2:I103BANKDEFFXXXXN}" +
	"{3:{108:MUR123}{121:e3a2b1c4-5d6e-4f70-8a9b-0c1d2e3f4a5b}}" +
	"{4:\n" +
	":20:REF-001\n" +
	":13C:/SNDTIME/1230+0100\n" +
	":23B:CRED\n" +
	":32A:250101EUR1000,00\n" +
	":50K:/12345\nJOHN DOE\nMAIN STREET 1\n" +
	":59:/DE89\nJANE DOE\n" +
	":71A:SHA\n" +
	"-}{5:{CHK:ABCDEF123456}}"

var mt900 = wire("900",
	":20:C11126A1378",
	":21:5482ABC",
	":25:9-9876543",
	":32A:250102USD233530,",
)

func mt101(n int) string {
	lines := []string{
		":20:11FF99RR",
		":28D:1/1",
		":50H:/12345\nORDERING CO\nHIGH STREET 5",
		":30:250103",
	}
	for i := 1; i <= n; i++ {
		lines = append(lines,
			fmt.Sprintf(":21:TX%d", i),
			fmt.Sprintf(":32B:EUR%d,00", i*100),
			fmt.Sprintf(":59:/DE8937040044053201300%d\nBENEFICIARY %d", i, i),
			":71A:SHA",
		)
	}
	return wire("101", lines...)
}

var mt940CRLF = "{1:F01BANKBEBBAXXX0000000000}{2:I940BANKDEFFXXXXN}{4:\r\n" +
	":20:STMT1\r\n" +
	":25:123456789\r\n" +
	":28C:1/1\r\n" +
	":60F:C250101EUR1000,00\r\n" +
	":61:2501010101D100,00NTRFREF1\r\n" +
	":86:PAYMENT ONE\r\n" +
	":61:2501020102C50,00NTRFREF2\r\n" +
	":62F:C250102EUR950,00\r\n" +
	":86:STATEMENT INFO\r\n" +
	"-}"

// =============================================================================
// PARSE AND SERIALIZE
// =============================================================================

func TestParseMT103(t *testing.T) {
	m, err := Parse(mt103)
	require.NoError(t, err)

	assert.Equal(t, "103", m.Type)
	assert.Equal(t, "REF-001", m.Reference())
	assert.Equal(t, []string{"20", "13C", "23B", "32A", "50", "59", "71A"}, m.FieldOrder)

	amount, ok := m.Get("32A").(*field.ValueDateAmount)
	require.True(t, ok)
	assert.Equal(t, "EUR", amount.Currency)
	assert.Equal(t, "1000,00", amount.Amount.Raw)

	ordering, ok := m.Get("50").(*field.PartyNameAddress)
	require.True(t, ok)
	assert.Equal(t, "50K", ordering.Tag())
	assert.Equal(t, "12345", ordering.Party.Account)

	uetr, ok := m.UETR()
	assert.True(t, ok)
	assert.Equal(t, "e3a2b1c4-5d6e-4f70-8a9b-0c1d2e3f4a5b", uetr)
	assert.Equal(t, "{CHK:ABCDEF123456}", m.Trailer)
}

func TestSerializeRoundTrip(t *testing.T) {
	for name, raw := range map[string]string{
		"mt103":              mt103,
		"mt900":              mt900,
		"mt101":              mt101(3),
		"mt940 crlf":         mt940CRLF,
		"letterless 50":      strings.Replace(mt103, ":50K:/12345\nJOHN DOE\nMAIN STREET 1", ":50:/12345\nBANKBEBBXXX", 1),
		"inline block 4":     strings.Replace(mt900, "{4:\n", "{4:", 1),
		"no break before -}": strings.Replace(mt900, "\n-}", "-}", 1),
	} {
		t.Run(name, func(t *testing.T) {
			m, err := Parse(raw)
			require.NoError(t, err)
			assert.Equal(t, raw, m.Serialize())

			again, err := Parse(m.Serialize())
			require.NoError(t, err)
			assert.Equal(t, m.FieldOrder, again.FieldOrder)
		})
	}
}

func TestFieldOrderCoversEveryOccurrence(t *testing.T) {
	for _, raw := range []string{mt103, mt900, mt101(4), mt940CRLF} {
		_, fields, err := envelope.Tokenize(raw)
		require.NoError(t, err)

		m, err := Parse(raw)
		require.NoError(t, err)
		assert.Len(t, m.FieldOrder, len(fields))
		for _, tag := range m.FieldOrder {
			assert.NotEmpty(t, m.Fields[tag], tag)
		}
	}
}

// =============================================================================
// REPEATING GROUPS
// =============================================================================

func TestRepeatingGroupCount(t *testing.T) {
	for n := 1; n <= 5; n++ {
		m, err := Parse(mt101(n))
		require.NoError(t, err)

		seq := m.Sequence("B")
		require.NotNil(t, seq)
		require.Equal(t, n, seq.Len())
		for i, inst := range seq.Instances {
			assert.Equal(t, fmt.Sprintf("TX%d", i+1), inst.Get("21").Serialize())
			assert.Equal(t, []string{"21", "32B", "59", "71A"}, inst.Order)
		}
		assert.True(t, m.Body.Has("28D"))
		assert.False(t, m.Body.Has("21"))
	}
}

func TestRepeatingGroupStopsAtNonLeadingTag(t *testing.T) {
	m, err := Parse(mt940CRLF)
	require.NoError(t, err)

	lines := m.Sequence("Lines")
	require.Equal(t, 2, lines.Len())
	assert.True(t, lines.Instances[0].Has("86"))
	assert.False(t, lines.Instances[1].Has("86"))

	// The 86 after 62F belongs to the statement, not to the last line.
	assert.True(t, m.Body.Has("62F"))
	assert.Equal(t, "STATEMENT INFO", m.Body.Get("86").Serialize())
	assert.Len(t, m.All("86"), 2)
}

func TestStatementWithoutLines(t *testing.T) {
	m, err := Parse(wire("940",
		":20:STMT2",
		":25:123456789",
		":28C:2/1",
		":60F:C250101EUR1000,00",
		":62F:C250101EUR1000,00",
		":86:NO MOVEMENTS",
	))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Sequence("Lines").Len())
	assert.True(t, m.Body.Has("86"))
}

func TestMandatorySequenceMissing(t *testing.T) {
	_, err := Parse(mt101(0))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrMissingMandatoryField))
}

// =============================================================================
// FAILURES
// =============================================================================

func TestUnparsedTrailingContent(t *testing.T) {
	_, err := Parse(wire("900",
		":20:C11126A1378",
		":21:5482ABC",
		":25:9-9876543",
		":32A:250102USD233530,",
		":71A:SHA",
	))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnparsedContent))
	kind, ok := types.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, types.UnparsedContent, kind)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{
			name: "missing mandatory",
			raw:  wire("900", ":20:C11126A1378", ":21:5482ABC", ":25:9-9876543"),
			want: types.ErrMissingMandatoryField,
		},
		{
			name: "unsupported type",
			raw:  wire("999", ":20:X", ":79:FREE TEXT"),
			want: types.ErrUnsupportedMessageType,
		},
		{
			name: "malformed field",
			raw:  wire("900", ":20:C11126A1378", ":21:5482ABC", ":25:9-9876543", ":32A:2501USD1,"),
			want: types.ErrInvalidFieldFormat,
		},
		{
			name: "undefined option",
			raw:  wire("202", ":20:A", ":21:B", ":32A:250102USD1,", ":57Z:X", ":58A:BANKBEBB"),
			want: types.ErrInvalidFieldFormat,
		},
		{
			name: "broken envelope",
			raw:  "{1:F01BANKBEBBAXXX0000000000}{4:\n:20:X\n-}",
			want: types.ErrInvalidBlockStructure,
		},
		{
			name: "short basic header",
			raw:  "{1:F01BANK}{2:I900BANKDEFFXXXXN}{4:\n:20:X\n-}",
			want: types.ErrInvalidBlockStructure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestParseAsWrongType(t *testing.T) {
	_, err := ParseAs(mt103, "202")
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrWrongMessageType))

	m, err := ParseAs(mt103, "103")
	require.NoError(t, err)
	assert.Equal(t, "103", m.Type)
}

func TestFieldErrorCarriesMessageType(t *testing.T) {
	_, err := Parse(wire("900", ":20:C11126A1378", ":21:5482ABC", ":25:9-9876543", ":32A:250102XX1,"))
	require.Error(t, err)

	var pe *types.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "900", pe.MessageType)
	assert.Equal(t, "32A", pe.Tag)
}

// =============================================================================
// VARIANTS AND PASSTHROUGH
// =============================================================================

func TestLetterlessVariantResolved(t *testing.T) {
	raw := strings.Replace(mt103, ":50K:/12345\nJOHN DOE\nMAIN STREET 1", ":50:/12345\nBANKBEBBXXX", 1)
	m, err := Parse(raw)
	require.NoError(t, err)

	ordering, ok := m.Get("50").(*field.PartyBIC)
	require.True(t, ok)
	assert.Equal(t, "50A", ordering.Tag())
	assert.Equal(t, "BANKBEBBXXX", ordering.BIC.String())

	assert.Equal(t, "50", m.RawTags[4])
	assert.Equal(t, "50", m.FieldOrder[4])
	assert.Contains(t, m.Serialize(), "\n:50:/12345\nBANKBEBBXXX\n")
	assert.NotContains(t, m.Serialize(), ":50A:")
}

func TestLetterlessOptionUsedDirectly(t *testing.T) {
	m, err := Parse(mt103)
	require.NoError(t, err)

	beneficiary, ok := m.Get("59").(*field.PartyNameAddress)
	require.True(t, ok)
	assert.Equal(t, "59", beneficiary.Tag())
}

func TestUnknownTagPassthrough(t *testing.T) {
	raw := wire("900",
		":20:C11126A1378",
		":21:5482ABC",
		":99Z:OPAQUE\nSECOND LINE",
		":25:9-9876543",
		":32A:250102USD233530,",
	)
	m, err := Parse(raw)
	require.NoError(t, err)

	unknown, ok := m.Get("99").(*field.Unknown)
	require.True(t, ok)
	assert.Equal(t, "99Z", unknown.Tag())
	assert.Equal(t, "OPAQUE\nSECOND LINE", unknown.Content)
	assert.Equal(t, []string{"20", "21", "99", "25", "32A"}, m.FieldOrder)
	assert.Equal(t, raw, m.Serialize())
}

// =============================================================================
// SCHEMAS AND DUPLICATES
// =============================================================================

func TestDuplicatesDisabled(t *testing.T) {
	single := *schemas["940"]
	single.Duplicates = false

	_, err := ParseWith(mt940CRLF, &single)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnparsedContent))

	m, err := ParseWith(mt940CRLF, schemas["940"])
	require.NoError(t, err)
	assert.Equal(t, 2, m.Sequence("Lines").Len())
}

func TestParseWithTypeMismatch(t *testing.T) {
	_, err := ParseWith(mt900, schemas["910"])
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrWrongMessageType))
}

func TestCustomSchema(t *testing.T) {
	schema := &Schema{
		Entries: []Entry{M("20"), M("21"), MV("25", "", "P"), M("32A"), R("72")},
	}
	m, err := ParseWith(mt900, schema)
	require.NoError(t, err)
	assert.Equal(t, "5482ABC", m.Get("21").Serialize())
}

func TestTypesAndTags(t *testing.T) {
	assert.Equal(t, []string{"101", "103", "199", "201", "202", "900", "910", "940", "942"}, Types())

	s, ok := Lookup("940")
	require.True(t, ok)
	assert.Contains(t, s.Tags(), "61")
	assert.Contains(t, s.Tags(), "62")

	_, ok = Lookup("999")
	assert.False(t, ok)

	for _, raw := range []string{"103", "MT103", "mt103", " MT103 "} {
		assert.Equal(t, "103", NormalizeType(raw), raw)
	}
}

// =============================================================================
// HEADERS
// =============================================================================

func TestInputHeaders(t *testing.T) {
	m, err := Parse(mt103)
	require.NoError(t, err)

	assert.Equal(t, "F", m.Basic.AppID)
	assert.Equal(t, "01", m.Basic.ServiceID)
	assert.True(t, m.Application.IsInput())
	assert.Equal(t, "N", m.Application.Priority)
	assert.Equal(t, "BANKBEBBXXX", m.SenderBIC())
	assert.Equal(t, "BANKDEFFXXX", m.ReceiverBIC())

	mur, ok := m.User.Get("108")
	assert.True(t, ok)
	assert.Equal(t, "MUR123", mur)
}

func TestOutputHeaders(t *testing.T) {
	raw := fmt.Sprintf(outputHeaders, "900") + "{4:\n:20:C11126A1378\n:21:5482ABC\n:25:9-9876543\n:32A:250102USD233530,\n-}"
	m, err := Parse(raw)
	require.NoError(t, err)

	assert.False(t, m.Application.IsInput())
	assert.Equal(t, "1200", m.Application.InputTime)
	assert.Equal(t, "250101", m.Application.OutputDate)
	assert.Equal(t, "BANKBEBBXXX", m.SenderBIC())
	assert.Equal(t, "BANKDEFFXXX", m.ReceiverBIC())
	assert.False(t, m.User.Present)
}

// =============================================================================
// PARSER OPERATIONS
// =============================================================================

func TestParserOperations(t *testing.T) {
	_, fields, err := envelope.Tokenize(wire("103",
		":20:REF",
		":13C:/SNDTIME/1230+0100",
		":13C:/RNCTIME/1300+0100",
		":23B:CRED",
		":50:/12345\nBANKBEBBXXX",
	))
	require.NoError(t, err)

	p := NewParser("103", fields).WithDuplicates(true)
	assert.True(t, p.Detect("20"))
	assert.False(t, p.Detect("13C"))

	ref, err := p.Mandatory("20")
	require.NoError(t, err)
	assert.Equal(t, "REF", ref.Serialize())
	assert.True(t, p.Detect("13C"))

	times, err := p.Repeated("13C")
	require.NoError(t, err)
	assert.Len(t, times, 2)

	missing, err := p.Optional("26T")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.Error(t, p.Complete())

	_, err = p.Mandatory("23B")
	require.NoError(t, err)

	ordering, err := p.Variant("50", "A", "F", "K")
	require.NoError(t, err)
	assert.Equal(t, "50A", ordering.Tag())

	none, err := p.OptionalVariant("59", "", "A", "F")
	require.NoError(t, err)
	assert.Nil(t, none)

	assert.NoError(t, p.Complete())

	_, err = p.Mandatory("71A")
	assert.True(t, errors.Is(err, types.ErrMissingMandatoryField))
}

func TestParserSingleSlot(t *testing.T) {
	_, fields, err := envelope.Tokenize(wire("103",
		":13C:/SNDTIME/1230+0100",
		":13C:/RNCTIME/1300+0100",
	))
	require.NoError(t, err)

	p := NewParser("103", fields)
	times, err := p.Repeated("13C")
	require.NoError(t, err)
	assert.Len(t, times, 1)
	assert.Error(t, p.Complete())
}
