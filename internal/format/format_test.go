package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramMatch(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		content string
		want    []string
		ok      bool
	}{
		{"fixed and decimal", "6!n3!a15d", "250101EUR1000,00", []string{"250101", "EUR", "1000,00"}, true},
		{"fixed too short", "6!n3!a15d", "25010EUR1000,00", nil, false},
		{"max length", "16x", "ABCDEFGHIJKLMNOPQ", nil, false},
		{"entry count", "5n3!a15d", "2GBP250050", []string{"2", "GBP", "250050"}, true},
		{"time indication", "/8c/4!n1!x4!n", "/SNDTIME/1230+0100", []string{"SNDTIME", "1230", "+", "0100"}, true},
		{"optional present", "4!c[/30x]", "PHOB/0123456789", []string{"PHOB", "0123456789"}, true},
		{"optional absent", "4!c[/30x]", "SDVA", []string{"SDVA", ""}, true},
		{"optional mark", "3!a[1!a]15d", "EURD100,", []string{"EUR", "D", "100,"}, true},
		{"optional mark absent", "3!a[1!a]15d", "EUR100,", []string{"EUR", "", "100,"}, true},
		{"lines", "4*35x", "LINE ONE\nLINE TWO", []string{"LINE ONE\nLINE TWO"}, true},
		{"too many lines", "2*35x", "A\nB\nC", nil, false},
		{"line break literal", "35x$4!a2!a2!c[3!c]", "ACCOUNT\nBANKDEFF", []string{"ACCOUNT", "BANK", "DE", "FF", ""}, true},
		{"nested optional", "5n[/5n]", "123/4", []string{"123", "4"}, true},
		{"backtracking", "[/1!a][/34x]", "/ABCDEF", []string{"", "ABCDEF"}, true},
		{"clearing code", "[/1!a][/34x]", "/D/12345", []string{"D", "12345"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compile(tt.spec)
			require.NoError(t, err)

			vals, ok := p.Match(tt.content)
			assert.Equal(t, tt.ok, ok)
			if !tt.ok {
				return
			}
			assert.Equal(t, tt.want, vals)

			out, err := p.Render(vals)
			require.NoError(t, err)
			assert.Equal(t, tt.content, out)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, spec := range []string{"[16x", "16x]", "16", "16q", "3*x"} {
		_, err := Compile(spec)
		assert.Error(t, err, spec)
	}
}

func TestRenderSlotCount(t *testing.T) {
	p := MustCompile("6!n3!a")
	_, err := p.Render([]string{"250101"})
	assert.Error(t, err)
}

func TestLookupCachesPrograms(t *testing.T) {
	a, err := Lookup("35x")
	require.NoError(t, err)
	b, err := Lookup("35x")
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.GreaterOrEqual(t, CachedPrograms(), 1)
}

func TestParseAmount(t *testing.T) {
	a, err := ParseAmount("1234567,89")
	require.NoError(t, err)
	assert.InDelta(t, 1234567.89, a.Value, 1e-9)
	assert.Equal(t, "1234567,89", a.String())
	assert.Equal(t, 2, a.Decimals())

	a, err = ParseAmount("100.5")
	require.NoError(t, err)
	assert.Equal(t, "100.5", a.Raw)
	assert.Equal(t, 1, a.Decimals())

	a, err = ParseAmount("250050")
	require.NoError(t, err)
	assert.Equal(t, 250050.0, a.Value)
	assert.Equal(t, 0, a.Decimals())

	for _, bad := range []string{"", ",5", "1,2,3", "1,2.3", "12a"} {
		_, err := ParseAmount(bad)
		assert.Error(t, err, bad)
	}
}

func TestAmountExact(t *testing.T) {
	sum := mustAmount(t, "999999999999,99").Exact().
		Add(mustAmount(t, "999999999999,99").Exact()).
		Add(mustAmount(t, "999999999999,99").Exact())
	assert.True(t, sum.Equal(mustAmount(t, "2999999999999,97").Exact()))
	assert.Equal(t, "2999999999999,97", FormatDecimal(sum, 2))

	half := mustAmount(t, "100,").Exact().Add(mustAmount(t, "0.5").Exact())
	assert.Equal(t, "100,5", FormatDecimal(half, 1))
	assert.Equal(t, "101,", FormatDecimal(half.Add(mustAmount(t, "0,5").Exact()), 0))
}

func mustAmount(t *testing.T, s string) Amount {
	t.Helper()
	a, err := ParseAmount(s)
	require.NoError(t, err)
	return a
}

func TestNewAmount(t *testing.T) {
	assert.Equal(t, "1500,25", NewAmount(1500.25, 2).Raw)
	assert.Equal(t, "7,", NewAmount(7, 0).Raw)
}

func TestParseDatePivot(t *testing.T) {
	d, err := ParseDate("490101")
	require.NoError(t, err)
	assert.Equal(t, 2049, d.Year())

	d, err = ParseDate("500101")
	require.NoError(t, err)
	assert.Equal(t, 1950, d.Year())

	d, err = ParseDate("250229")
	assert.Error(t, err)

	d, err = ParseDate("240229")
	require.NoError(t, err)
	assert.Equal(t, time.February, d.Month())
	assert.Equal(t, "240229", FormatDate(d))

	_, err = ParseDate("2401")
	assert.Error(t, err)
}

func TestParseHHMMAndOffset(t *testing.T) {
	hh, mm, err := ParseHHMM("1230")
	require.NoError(t, err)
	assert.Equal(t, 12, hh)
	assert.Equal(t, 30, mm)

	_, _, err = ParseHHMM("2460")
	assert.Error(t, err)

	assert.NoError(t, ParseOffset("0100"))
	assert.Error(t, ParseOffset("1400"))
}

func TestBIC(t *testing.T) {
	b, err := ParseBIC("DEUTDEFF500")
	require.NoError(t, err)
	assert.Equal(t, BIC{Bank: "DEUT", Country: "DE", Location: "FF", Branch: "500"}, b)
	assert.Equal(t, "DEUTDEFF", b.BIC8())
	assert.NoError(t, b.Validate())

	_, err = ParseBIC("DEUTDEF")
	assert.Error(t, err)
	_, err = ParseBIC("DEU1DEFF")
	assert.Error(t, err)

	b, err = ParseBIC("BANKQQFF")
	require.NoError(t, err)
	assert.Error(t, b.Validate())

	b, err = ParseBIC("BANKDEFFXAB")
	require.NoError(t, err)
	assert.Error(t, b.Validate())
}

func TestCurrency(t *testing.T) {
	assert.True(t, IsCurrency("EUR"))
	assert.True(t, IsCurrency("GBP"))
	assert.False(t, IsCurrency("ABC"))
	assert.False(t, IsCurrency("eur"))

	d, ok := CurrencyDecimals("JPY")
	require.True(t, ok)
	assert.Equal(t, 0, d)

	d, ok = CurrencyDecimals("EUR")
	require.True(t, ok)
	assert.Equal(t, 2, d)
}
