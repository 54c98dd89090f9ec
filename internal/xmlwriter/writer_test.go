package xmlwriter

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
)

func sampleDocument() *Document {
	return &Document{
		Source:  "pay_0001.fin",
		Profile: "PAY",
		Meta:    []Meta{{Name: "feed", Value: "legacy"}},
		Messages: []Message{{
			Index: 1,
			Type:  "101",
			Valid: false,
			Header: Header{
				Sender:    "BANKBEBBAXXX",
				Receiver:  "BANKDEFFXXXX",
				Direction: "I",
				Reference: "11FF99RR",
			},
			Body: []Field{
				{Tag: "20", Value: "11FF99RR"},
				{Tag: "50H", Value: "/12345\nSMITH & SONS"},
			},
			Sequences: []Sequence{
				{Name: "B", Index: 1, Fields: []Field{{Tag: "21", Value: "TX1"}}},
			},
			Errors: []Error{{Code: "D54", Rule: "MT101-C1", Tag: "21F", Message: "field 21F is mandatory"}},
		}},
		Failures: []Failure{{Index: 2, Line: 14, Kind: "UnparsedContent", Detail: "field 71A"}},
	}
}

func TestGenerate(t *testing.T) {
	out, err := Generate(sampleDocument())
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, "<?xml"))
	assert.Contains(t, s, `<swiftMessages source="pay_0001.fin" profile="PAY">`)
	assert.Contains(t, s, `<meta name="feed">legacy</meta>`)
	assert.Contains(t, s, `<message n="1" type="101" valid="false">`)
	assert.Contains(t, s, `<field tag="50H">/12345&#xA;SMITH &amp; SONS</field>`)
	assert.Contains(t, s, `<sequence name="B" n="1">`)
	assert.Contains(t, s, `<error code="D54" rule="MT101-C1" tag="21F">field 21F is mandatory</error>`)
	assert.Contains(t, s, `<failure n="2" line="14" kind="UnparsedContent">field 71A</failure>`)
}

func TestGenerateWithoutErrors(t *testing.T) {
	doc := sampleDocument()
	opts := DefaultGenerateOptions()
	opts.IncludeErrors = false
	opts.IncludeXMLDeclaration = false

	out, err := GenerateWithOptions(doc, opts)
	require.NoError(t, err)

	assert.NotContains(t, string(out), "<errors>")
	assert.True(t, strings.HasPrefix(string(out), "<swiftMessages"))
	assert.Len(t, doc.Messages[0].Errors, 1)
}

func TestDecodeRoundTrip(t *testing.T) {
	doc := sampleDocument()
	out, err := Generate(doc)
	require.NoError(t, err)

	back, err := Decode(bytes.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, doc.Messages[0].Body, back.Messages[0].Body)
	assert.Equal(t, doc.Messages[0].Errors, back.Messages[0].Errors)
	assert.Equal(t, doc.Failures, back.Failures)
}

func TestDecodeError(t *testing.T) {
	_, err := Decode(strings.NewReader("<swiftMessages><message"))
	require.Error(t, err)

	var ce *types.ConversionError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "xml", ce.Format)
	assert.Equal(t, "decode", ce.Op)
}
