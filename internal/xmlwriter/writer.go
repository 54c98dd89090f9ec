// =============================================================================
// SWIFT MT Engine - XML Writer Module
// =============================================================================
//
// This module renders the messages of one input file as an XML document for
// downstream systems that cannot read wire text.
//
// XML STRUCTURE:
//
//   <swiftMessages source="pay_0001.fin" profile="PAY">
//     <meta name="feed">legacy</meta>          <!-- profile static fields -->
//     <message n="1" type="103" valid="false">
//       <header sender="BANKBEBBAXXX" receiver="BANKDEFFXXXX"
//               direction="I" reference="REF-001" uetr="..."/>
//       <body>
//         <field tag="20">REF-001</field>
//         <field tag="32A">250101EUR1000,00</field>
//       </body>
//       <sequence name="B" n="1">              <!-- one per instance -->
//         <field tag="21">TX1</field>
//       </sequence>
//       <errors>
//         <error code="D75" rule="MT103-C1" tag="36">...</error>
//       </errors>
//     </message>
//     <failure n="2" kind="UnparsedContent">...</failure>
//   </swiftMessages>
//
// Field values are the serialized field content, so multi-line fields keep
// their line breaks. Messages that fail to parse appear as <failure>.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration writes the <?xml ...?> header.
	// Default: true
	IncludeXMLDeclaration bool

	// IncludeErrors writes the <errors> element of each message.
	// Default: true
	IncludeErrors bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		IncludeErrors:         true,
	}
}

// =============================================================================
// XML DOCUMENT STRUCTURE
// =============================================================================

// Document is the root of the export.
type Document struct {
	XMLName  xml.Name  `xml:"swiftMessages"`
	Source   string    `xml:"source,attr,omitempty"`
	Profile  string    `xml:"profile,attr,omitempty"`
	Meta     []Meta    `xml:"meta"`
	Messages []Message `xml:"message"`
	Failures []Failure `xml:"failure"`
}

// Meta is a constant name/value pair attached to the document.
type Meta struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

// Message is the export view of one parsed message.
type Message struct {
	Index     int        `xml:"n,attr"`
	Type      string     `xml:"type,attr"`
	Valid     bool       `xml:"valid,attr"`
	Header    Header     `xml:"header"`
	Body      []Field    `xml:"body>field"`
	Sequences []Sequence `xml:"sequence"`
	Errors    []Error    `xml:"errors>error"`
}

// Header carries the envelope identification of a message.
type Header struct {
	Sender    string `xml:"sender,attr,omitempty"`
	Receiver  string `xml:"receiver,attr,omitempty"`
	Direction string `xml:"direction,attr,omitempty"`
	Reference string `xml:"reference,attr,omitempty"`
	UETR      string `xml:"uetr,attr,omitempty"`
}

// Field is one field occurrence.
type Field struct {
	Tag   string `xml:"tag,attr"`
	Value string `xml:",chardata"`
}

// Sequence is one instance of a repeating group.
type Sequence struct {
	Name   string  `xml:"name,attr"`
	Index  int     `xml:"n,attr"`
	Fields []Field `xml:"field"`
}

// Error is one rule violation.
type Error struct {
	Code    string `xml:"code,attr"`
	Rule    string `xml:"rule,attr,omitempty"`
	Tag     string `xml:"tag,attr,omitempty"`
	Message string `xml:",chardata"`
}

// Failure is a message that could not be parsed.
type Failure struct {
	Index  int    `xml:"n,attr"`
	Line   int    `xml:"line,attr,omitempty"`
	Kind   string `xml:"kind,attr,omitempty"`
	Detail string `xml:",chardata"`
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate renders a document with the default options.
func Generate(doc *Document) ([]byte, error) {
	return GenerateWithOptions(doc, DefaultGenerateOptions())
}

// GenerateWithOptions renders a document with custom options.
func GenerateWithOptions(doc *Document, options GenerateOptions) ([]byte, error) {
	var buffer bytes.Buffer
	if err := Write(&buffer, doc, options); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Write encodes a document to w. Encoding failures are returned as
// *types.ConversionError.
func Write(w io.Writer, doc *Document, options GenerateOptions) error {
	if !options.IncludeErrors {
		doc = withoutErrors(doc)
	}

	if options.IncludeXMLDeclaration {
		if _, err := io.WriteString(w, xml.Header); err != nil {
			return &types.ConversionError{Format: "xml", Op: "write", Err: err}
		}
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", options.Indent)
	if err := enc.Encode(doc); err != nil {
		return &types.ConversionError{Format: "xml", Op: "encode", Err: err}
	}
	if err := enc.Close(); err != nil {
		return &types.ConversionError{Format: "xml", Op: "encode", Err: err}
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return &types.ConversionError{Format: "xml", Op: "write", Err: err}
	}
	return nil
}

// Decode reads a document produced by Write.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &types.ConversionError{Format: "xml", Op: "decode", Err: err}
	}
	return &doc, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// withoutErrors returns a shallow copy of doc with the message errors
// dropped.
func withoutErrors(doc *Document) *Document {
	out := *doc
	out.Messages = make([]Message, len(doc.Messages))
	for i, m := range doc.Messages {
		m.Errors = nil
		out.Messages[i] = m
	}
	return &out
}
