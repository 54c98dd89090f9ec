package message

import (
	"sort"
	"strings"
)

// NormalizeType turns "MT103", "mt103" and " 103" into "103".
func NormalizeType(raw string) string {
	return strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(raw)), "MT")
}

// Lookup returns the built-in schema of a message type.
func Lookup(messageType string) (*Schema, bool) {
	s, ok := schemas[messageType]
	return s, ok
}

// Types lists the message types with a built-in schema.
func Types() []string {
	out := make([]string, 0, len(schemas))
	for t := range schemas {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

var schemas = map[string]*Schema{
	"101": {
		Type:       "101",
		Name:       "Request for Transfer",
		Duplicates: true,
		Entries: []Entry{
			M("20"),
			O("21R"),
			M("28D"),
			OV("50", "C", "L"),
			OV("50", "F", "G", "H"),
			OV("52", "A", "C"),
			O("51A"),
			M("30"),
			O("25"),
			Seq("B", "21", 1,
				M("21"),
				O("21F"),
				R("23E"),
				M("32B"),
				OV("50", "C", "L"),
				OV("50", "F", "G", "H"),
				OV("52", "A", "C", "D"),
				OV("56", "A", "C", "D"),
				OV("57", "A", "C", "D"),
				MV("59", "", "A", "F"),
				O("70"),
				O("77B"),
				O("33B"),
				M("71A"),
				O("25A"),
				O("36"),
			),
		},
	},

	"103": {
		Type:       "103",
		Name:       "Single Customer Credit Transfer",
		Duplicates: true,
		Entries: []Entry{
			M("20"),
			R("13C"),
			M("23B"),
			R("23E"),
			O("26T"),
			M("32A"),
			O("33B"),
			O("36"),
			MV("50", "A", "F", "K"),
			O("51A"),
			OV("52", "A", "D"),
			OV("53", "A", "B", "D"),
			OV("54", "A", "B", "D"),
			OV("55", "A", "B", "D"),
			OV("56", "A", "C", "D"),
			OV("57", "A", "B", "C", "D"),
			MV("59", "", "A", "F"),
			O("70"),
			M("71A"),
			R("71F"),
			O("71G"),
			O("72"),
			O("77B"),
		},
	},

	"199": {
		Type: "199",
		Name: "Free Format Message",
		Entries: []Entry{
			M("20"),
			O("21"),
			M("79"),
		},
	},

	"201": {
		Type:       "201",
		Name:       "Multiple Financial Institution Transfer for its Own Account",
		Duplicates: true,
		Entries: []Entry{
			M("19"),
			M("30"),
			OV("53", "B"),
			Seq("B", "20", 1,
				M("20"),
				M("32B"),
				OV("56", "A", "D"),
				MV("57", "A", "B", "D"),
				O("72"),
			),
		},
	},

	"202": {
		Type:       "202",
		Name:       "General Financial Institution Transfer",
		Duplicates: true,
		Entries: []Entry{
			M("20"),
			M("21"),
			R("13C"),
			M("32A"),
			OV("52", "A", "D"),
			OV("53", "A", "B", "D"),
			OV("54", "A", "B", "D"),
			OV("56", "A", "D"),
			OV("57", "A", "B", "D"),
			MV("58", "A", "D"),
			O("72"),
		},
	},

	"900": {
		Type: "900",
		Name: "Confirmation of Debit",
		Entries: []Entry{
			M("20"),
			M("21"),
			MV("25", "", "P"),
			O("13D"),
			M("32A"),
			OV("52", "A", "D"),
			O("72"),
		},
	},

	"910": {
		Type: "910",
		Name: "Confirmation of Credit",
		Entries: []Entry{
			M("20"),
			M("21"),
			MV("25", "", "P"),
			O("13D"),
			M("32A"),
			OV("50", "A", "F", "K"),
			OV("52", "A", "D"),
			OV("56", "A", "D"),
			O("72"),
		},
	},

	"940": {
		Type:       "940",
		Name:       "Customer Statement Message",
		Duplicates: true,
		Entries: []Entry{
			M("20"),
			O("21"),
			MV("25", "", "P"),
			M("28C"),
			MV("60", "F", "M"),
			Seq("Lines", "61", 0,
				M("61"),
				O("86"),
			),
			MV("62", "F", "M"),
			O("64"),
			R("65"),
			O("86"),
		},
	},

	"942": {
		Type:       "942",
		Name:       "Interim Transaction Report",
		Duplicates: true,
		Entries: []Entry{
			M("20"),
			O("21"),
			MV("25", "", "P"),
			M("28C"),
			M("34F"),
			O("34F"),
			M("13D"),
			Seq("Lines", "61", 0,
				M("61"),
				O("86"),
			),
			O("90D"),
			O("90C"),
			O("86"),
		},
	},
}
