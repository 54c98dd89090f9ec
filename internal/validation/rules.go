package validation

import (
	"fmt"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/field"
	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/message"
)

// =============================================================================
// COMMON RULES
// =============================================================================

func commonRules() []Rule {
	return prefixed("", nil)
}

// prefixed returns the field content and UETR rules followed by rules, with
// IDs prefixed by the message type.
func prefixed(mt string, rules []Rule) []Rule {
	prefix := ""
	if mt != "" {
		prefix = "MT" + mt + "-"
	}
	out := []Rule{
		{
			ID:          prefix + "FIELDS",
			Description: "Every field must satisfy its content rules (BIC, currency, decimals, code lists)",
			Check:       FieldContent(),
		},
		{
			ID:          prefix + "UETR",
			Code:        "U13",
			Description: "Block 3 field 121 must be a version 4 UUID",
			Check:       UETR(),
		},
	}
	for _, r := range rules {
		r.ID = prefix + r.ID
		out = append(out, r)
	}
	return out
}

func builtinRuleSets() []*RuleSet {
	return []*RuleSet{
		{MessageType: "101", Rules: prefixed("101", mt101Rules())},
		{MessageType: "103", Rules: prefixed("103", mt103Rules())},
		{MessageType: "199", Rules: prefixed("199", nil)},
		{MessageType: "201", Rules: prefixed("201", mt201Rules())},
		{MessageType: "202", Rules: prefixed("202", mt202Rules())},
		{MessageType: "900", Rules: prefixed("900", nil)},
		{MessageType: "910", Rules: prefixed("910", mt910Rules())},
		{MessageType: "940", Rules: prefixed("940", mt940Rules())},
		{MessageType: "942", Rules: prefixed("942", mt942Rules())},
	}
}

// =============================================================================
// MT101
// =============================================================================

var mt101Codes = CodeMatrix{
	Allowed:  []string{"CHQB", "CMSW", "CMTO", "CMZB", "CORT", "EQUI", "INTC", "NETS", "OTHR", "PHON", "REPA", "RTGS", "URGP"},
	WithInfo: []string{"CMTO", "PHON", "OTHR", "REPA"},
	Exclusive: [][2]string{
		{"CMSW", "CMTO"}, {"CMSW", "CMZB"}, {"CMTO", "CMZB"},
		{"CORT", "CMSW"}, {"CORT", "CMTO"}, {"CORT", "CMZB"}, {"CORT", "REPA"},
		{"CHQB", "CMSW"}, {"CHQB", "CMTO"}, {"CHQB", "CMZB"}, {"CHQB", "CORT"},
		{"CHQB", "NETS"}, {"CHQB", "PHON"}, {"CHQB", "REPA"}, {"CHQB", "RTGS"}, {"CHQB", "URGP"},
		{"EQUI", "CMSW"}, {"EQUI", "CMTO"}, {"EQUI", "CMZB"},
		{"NETS", "RTGS"},
	},
	Repeatable: []string{"OTHR"},
}

func mt101Rules() []Rule {
	return []Rule{
		{
			ID:          "C1",
			Code:        "D54",
			Description: "If field 36 is present in a transaction, field 21F must be present",
			Check: ConditionalPresence("B", Present("36"), Present("21F"), "21F",
				"field 21F is mandatory when an exchange rate is given"),
		},
		{
			ID:          "C2",
			Code:        "D60",
			Description: "If field 33B is present and the amount of 32B is not zero, field 36 must be present, otherwise field 36 is not allowed",
			Check: combine(
				ConditionalPresence("B", All(Present("33B"), NonZeroAmount("32B")), Present("36"), "36",
					"field 36 is mandatory when 33B is present and 32B is not zero"),
				ConditionalPresence("B", Absent("33B"), Absent("36"), "36",
					"field 36 is not allowed without field 33B"),
			),
		},
		{
			ID:          "C3",
			Code:        "D61",
			Description: "Ordering customer 50a (F, G or H) must be present in sequence A or in every sequence B, not both",
			Check:       Exclusive("B", ExactlyOne, "50", "F", "G", "H"),
		},
		{
			ID:          "C4",
			Code:        "D62",
			Description: "Instructing party 50a (C or L) may be present in sequence A or in every sequence B, not both",
			Check:       Exclusive("B", AtMostOne, "50", "C", "L"),
		},
		{
			ID:          "C5",
			Code:        "D64",
			Description: "Account servicing institution 52a may be present in sequence A or in every sequence B, not both",
			Check:       Exclusive("B", AtMostOne, "52"),
		},
		{
			ID:          "C6",
			Code:        "D65",
			Description: "If field 56a is present, field 57a must be present",
			Check: ConditionalPresence("B", Present("56"), Present("57"), "57",
				"field 57a is mandatory when 56a is present"),
		},
		{
			ID:          "C7",
			Code:        "D68",
			Description: "If field 33B is present, its currency must differ from the currency of 32B",
			Check: ConditionalPresence("B", Present("33B"), Not(SameCurrencyAs("33B", "32B")), "33B",
				"currency of 33B must differ from 32B"),
		},
		{
			ID:          "C8",
			Code:        "E18",
			Description: "If field 23E contains CHQB, the account of field 59a is not allowed",
			Check: ConditionalPresence("B", HasCode("23E", "CHQB"), NoAccount("59"), "59",
				"beneficiary account is not allowed with CHQB"),
		},
		{
			ID:          "23E",
			Code:        "T47",
			Description: "Instruction codes of field 23E: allowed set, additional information, combinations and repetition",
			Check:       Codes("B", "23E", mt101Codes),
		},
	}
}

// =============================================================================
// MT103
// =============================================================================

var mt103Codes = CodeMatrix{
	Allowed:  []string{"CHQB", "CORT", "HOLD", "INTC", "PHOB", "PHOI", "PHON", "REPA", "SDVA", "TELB", "TELE", "TELI"},
	WithInfo: []string{"HOLD", "PHOB", "PHOI", "PHON", "REPA", "TELB", "TELE", "TELI"},
	Exclusive: [][2]string{
		{"SDVA", "HOLD"}, {"CHQB", "HOLD"}, {"CHQB", "PHOB"}, {"CHQB", "TELB"},
		{"PHOB", "TELB"}, {"PHON", "TELE"}, {"PHOI", "TELI"},
		{"REPA", "CORT"},
	},
}

// eea lists the countries whose BICs make a payment subject to the EU
// payment regulations.
var eea = codeSet([]string{
	"AD", "AT", "BE", "BG", "BV", "CH", "CY", "CZ", "DE", "DK", "EE", "ES", "FI", "FR",
	"GB", "GF", "GI", "GP", "GR", "HR", "HU", "IE", "IS", "IT", "LI", "LT", "LU", "LV",
	"MC", "MQ", "MT", "NL", "NO", "PL", "PM", "PT", "RE", "RO", "SE", "SI", "SJ", "SK",
	"SM", "TF", "VA",
})

var serviceLevels = []string{"SPRI", "SSTD", "SPAY"}

func mt103Rules() []Rule {
	return []Rule{
		{
			ID:          "C1",
			Code:        "D75",
			Description: "If field 33B is present with a currency different from 32A, field 36 must be present, otherwise field 36 is not allowed",
			Check: combine(
				ConditionalPresence("", All(Present("33B"), Not(SameCurrencyAs("33B", "32A"))), Present("36"), "36",
					"field 36 is mandatory when the currencies of 33B and 32A differ"),
				ConditionalPresence("", Not(All(Present("33B"), Not(SameCurrencyAs("33B", "32A")))), Absent("36"), "36",
					"field 36 is only allowed when the currencies of 33B and 32A differ"),
			),
		},
		{
			ID:          "C2",
			Code:        "D49",
			Description: "If sender and receiver are both in the EU/EEA, field 33B is mandatory",
			Check:       euInstructedAmount,
		},
		{
			ID:          "C3",
			Code:        "E01",
			Description: "If field 23B is SPRI, field 23E may only contain SDVA, TELB, PHOB or INTC",
			Check: ConditionalPresence("", ValueIn("23B", "SPRI"), OnlyCodes("23E", "SDVA", "TELB", "PHOB", "INTC"), "23E",
				"only SDVA, TELB, PHOB and INTC are allowed with SPRI"),
		},
		{
			ID:          "C4",
			Code:        "E02",
			Description: "If field 23B is SSTD or SPAY, field 23E is not allowed",
			Check: ConditionalPresence("", ValueIn("23B", "SSTD", "SPAY"), Absent("23E"), "23E",
				"field 23E is not allowed with SSTD or SPAY"),
		},
		{
			ID:          "C5",
			Code:        "E03",
			Description: "If field 23B is SPRI, SSTD or SPAY, field 53a must not be used with option D",
			Check: ConditionalPresence("", ValueIn("23B", serviceLevels...), Absent("53", "D"), "53",
				"option D of field 53a is not allowed"),
		},
		{
			ID:          "C6",
			Code:        "E05",
			Description: "If field 23B is SPRI, SSTD or SPAY and field 54a is present, option A must be used",
			Check: ConditionalPresence("", ValueIn("23B", serviceLevels...), Absent("54", "B", "D"), "54",
				"field 54a must use option A"),
		},
		{
			ID:          "C7",
			Code:        "E06",
			Description: "If field 55a is present, fields 53a and 54a are mandatory",
			Check: ConditionalPresence("", Present("55"), All(Present("53"), Present("54")), "55",
				"fields 53a and 54a are mandatory when 55a is present"),
		},
		{
			ID:          "C8",
			Code:        "E07",
			Description: "If field 23B is SPRI, SSTD or SPAY and field 55a is present, option A must be used",
			Check: ConditionalPresence("", ValueIn("23B", serviceLevels...), Absent("55", "B", "D"), "55",
				"field 55a must use option A"),
		},
		{
			ID:          "C9",
			Code:        "C81",
			Description: "If field 56a is present, field 57a must be present",
			Check: ConditionalPresence("", Present("56"), Present("57"), "57",
				"field 57a is mandatory when 56a is present"),
		},
		{
			ID:          "C10",
			Code:        "E13",
			Description: "If field 71A is OUR, field 71F is not allowed",
			Check: ConditionalPresence("", ValueIn("71A", "OUR"), Absent("71F"), "71F",
				"sender's charges are not allowed with OUR"),
		},
		{
			ID:          "C11",
			Code:        "D50",
			Description: "If field 71A is SHA, field 71G is not allowed",
			Check: ConditionalPresence("", ValueIn("71A", "SHA"), Absent("71G"), "71G",
				"receiver's charges are not allowed with SHA"),
		},
		{
			ID:          "C12",
			Code:        "E15",
			Description: "If field 71A is BEN, at least one field 71F is mandatory and field 71G is not allowed",
			Check: ConditionalPresence("", ValueIn("71A", "BEN"), All(Present("71F"), Absent("71G")), "71F",
				"BEN needs sender's charges and no receiver's charges"),
		},
		{
			ID:          "C13",
			Code:        "D51",
			Description: "If field 71F or 71G is present, field 33B is mandatory",
			Check: ConditionalPresence("", Any(Present("71F"), Present("71G")), Present("33B"), "33B",
				"field 33B is mandatory when charges are given"),
		},
		{
			ID:          "C14",
			Code:        "E44",
			Description: "If field 56a is not present, field 23E must not contain TELI or PHOI",
			Check: ConditionalPresence("", Absent("56"), Not(HasCode("23E", "TELI", "PHOI")), "23E",
				"TELI and PHOI need an intermediary institution"),
		},
		{
			ID:          "C15",
			Code:        "E45",
			Description: "If field 57a is not present, field 23E must not contain TELE or PHON",
			Check: ConditionalPresence("", Absent("57"), Not(HasCode("23E", "TELE", "PHON")), "23E",
				"TELE and PHON need an account with institution"),
		},
		{
			ID:          "C16",
			Code:        "E18",
			Description: "If field 23E contains CHQB, the account of field 59a is not allowed",
			Check: ConditionalPresence("", HasCode("23E", "CHQB"), NoAccount("59"), "59",
				"beneficiary account is not allowed with CHQB"),
		},
		{
			ID:          "23E",
			Code:        "T47",
			Description: "Instruction codes of field 23E: allowed set, additional information, combinations and repetition",
			Check:       Codes("", "23E", mt103Codes),
		},
	}
}

func euInstructedAmount(m *message.Message) []ValidationError {
	if !eea[country(m.SenderBIC())] || !eea[country(m.ReceiverBIC())] {
		return nil
	}
	if m.Body.Has("33B") {
		return nil
	}
	return []ValidationError{{
		Tag: "33B",
		Message: fmt.Sprintf("field 33B is mandatory between %s and %s",
			country(m.SenderBIC()), country(m.ReceiverBIC())),
	}}
}

// =============================================================================
// MT201, MT202, MT910
// =============================================================================

func mt201Rules() []Rule {
	return []Rule{
		{
			ID:          "C1",
			Code:        "C01",
			Description: "Field 19 must equal the sum of the amounts in all occurrences of field 32B",
			Check:       SumEquals("19", "B", "32B"),
		},
		{
			ID:          "C2",
			Code:        "C02",
			Description: "The currency code in field 32B must be the same for all occurrences",
			Check:       SameCurrency("32B"),
		},
		{
			ID:          "C3",
			Code:        "T10",
			Description: "The repetitive sequence must appear at least twice and at most ten times",
			Check:       InstanceCount("B", 2, 10),
		},
	}
}

func mt202Rules() []Rule {
	return []Rule{
		{
			ID:          "C1",
			Code:        "C81",
			Description: "If field 56a is present, field 57a must be present",
			Check: ConditionalPresence("", Present("56"), Present("57"), "57",
				"field 57a is mandatory when 56a is present"),
		},
	}
}

func mt910Rules() []Rule {
	return []Rule{
		{
			ID:          "C1",
			Code:        "C06",
			Description: "Either field 50a or field 52a must be present, not both",
			Check: combine(
				ConditionalPresence("", Present("50"), Absent("52"), "52", "fields 50a and 52a are mutually exclusive"),
				ConditionalPresence("", Absent("50"), Present("52"), "52", "either field 50a or 52a is mandatory"),
			),
		},
	}
}

// =============================================================================
// MT940, MT942
// =============================================================================

func mt940Rules() []Rule {
	return []Rule{
		{
			ID:          "C1",
			Code:        "C27",
			Description: "The first two characters of the currency codes in fields 60a, 62a, 64 and 65 must be the same",
			Check:       SameCurrencyPrefix("60", "62", "64", "65"),
		},
	}
}

func mt942Rules() []Rule {
	return []Rule{
		{
			ID:          "C1",
			Code:        "C27",
			Description: "The first two characters of the currency codes in fields 34F, 90D and 90C must be the same",
			Check:       SameCurrencyPrefix("34F", "90D", "90C"),
		},
		{
			ID:          "C2",
			Code:        "C23",
			Description: "A single field 34F carries no mark; with two, the first is D and the second C",
			Check:       floorLimitMarks,
		},
	}
}

func floorLimitMarks(m *message.Message) []ValidationError {
	var limits []*field.FloorLimit
	for _, f := range m.All("34F") {
		if fl, ok := f.(*field.FloorLimit); ok {
			limits = append(limits, fl)
		}
	}
	bad := func(fl *field.FloorLimit, msg string) []ValidationError {
		return []ValidationError{{Tag: fl.Tag(), Value: fl.Serialize(), Message: msg}}
	}
	switch len(limits) {
	case 1:
		if limits[0].Mark != "" {
			return bad(limits[0], "a single floor limit must not carry a debit/credit mark")
		}
	case 2:
		if limits[0].Mark != "D" {
			return bad(limits[0], "the first floor limit must be marked D")
		}
		if limits[1].Mark != "C" {
			return bad(limits[1], "the second floor limit must be marked C")
		}
	}
	return nil
}
