package message

import (
	"strings"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/types"
)

// BasicHeader is block 1.
type BasicHeader struct {
	AppID     string
	ServiceID string
	LTAddress string
	Session   string
	Sequence  string
	Raw       string
}

func parseBasicHeader(s string) (BasicHeader, error) {
	if len(s) != 25 || strings.IndexByte("FAL", s[0]) < 0 {
		return BasicHeader{}, types.NewParseError(types.InvalidBlockStructure, "",
			"basic header %q: want 25 characters starting with F, A or L", s)
	}
	return BasicHeader{
		AppID:     s[0:1],
		ServiceID: s[1:3],
		LTAddress: s[3:15],
		Session:   s[15:19],
		Sequence:  s[19:25],
		Raw:       s,
	}, nil
}

// ApplicationHeader is block 2, in its input ("I") or output ("O") form.
type ApplicationHeader struct {
	Direction   string
	MessageType string

	// Input form
	Address            string
	Priority           string
	DeliveryMonitoring string
	ObsolescencePeriod string

	// Output form
	InputTime  string
	MIR        string
	OutputDate string
	OutputTime string

	Raw string
}

// IsInput reports whether the header is in input form.
func (h ApplicationHeader) IsInput() bool { return h.Direction == "I" }

func parseApplicationHeader(s string) (ApplicationHeader, error) {
	bad := func(why string) (ApplicationHeader, error) {
		return ApplicationHeader{}, types.NewParseError(types.InvalidBlockStructure, "",
			"application header %q: %s", s, why)
	}
	if len(s) < 4 || !isDigits(s[1:4]) {
		return bad("want direction and a three digit message type")
	}
	h := ApplicationHeader{Direction: s[0:1], MessageType: s[1:4], Raw: s}

	switch h.Direction {
	case "I":
		if len(s) < 16 || len(s) > 21 {
			return bad("input header length")
		}
		h.Address = s[4:16]
		rest := s[16:]
		if len(rest) > 0 {
			h.Priority, rest = rest[:1], rest[1:]
		}
		if len(rest) > 0 {
			h.DeliveryMonitoring, rest = rest[:1], rest[1:]
		}
		h.ObsolescencePeriod = rest
	case "O":
		if len(s) < 46 || len(s) > 47 {
			return bad("output header length")
		}
		h.InputTime = s[4:8]
		h.MIR = s[8:36]
		h.OutputDate = s[36:42]
		h.OutputTime = s[42:46]
		h.Priority = s[46:]
	default:
		return bad("direction must be I or O")
	}
	return h, nil
}

// UserTag is one "{tag:value}" entry of block 3.
type UserTag struct {
	Tag   string
	Value string
}

// UserHeader is block 3.
type UserHeader struct {
	Present bool
	Tags    []UserTag
	Raw     string
}

// Get returns the value of a block 3 tag.
func (h UserHeader) Get(tag string) (string, bool) {
	for _, t := range h.Tags {
		if t.Tag == tag {
			return t.Value, true
		}
	}
	return "", false
}

func parseUserHeader(s string) (UserHeader, error) {
	h := UserHeader{Present: true, Raw: s}
	rest := s
	for rest != "" {
		end := strings.IndexByte(rest, '}')
		colon := strings.IndexByte(rest, ':')
		if rest[0] != '{' || end < 0 || colon < 0 || colon > end {
			return UserHeader{}, types.NewParseError(types.InvalidBlockStructure, "",
				"user header %q: malformed sub-tag", s)
		}
		h.Tags = append(h.Tags, UserTag{Tag: rest[1:colon], Value: rest[colon+1 : end]})
		rest = rest[end+1:]
	}
	return h, nil
}

// ltToBIC turns a 12 character logical terminal address into a BIC11 by
// dropping the terminal code.
func ltToBIC(lt string) string {
	if len(lt) != 12 {
		return ""
	}
	return lt[0:8] + lt[9:12]
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
