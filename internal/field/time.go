package field

import (
	"fmt"
	"time"

	"github.com/GoPlasmatic/SwiftMTMessage-sub001/internal/format"
)

// TimeIndication is a coded time with UTC offset (13C), e.g.
// "/SNDTIME/1230+0100".
type TimeIndication struct {
	RawTag string
	Code   string
	Hour   int
	Minute int
	Sign   byte
	Offset string
}

func (f *TimeIndication) Tag() string { return f.RawTag }

func (f *TimeIndication) Serialize() string {
	return fmt.Sprintf("/%s/%02d%02d%c%s", f.Code, f.Hour, f.Minute, f.Sign, f.Offset)
}

// Validate checks the offset sign and range.
func (f *TimeIndication) Validate() error {
	return checkOffset(f, f.Sign, f.Offset)
}

func parseTimeIndication(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "/8c/4!n1!x4!n", content)
	if err != nil {
		return nil, err
	}
	hh, mm, err := format.ParseHHMM(vals[1])
	if err != nil {
		return nil, wrapFormat(tag, content, err)
	}
	return &TimeIndication{
		RawTag: tag,
		Code:   vals[0],
		Hour:   hh,
		Minute: mm,
		Sign:   vals[2][0],
		Offset: vals[3],
	}, nil
}

// DateTimeIndication is a date, time and UTC offset (13D).
type DateTimeIndication struct {
	RawTag string
	Date   time.Time
	Hour   int
	Minute int
	Sign   byte
	Offset string
}

func (f *DateTimeIndication) Tag() string { return f.RawTag }

func (f *DateTimeIndication) Serialize() string {
	return fmt.Sprintf("%s%02d%02d%c%s", format.FormatDate(f.Date), f.Hour, f.Minute, f.Sign, f.Offset)
}

// Validate checks the offset sign and range.
func (f *DateTimeIndication) Validate() error {
	return checkOffset(f, f.Sign, f.Offset)
}

func parseDateTimeIndication(tag, content string) (Field, error) {
	vals, err := matchFormat(tag, "6!n4!n1!x4!n", content)
	if err != nil {
		return nil, err
	}
	d, err := format.ParseDate(vals[0])
	if err != nil {
		return nil, wrapFormat(tag, content, err)
	}
	hh, mm, err := format.ParseHHMM(vals[1])
	if err != nil {
		return nil, wrapFormat(tag, content, err)
	}
	return &DateTimeIndication{
		RawTag: tag,
		Date:   d,
		Hour:   hh,
		Minute: mm,
		Sign:   vals[2][0],
		Offset: vals[3],
	}, nil
}

func checkOffset(f Field, sign byte, offset string) error {
	if sign != '+' && sign != '-' {
		return contentError("T15", f, "offset sign must be + or -")
	}
	if err := format.ParseOffset(offset); err != nil {
		return contentError("T16", f, "%v", err)
	}
	return nil
}
