package format

import (
	"fmt"
	"strconv"
	"time"
)

// PivotYear is the first two-digit year mapped to the 1900s: 00-49 fall in
// 2000-2049 and 50-99 in 1950-1999. Every date field uses this rule.
const PivotYear = 50

// ParseDate parses a YYMMDD date.
func ParseDate(s string) (time.Time, error) {
	if len(s) != 6 || !Conforms('n', s) {
		return time.Time{}, fmt.Errorf("date %q: want YYMMDD", s)
	}
	yy, _ := strconv.Atoi(s[0:2])
	mm, _ := strconv.Atoi(s[2:4])
	dd, _ := strconv.Atoi(s[4:6])
	return civilDate(ExpandYear(yy), mm, dd, s)
}

// ParseLongDate parses a YYYYMMDD date.
func ParseLongDate(s string) (time.Time, error) {
	if len(s) != 8 || !Conforms('n', s) {
		return time.Time{}, fmt.Errorf("date %q: want YYYYMMDD", s)
	}
	yyyy, _ := strconv.Atoi(s[0:4])
	mm, _ := strconv.Atoi(s[4:6])
	dd, _ := strconv.Atoi(s[6:8])
	return civilDate(yyyy, mm, dd, s)
}

// ExpandYear maps a two-digit year to a four-digit one.
func ExpandYear(yy int) int {
	if yy < PivotYear {
		return 2000 + yy
	}
	return 1900 + yy
}

// FormatDate renders t as YYMMDD.
func FormatDate(t time.Time) string {
	return t.Format("060102")
}

func civilDate(year, month, day int, src string) (time.Time, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("date %q does not exist", src)
	}
	return t, nil
}

// ParseHHMM parses a four digit time of day and returns hours and minutes.
func ParseHHMM(s string) (int, int, error) {
	if len(s) != 4 || !Conforms('n', s) {
		return 0, 0, fmt.Errorf("time %q: want HHMM", s)
	}
	hh, _ := strconv.Atoi(s[0:2])
	mm, _ := strconv.Atoi(s[2:4])
	if hh > 23 || mm > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", s)
	}
	return hh, mm, nil
}

// ParseOffset validates a UTC offset in HHMM form ("0100", "1345").
func ParseOffset(s string) error {
	if len(s) != 4 || !Conforms('n', s) {
		return fmt.Errorf("offset %q: want HHMM", s)
	}
	hh, _ := strconv.Atoi(s[0:2])
	mm, _ := strconv.Atoi(s[2:4])
	if hh > 13 || mm > 59 {
		return fmt.Errorf("offset %q out of range", s)
	}
	return nil
}
