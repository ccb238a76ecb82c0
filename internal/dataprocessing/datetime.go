package dataprocessing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseError describes a timestamp that could not be parsed. The
// offending input is carried so callers can surface it in warnings.
type ParseError struct {
	Input  string
	Reason string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse timestamp %q: %s", e.Input, e.Reason)
}

// ParseTimestamp parses the meter export's timestamp format
// "D.M.YY[.] H:MM": day and month one or two digits, two- or
// four-digit year, an optional trailing period after the date segment,
// and an optional time segment. A missing time defaults to midnight,
// a missing minute to zero. Years below 100 are taken as 2000+year.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &ParseError{Input: raw, Reason: "empty value"}
	}

	datePart := s
	timePart := "00:00"
	if i := strings.IndexByte(s, ' '); i >= 0 {
		datePart = s[:i]
		if t := strings.TrimSpace(s[i+1:]); t != "" {
			timePart = t
		}
	}

	datePart = strings.TrimSuffix(datePart, ".")
	dateFields := strings.Split(datePart, ".")
	if len(dateFields) != 3 {
		return time.Time{}, &ParseError{Input: raw, Reason: "date segment must have day, month and year"}
	}

	day, err := strconv.Atoi(dateFields[0])
	if err != nil {
		return time.Time{}, &ParseError{Input: raw, Reason: "day is not numeric"}
	}
	month, err := strconv.Atoi(dateFields[1])
	if err != nil {
		return time.Time{}, &ParseError{Input: raw, Reason: "month is not numeric"}
	}
	year, err := strconv.Atoi(dateFields[2])
	if err != nil {
		return time.Time{}, &ParseError{Input: raw, Reason: "year is not numeric"}
	}
	if year < 100 {
		year += 2000
	}

	timeFields := strings.Split(timePart, ":")
	hour, err := strconv.Atoi(timeFields[0])
	if err != nil {
		return time.Time{}, &ParseError{Input: raw, Reason: "hour is not numeric"}
	}
	minute := 0
	if len(timeFields) > 1 {
		minute, err = strconv.Atoi(timeFields[1])
		if err != nil {
			return time.Time{}, &ParseError{Input: raw, Reason: "minute is not numeric"}
		}
	}

	if month < 1 || month > 12 {
		return time.Time{}, &ParseError{Input: raw, Reason: fmt.Sprintf("month %d out of range", month)}
	}
	if day < 1 || day > daysInMonth(year, time.Month(month)) {
		return time.Time{}, &ParseError{Input: raw, Reason: fmt.Sprintf("day %d out of range", day)}
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, &ParseError{Input: raw, Reason: fmt.Sprintf("hour %d out of range", hour)}
	}
	if minute < 0 || minute > 59 {
		return time.Time{}, &ParseError{Input: raw, Reason: fmt.Sprintf("minute %d out of range", minute)}
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.Local), nil
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
