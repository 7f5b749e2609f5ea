package ical

import (
	"fmt"
	"io"
	"strings"
	"time"

	"calendar/src-server/model"
)

// Parse reads the VEVENT blocks of an iCalendar stream into unsaved events.
// SUMMARY becomes the name and DESCRIPTION the note. Components other than
// VEVENT, and VEVENT properties other than those, are skipped.
func Parse(r io.Reader) ([]model.Event, error) {
	lines, err := unfold(r)
	if err != nil {
		return nil, fmt.Errorf("Parse: can't read: %w", err)
	}

	events := make([]model.Event, 0)
	var current *model.Event
	var startLine int
	var allDay bool // DTSTART is a DATE
	depth := 0 // nesting inside the current VEVENT (VALARM, ...)

	for i, line := range lines {
		name, params, value, ok := splitContentLine(line)
		if !ok {
			return nil, fmt.Errorf("Parse: line %d: not a content line: %q", i+1, line)
		}

		switch {
		case name == "BEGIN" && strings.EqualFold(value, "VEVENT"):
			if current != nil {
				return nil, fmt.Errorf("Parse: line %d: nested VEVENT", i+1)
			}
			current = &model.Event{}
			startLine = i + 1
			allDay = false
			continue
		case current == nil:
			continue
		case name == "BEGIN":
			depth++
			continue
		case name == "END" && depth > 0:
			depth--
			continue
		case depth > 0:
			continue
		case name == "END" && strings.EqualFold(value, "VEVENT"):
			if err := complete(current, allDay); err != nil {
				return nil, fmt.Errorf("Parse: VEVENT at line %d: %w", startLine, err)
			}
			events = append(events, *current)
			current = nil
			continue
		}

		switch name {
		case "SUMMARY":
			current.Name = unescapeText(value)
		case "DESCRIPTION":
			current.Note = unescapeText(value)
		case "DTSTART", "DTEND":
			t, err := parseDate(params, value)
			if err != nil {
				return nil, fmt.Errorf("Parse: line %d: %s: %w", i+1, name, err)
			}
			if name == "DTSTART" {
				current.StartDate = t
				allDay = strings.EqualFold(params["VALUE"], "DATE") || len(value) == 8
			} else {
				current.EndDate = t
			}
		}
	}

	if current != nil {
		return nil, fmt.Errorf("Parse: VEVENT at line %d is not closed", startLine)
	}
	return events, nil
}

// complete fills what RFC 5545 implies for a missing DTEND: one day after a
// DATE start. A date-time start without an end is rejected since events must
// last.
func complete(e *model.Event, allDay bool) error {
	switch {
	case e.StartDate.IsZero():
		return fmt.Errorf("DTSTART is missing")
	case e.EndDate.IsZero() && !allDay:
		return fmt.Errorf("DTEND is missing")
	case e.EndDate.IsZero():
		e.EndDate = e.StartDate.AddDate(0, 0, 1)
	}
	return nil
}

// splitContentLine splits `NAME;PARAM=V;...:value`. Colons inside quoted
// parameter values do not end the parameters.
func splitContentLine(line string) (name string, params map[string]string, value string, ok bool) {
	inQuote := false
	colon := -1
	for i, r := range line {
		if r == '"' {
			inQuote = !inQuote
		}
		if r == ':' && !inQuote {
			colon = i
			break
		}
	}
	if colon < 0 {
		return "", nil, "", false
	}

	head := strings.Split(line[:colon], ";")
	name = strings.ToUpper(strings.TrimSpace(head[0]))
	params = make(map[string]string, len(head)-1)
	for _, p := range head[1:] {
		k, v, found := strings.Cut(p, "=")
		if !found {
			continue
		}
		params[strings.ToUpper(k)] = strings.Trim(v, `"`)
	}
	return name, params, line[colon+1:], name != ""
}

// Parsing date-time values
//
// - `YYYYMMDDTHHMMSSZ` UTC
// - `YYYYMMDD` a date, midnight UTC
// - `YYYYMMDDTHHMMSS` with a TZID parameter, or UTC without one
func parseDate(params map[string]string, value string) (time.Time, error) {
	switch len(value) {
	case 16:
		return time.Parse("20060102T150405Z", value)
	case 8:
		return time.Parse("20060102", value)
	case 15:
	default:
		return time.Time{}, fmt.Errorf("unknown date format %q", value)
	}

	location := time.UTC
	if tzid, ok := params["TZID"]; ok {
		var err error
		if location, err = time.LoadLocation(tzid); err != nil {
			return time.Time{}, fmt.Errorf("invalid TZID: %w", err)
		}
	}
	result, err := time.ParseInLocation("20060102T150405", value, location)
	if err != nil {
		return time.Time{}, err
	}
	return result.UTC(), nil
}
