package ical

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	"calendar/src-server/model"
)

const (
	prodID       = "-//calendar//calendar store//EN"
	icalDatetime = "20060102T150405Z"
)

// uidNamespace scopes the UIDs derived from store ids, so an event keeps its
// UID across exports.
var uidNamespace = uuid.MustParse("5b0bb9a8-6d8f-4c52-9d0f-0c4f2b4f6c1e")

// EventUID is the iCalendar UID of a persisted event.
func EventUID(eventID int64) string {
	return uuid.NewSHA1(uidNamespace, []byte("event/"+strconv.FormatInt(eventID, 10))).String()
}

type Calendar struct {
	name   string
	events []calendarEvent
}

type calendarEvent struct {
	event       model.Event
	attendances []model.Attendance
}

func NewCalendar(name string) *Calendar {
	return &Calendar{name: name}
}

// AddEvent adds a persisted event with its attendances. Attendances whose
// person is missing are left out of the output.
func (c *Calendar) AddEvent(event model.Event, attendances []model.Attendance) error {
	if event.ID == 0 {
		return fmt.Errorf("(*Calendar).AddEvent: event is not persisted: %s", &event)
	}
	if event.StartDate.IsZero() || event.EndDate.IsZero() {
		return fmt.Errorf("(*Calendar).AddEvent: event has no start or end date: %s", &event)
	}
	c.events = append(c.events, calendarEvent{event: event, attendances: attendances})
	return nil
}

func (c *Calendar) Len() int {
	return len(c.events)
}

// Marshal writes the calendar as an iCalendar (RFC 5545) stream; now is
// used as DTSTAMP.
func (c *Calendar) Marshal(w io.Writer, now time.Time) error {
	lw := newLineWriter(w)
	stamp := now.UTC().Format(icalDatetime)

	lw.line("BEGIN:VCALENDAR")
	lw.line("VERSION:2.0")
	lw.line("PRODID:" + prodID)
	lw.line("CALSCALE:GREGORIAN")
	if c.name != "" {
		lw.line("X-WR-CALNAME:" + escapeText(c.name))
	}

	for _, ce := range c.events {
		e := ce.event
		lw.line("BEGIN:VEVENT")
		lw.line("UID:" + EventUID(e.ID))
		lw.line("DTSTAMP:" + stamp)
		lw.line("DTSTART:" + e.StartDate.UTC().Format(icalDatetime))
		lw.line("DTEND:" + e.EndDate.UTC().Format(icalDatetime))
		lw.line("SUMMARY:" + escapeText(e.Name))
		if e.Note != "" {
			lw.line("DESCRIPTION:" + escapeText(e.Note))
		}
		if e.Version > 1 {
			lw.line("SEQUENCE:" + strconv.FormatInt(e.Version-1, 10))
		}
		for _, a := range ce.attendances {
			if a.Person == nil {
				continue
			}
			lw.line(attendeeLine(a))
		}
		lw.line("END:VEVENT")
	}

	lw.line("END:VCALENDAR")
	if err := lw.flush(); err != nil {
		return fmt.Errorf("(*Calendar).Marshal: %w", err)
	}
	return nil
}

// attendeeLine renders ATTENDEE with the planned arrival as an X- parameter.
func attendeeLine(a model.Attendance) string {
	line := "ATTENDEE;CUTYPE=INDIVIDUAL;ROLE=REQ-PARTICIPANT;PARTSTAT=NEEDS-ACTION"
	line += ";CN=" + quoteParam(a.Person.Name)
	if a.PlannedArrivalTime != nil {
		line += ";X-PLANNED-ARRIVAL=" + a.PlannedArrivalTime.UTC().Format(icalDatetime)
	}
	return line + ":mailto:" + a.Person.Email
}

// AttendanceFinder is the part of the attendance store Export needs.
type AttendanceFinder interface {
	FindByEvent(ctx context.Context, e *model.Event) ([]model.Attendance, error)
}

// Export builds a calendar from events, reading the attendances of each.
func Export(ctx context.Context, name string, events []model.Event, attendances AttendanceFinder) (*Calendar, error) {
	cal := NewCalendar(name)
	for i := range events {
		found, err := attendances.FindByEvent(ctx, &events[i])
		if err != nil {
			return nil, fmt.Errorf("Export: %w", err)
		}
		if err := cal.AddEvent(events[i], found); err != nil {
			return nil, fmt.Errorf("Export: %w", err)
		}
	}
	return cal, nil
}
