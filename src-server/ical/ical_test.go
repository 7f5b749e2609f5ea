package ical

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calendar/src-server/model"
)

func TestMarshal(t *testing.T) {
	arrival := time.Date(2024, 6, 3, 8, 50, 0, 0, time.UTC)
	event := model.Event{
		ID:        4,
		Name:      "Launch; phase 1, final",
		StartDate: time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		Note:      "line one\nline two",
		Version:   3,
	}
	attendances := []model.Attendance{
		{ID: 1, Event: &event, Person: &model.Person{ID: 2, Name: "Lovelace, Ada", Email: "ada@example.com"}, PlannedArrivalTime: &arrival},
		{ID: 2, Event: &event, Person: nil},
	}

	cal := NewCalendar("Team")
	require.NoError(t, cal.AddEvent(event, attendances))
	assert.Equal(t, 1, cal.Len())

	var buf bytes.Buffer
	require.NoError(t, cal.Marshal(&buf, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n"))
	assert.True(t, strings.HasSuffix(out, "END:VCALENDAR\r\n"))
	assert.Contains(t, out, "UID:"+EventUID(4)+"\r\n")
	assert.Contains(t, out, "DTSTAMP:20240101T000000Z\r\n")
	assert.Contains(t, out, "DTSTART:20240603T090000Z\r\n")
	assert.Contains(t, out, "DTEND:20240603T100000Z\r\n")
	assert.Contains(t, out, `SUMMARY:Launch\; phase 1\, final`+"\r\n")
	assert.Contains(t, out, `DESCRIPTION:line one\nline two`+"\r\n")
	assert.Contains(t, out, "SEQUENCE:2\r\n")
	assert.Equal(t, 1, strings.Count(out, "ATTENDEE"))

	unfolded := strings.ReplaceAll(out, "\r\n ", "")
	assert.Contains(t, unfolded, `CN="Lovelace, Ada";X-PLANNED-ARRIVAL=20240603T085000Z:mailto:ada@example.com`)

	for _, line := range strings.Split(out, "\r\n") {
		assert.LessOrEqual(t, len(line), 75, line)
	}
}

func TestAddEvent_Rejects(t *testing.T) {
	cal := NewCalendar("")
	assert.Error(t, cal.AddEvent(model.Event{Name: "unsaved"}, nil))
	assert.Error(t, cal.AddEvent(model.Event{ID: 1, Name: "no dates"}, nil))
	assert.Zero(t, cal.Len())
}

func TestEventUID_Stable(t *testing.T) {
	assert.Equal(t, EventUID(7), EventUID(7))
	assert.NotEqual(t, EventUID(7), EventUID(8))
}

func TestFold(t *testing.T) {
	var buf bytes.Buffer
	lw := newLineWriter(&buf)
	long := "DESCRIPTION:" + strings.Repeat("é", 100)
	lw.line(long)
	require.NoError(t, lw.flush())

	for _, line := range strings.Split(strings.TrimSuffix(buf.String(), "\r\n"), "\r\n") {
		assert.LessOrEqual(t, len(line), 75)
	}
	lines, err := unfold(&buf)
	require.NoError(t, err)
	assert.Equal(t, []string{long}, lines)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestMarshal_WriteError(t *testing.T) {
	err := NewCalendar("x").Marshal(failingWriter{}, time.Now())
	assert.ErrorContains(t, err, "disk full")
}

func TestParse(t *testing.T) {
	input := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VTIMEZONE",
		"TZID:Europe/Berlin",
		"END:VTIMEZONE",
		"BEGIN:VEVENT",
		"SUMMARY:Stand\\, up",
		"DESCRIPTION:daily",
		"  sync",
		"DTSTART:20240603T090000Z",
		"DTEND:20240603T091500Z",
		"BEGIN:VALARM",
		"DESCRIPTION:ignored",
		"END:VALARM",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:Offsite",
		"DTSTART;TZID=Europe/Berlin:20240701T100000",
		"DTEND;TZID=Europe/Berlin:20240701T120000",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"SUMMARY:Holiday",
		"DTSTART;VALUE=DATE:20241225",
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")

	events, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "Stand, up", events[0].Name)
	assert.Equal(t, "daily sync", events[0].Note)
	assert.Equal(t, time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC), events[0].StartDate)
	assert.Equal(t, time.Date(2024, 6, 3, 9, 15, 0, 0, time.UTC), events[0].EndDate)
	assert.Zero(t, events[0].ID)

	assert.Equal(t, time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC), events[1].StartDate)
	assert.Equal(t, time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC), events[1].EndDate)

	assert.Equal(t, time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC), events[2].StartDate)
	assert.Equal(t, time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC), events[2].EndDate)
}

func TestParse_RoundTrip(t *testing.T) {
	event := model.Event{
		ID:        1,
		Name:      "Review: a, b; c",
		StartDate: time.Date(2024, 2, 1, 13, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 2, 1, 14, 30, 0, 0, time.UTC),
		Note:      strings.Repeat("long note ", 20),
	}
	cal := NewCalendar("x")
	require.NoError(t, cal.AddEvent(event, nil))
	var buf bytes.Buffer
	require.NoError(t, cal.Marshal(&buf, time.Now()))

	events, err := Parse(&buf)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, event.Name, events[0].Name)
	assert.Equal(t, event.Note, events[0].Note)
	assert.Equal(t, event.StartDate, events[0].StartDate)
	assert.Equal(t, event.EndDate, events[0].EndDate)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"no colon", "BEGIN:VEVENT\nSUMMARY\nEND:VEVENT"},
		{"nested", "BEGIN:VEVENT\nBEGIN:VEVENT\nEND:VEVENT\nEND:VEVENT"},
		{"unclosed", "BEGIN:VEVENT\nSUMMARY:x\nDTSTART:20240101T100000Z"},
		{"missing start", "BEGIN:VEVENT\nSUMMARY:x\nEND:VEVENT"},
		{"missing end of a date-time", "BEGIN:VEVENT\nDTSTART:20240101T100000Z\nEND:VEVENT"},
		{"missing end of a midnight date-time", "BEGIN:VEVENT\nDTSTART:20240101T000000Z\nEND:VEVENT"},
		{"bad date", "BEGIN:VEVENT\nDTSTART:2024-01-01\nEND:VEVENT"},
		{"bad tzid", "BEGIN:VEVENT\nDTSTART;TZID=Nowhere/Land:20240101T100000\nEND:VEVENT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

type fakeFinder map[int64][]model.Attendance

func (f fakeFinder) FindByEvent(_ context.Context, e *model.Event) ([]model.Attendance, error) {
	if e.ID == 99 {
		return nil, model.ErrStorage
	}
	return f[e.ID], nil
}

func TestExport(t *testing.T) {
	start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	events := []model.Event{
		{ID: 1, Name: "a", StartDate: start, EndDate: start.Add(time.Hour)},
		{ID: 2, Name: "b", StartDate: start, EndDate: start.Add(time.Hour)},
	}
	finder := fakeFinder{1: {{ID: 5, Person: &model.Person{ID: 1, Name: "Ada", Email: "ada@example.com"}}}}

	cal, err := Export(context.Background(), "x", events, finder)
	require.NoError(t, err)
	assert.Equal(t, 2, cal.Len())

	events = append(events, model.Event{ID: 99, Name: "c", StartDate: start, EndDate: start.Add(time.Hour)})
	_, err = Export(context.Background(), "x", events, finder)
	assert.ErrorIs(t, err, model.ErrStorage)
}
