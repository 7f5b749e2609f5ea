package cli

import (
	"fmt"
	"strings"
	"time"

	"calendar/src-server/model"
)

const textTimeLayout = "2006-01-02 15:04 MST"

func textOf(data any) string {
	switch v := data.(type) {
	case *model.Person:
		return personText(v)
	case *model.Event:
		return eventText(v)
	case *model.Attendance:
		return attendanceText(v)
	case []model.Person:
		return lines(v, personText)
	case []model.Event:
		return lines(v, eventText)
	case []model.Attendance:
		return lines(v, attendanceText)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func lines[T any](items []T, text func(*T) string) string {
	if len(items) == 0 {
		return "(none)"
	}
	out := make([]string, len(items))
	for i := range items {
		out[i] = text(&items[i])
	}
	return strings.Join(out, "\n")
}

func personText(p *model.Person) string {
	s := fmt.Sprintf("#%d %s <%s> v%d", p.ID, p.Name, p.Email, p.Version)
	if p.Note != "" {
		s += " | " + p.Note
	}
	return s
}

func eventText(e *model.Event) string {
	s := fmt.Sprintf("#%d %s [%s .. %s] v%d",
		e.ID, e.Name, e.StartDate.Format(textTimeLayout), e.EndDate.Format(textTimeLayout), e.Version)
	if e.Note != "" {
		s += " | " + e.Note
	}
	return s
}

func attendanceText(a *model.Attendance) string {
	event, person := "<missing event>", "<missing person>"
	if a.Event != nil {
		event = fmt.Sprintf("#%d %s", a.Event.ID, a.Event.Name)
	}
	if a.Person != nil {
		person = fmt.Sprintf("#%d %s", a.Person.ID, a.Person.Name)
	}
	s := fmt.Sprintf("#%d %s @ %s v%d", a.ID, person, event, a.Version)
	if a.PlannedArrivalTime != nil {
		s += " arriving " + a.PlannedArrivalTime.In(time.UTC).Format(textTimeLayout)
	}
	return s
}

type deleted struct {
	Kind string `json:"kind"`
	ID   int64  `json:"id"`
}

func (d deleted) String() string {
	return fmt.Sprintf("deleted %s #%d", d.Kind, d.ID)
}
