package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Event is a named interval. Instants are kept at millisecond precision.
type Event struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Note      string    `json:"note,omitempty"`
	Version   int64     `json:"version"`
}

func (e *Event) Equal(other *Event) bool {
	if e == nil || other == nil {
		return false
	}
	return e.ID != 0 && e.ID == other.ID
}

func (e *Event) String() string {
	if e == nil {
		return "<nil event>"
	}
	return fmt.Sprintf("event{id=%d name=%q start=%s end=%s}",
		e.ID, e.Name, e.StartDate.Format(time.RFC3339), e.EndDate.Format(time.RFC3339))
}

// truncate drops the sub-millisecond part the row can't hold.
func (e *Event) truncate() {
	e.StartDate = e.StartDate.Truncate(time.Millisecond)
	e.EndDate = e.EndDate.Truncate(time.Millisecond)
}

func (e *Event) validate(op string) error {
	switch {
	case strings.TrimSpace(e.Name) == "":
		return invalidArg(op, "event name is blank")
	case e.StartDate.IsZero():
		return invalidArg(op, "event start date is blank")
	case e.EndDate.IsZero():
		return invalidArg(op, "event end date is blank")
	case e.StartDate.Equal(e.EndDate):
		return invalidArg(op, "event start date and end date are the same")
	case e.StartDate.After(e.EndDate):
		return invalidArg(op, "event start date must be before end date")
	}
	return nil
}

type eventRow struct {
	bun.BaseModel `bun:"table:event"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Name      string `bun:"name,notnull"`
	StartDate int64  `bun:"start_date,notnull"` // unix ms, UTC
	EndDate   int64  `bun:"end_date,notnull"`   // unix ms, UTC
	Note      string `bun:"note"`
	Version   int64  `bun:"version,notnull"`
}

func newEventRow(e *Event) eventRow {
	return eventRow{
		ID:        e.ID,
		Name:      e.Name,
		StartDate: toMillis(e.StartDate),
		EndDate:   toMillis(e.EndDate),
		Note:      e.Note,
		Version:   e.Version,
	}
}

func (r *eventRow) toEvent() *Event {
	return &Event{
		ID:        r.ID,
		Name:      r.Name,
		StartDate: fromMillis(r.StartDate),
		EndDate:   fromMillis(r.EndDate),
		Note:      r.Note,
		Version:   r.Version,
	}
}
