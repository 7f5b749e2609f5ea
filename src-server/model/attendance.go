package model

import (
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Attendance links a person to an event. Event and Person are references to
// rows owned by their own stores, resolved to full values on read.
type Attendance struct {
	ID                 int64      `json:"id"`
	Event              *Event     `json:"event"`
	Person             *Person    `json:"person"`
	PlannedArrivalTime *time.Time `json:"planned_arrival_time,omitempty"`
	Version            int64      `json:"version"`
}

func (a *Attendance) Equal(other *Attendance) bool {
	if a == nil || other == nil {
		return false
	}
	return a.ID != 0 && a.ID == other.ID
}

func (a *Attendance) String() string {
	if a == nil {
		return "<nil attendance>"
	}
	var eventID, personID int64
	if a.Event != nil {
		eventID = a.Event.ID
	}
	if a.Person != nil {
		personID = a.Person.ID
	}
	return fmt.Sprintf("attendance{id=%d event=%d person=%d}", a.ID, eventID, personID)
}

func (a *Attendance) validate(op string) error {
	switch {
	case a.Event == nil:
		return invalidArg(op, "attendance event is nil")
	case a.Person == nil:
		return invalidArg(op, "attendance person is nil")
	case a.Event.ID == 0:
		return illegalEntity(op, a, "attendance event is not persisted")
	case a.Person.ID == 0:
		return illegalEntity(op, a, "attendance person is not persisted")
	}
	return nil
}

type attendanceRow struct {
	bun.BaseModel `bun:"table:attendance"`

	ID                 int64  `bun:"id,pk,autoincrement"`
	EventID            int64  `bun:"event_id,notnull"`
	PersonID           int64  `bun:"person_id,notnull"`
	PlannedArrivalTime *int64 `bun:"planned_arrival_time"` // unix ms, UTC
	Version            int64  `bun:"version,notnull"`
}

func newAttendanceRow(a *Attendance) attendanceRow {
	return attendanceRow{
		ID:                 a.ID,
		EventID:            a.Event.ID,
		PersonID:           a.Person.ID,
		PlannedArrivalTime: toNullMillis(a.PlannedArrivalTime),
		Version:            a.Version,
	}
}

// DanglingPolicy decides what a read does when an attendance references an
// event or person that no longer exists.
type DanglingPolicy int

const (
	// DanglingAllow leaves the missing reference nil.
	DanglingAllow DanglingPolicy = iota
	// DanglingFail fails the read with ErrIntegrity.
	DanglingFail
)

func (p DanglingPolicy) String() string {
	switch p {
	case DanglingAllow:
		return "allow"
	case DanglingFail:
		return "fail"
	default:
		return fmt.Sprintf("DanglingPolicy(%d)", int(p))
	}
}

// ParseDanglingPolicy accepts "allow" and "fail".
func ParseDanglingPolicy(s string) (DanglingPolicy, error) {
	switch s {
	case "", "allow":
		return DanglingAllow, nil
	case "fail":
		return DanglingFail, nil
	default:
		return DanglingAllow, fmt.Errorf("ParseDanglingPolicy: unknown policy %q", s)
	}
}
