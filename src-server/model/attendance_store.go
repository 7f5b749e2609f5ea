package model

import (
	"context"
	"errors"
	"log/slog"

	"github.com/uptrace/bun"
)

type AttendanceStore struct {
	db       bun.IDB
	events   EventLookup
	people   PersonLookup
	dangling DanglingPolicy
}

type AttendanceOption func(*AttendanceStore)

// WithDanglingPolicy sets how reads treat references to deleted rows.
// The default is DanglingAllow.
func WithDanglingPolicy(policy DanglingPolicy) AttendanceOption {
	return func(s *AttendanceStore) {
		s.dangling = policy
	}
}

func NewAttendanceStore(db bun.IDB, events EventLookup, people PersonLookup, opts ...AttendanceOption) *AttendanceStore {
	s := &AttendanceStore{
		db:       db,
		events:   events,
		people:   people,
		dangling: DanglingAllow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create inserts a after checking that its event and person exist.
func (s *AttendanceStore) Create(ctx context.Context, a *Attendance) error {
	const op = "(*AttendanceStore).Create"
	if a == nil {
		return invalidArg(op, "attendance is nil")
	}
	if a.ID != 0 {
		return illegalEntity(op, a, "attendance id is already set")
	}
	if err := a.validate(op); err != nil {
		return err
	}
	if err := s.checkReferences(ctx, op, a); err != nil {
		return err
	}
	slog.Debug("creating attendance", "attendance", a)

	row := newAttendanceRow(a)
	row.Version = 1
	if err := runWrite(ctx, s.db, op, a, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().
			Model(&row).
			Returning("id").
			Exec(ctx)
		if err != nil {
			return storage(op, a, err)
		}
		return expectInserted(op, a, res, row.ID)
	}); err != nil {
		return err
	}

	a.ID = row.ID
	a.Version = row.Version
	return nil
}

func (s *AttendanceStore) Update(ctx context.Context, a *Attendance) error {
	const op = "(*AttendanceStore).Update"
	if a == nil {
		return invalidArg(op, "attendance is nil")
	}
	if a.ID == 0 {
		return illegalEntity(op, a, "attendance id is not set")
	}
	if err := a.validate(op); err != nil {
		return err
	}
	if err := s.checkReferences(ctx, op, a); err != nil {
		return err
	}
	slog.Debug("updating attendance", "attendance", a)

	row := newAttendanceRow(a)
	if err := runWrite(ctx, s.db, op, a, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*attendanceRow)(nil)).
			Set("event_id = ?", row.EventID).
			Set("person_id = ?", row.PersonID).
			Set("planned_arrival_time = ?", row.PlannedArrivalTime).
			Set("version = version + 1").
			Where("id = ?", row.ID).
			Where("version = ?", row.Version).
			Exec(ctx)
		if err != nil {
			return storage(op, a, err)
		}
		return expectSingleChange(ctx, tx, op, a, res, (*attendanceRow)(nil), row.ID)
	}); err != nil {
		return err
	}

	a.Version++
	return nil
}

func (s *AttendanceStore) Delete(ctx context.Context, a *Attendance) error {
	const op = "(*AttendanceStore).Delete"
	if a == nil {
		return invalidArg(op, "attendance is nil")
	}
	if a.ID == 0 {
		return illegalEntity(op, a, "attendance id is not set")
	}
	slog.Debug("deleting attendance", "attendance", a)

	return runWrite(ctx, s.db, op, a, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*attendanceRow)(nil)).
			Where("id = ?", a.ID).
			Where("version = ?", a.Version).
			Exec(ctx)
		if err != nil {
			return storage(op, a, err)
		}
		return expectSingleChange(ctx, tx, op, a, res, (*attendanceRow)(nil), a.ID)
	})
}

// GetByID returns ErrNotFound when no attendance has the given id.
func (s *AttendanceStore) GetByID(ctx context.Context, id int64) (*Attendance, error) {
	const op = "(*AttendanceStore).GetByID"
	if id == 0 {
		return nil, invalidArg(op, "attendance id is not set")
	}

	rows := make([]attendanceRow, 0, 1)
	if err := s.db.NewSelect().
		Model(&rows).
		Where("id = ?", id).
		Limit(2).
		Scan(ctx); err != nil {
		return nil, storage(op, nil, err)
	}
	switch {
	case len(rows) == 0:
		return nil, notFound(op, "attendance", id)
	case len(rows) > 1:
		return nil, integrity(op, nil, "more attendances with id=%d found", id)
	}

	attendances, err := s.resolve(ctx, op, rows)
	if err != nil {
		return nil, err
	}
	return &attendances[0], nil
}

func (s *AttendanceStore) FindAll(ctx context.Context) ([]Attendance, error) {
	const op = "(*AttendanceStore).FindAll"
	return s.find(ctx, op, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q
	})
}

func (s *AttendanceStore) FindByEvent(ctx context.Context, e *Event) ([]Attendance, error) {
	const op = "(*AttendanceStore).FindByEvent"
	if e == nil {
		return nil, invalidArg(op, "event is nil")
	}
	if e.ID == 0 {
		return nil, illegalEntity(op, e, "event id is not set")
	}
	return s.find(ctx, op, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("event_id = ?", e.ID)
	})
}

func (s *AttendanceStore) FindByPerson(ctx context.Context, p *Person) ([]Attendance, error) {
	const op = "(*AttendanceStore).FindByPerson"
	if p == nil {
		return nil, invalidArg(op, "person is nil")
	}
	if p.ID == 0 {
		return nil, illegalEntity(op, p, "person id is not set")
	}
	return s.find(ctx, op, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("person_id = ?", p.ID)
	})
}

// find reads the matching rows first and resolves references afterwards, so
// no lookup ever runs while a cursor is open.
func (s *AttendanceStore) find(
	ctx context.Context,
	op string,
	filter func(q *bun.SelectQuery) *bun.SelectQuery,
) ([]Attendance, error) {
	rows := make([]attendanceRow, 0)
	if err := filter(s.db.NewSelect().Model(&rows)).
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, storage(op, nil, err)
	}
	return s.resolve(ctx, op, rows)
}

func (s *AttendanceStore) resolve(ctx context.Context, op string, rows []attendanceRow) ([]Attendance, error) {
	events := make(map[int64]*Event)
	people := make(map[int64]*Person)
	attendances := make([]Attendance, 0, len(rows))

	for _, row := range rows {
		a := Attendance{
			ID:                 row.ID,
			PlannedArrivalTime: fromNullMillis(row.PlannedArrivalTime),
			Version:            row.Version,
		}

		event, ok := events[row.EventID]
		if !ok {
			var err error
			event, err = s.events.GetByID(ctx, row.EventID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			events[row.EventID] = event
		}
		person, ok := people[row.PersonID]
		if !ok {
			var err error
			person, err = s.people.GetByID(ctx, row.PersonID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return nil, err
			}
			people[row.PersonID] = person
		}

		if event == nil || person == nil {
			if s.dangling == DanglingFail {
				return nil, integrity(op, &a, "dangling reference | event_id=%d found=%t person_id=%d found=%t",
					row.EventID, event != nil, row.PersonID, person != nil)
			}
			slog.Warn("attendance has dangling reference",
				"attendance_id", row.ID, "event_id", row.EventID, "person_id", row.PersonID)
		}
		a.Event = copyEvent(event)
		a.Person = copyPerson(person)
		attendances = append(attendances, a)
	}
	return attendances, nil
}

// checkReferences verifies that the referenced rows exist before writing.
func (s *AttendanceStore) checkReferences(ctx context.Context, op string, a *Attendance) error {
	if _, err := s.events.GetByID(ctx, a.Event.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return illegalEntity(op, a, "event id=%d does not exist", a.Event.ID)
		}
		return err
	}
	if _, err := s.people.GetByID(ctx, a.Person.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return illegalEntity(op, a, "person id=%d does not exist", a.Person.ID)
		}
		return err
	}
	return nil
}

// Results never share *Event or *Person values.
func copyEvent(e *Event) *Event {
	if e == nil {
		return nil
	}
	c := *e
	return &c
}

func copyPerson(p *Person) *Person {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
