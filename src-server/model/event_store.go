package model

import (
	"context"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
)

// EventLookup resolves an event by id.
type EventLookup interface {
	GetByID(ctx context.Context, id int64) (*Event, error)
}

type EventStore struct {
	db bun.IDB
}

var _ EventLookup = (*EventStore)(nil)

func NewEventStore(db bun.IDB) *EventStore {
	return &EventStore{db: db}
}

// Create inserts e and sets its generated id and initial version.
func (s *EventStore) Create(ctx context.Context, e *Event) error {
	const op = "(*EventStore).Create"
	if e == nil {
		return invalidArg(op, "event is nil")
	}
	if e.ID != 0 {
		return illegalEntity(op, e, "event id is already set")
	}
	e.truncate()
	if err := e.validate(op); err != nil {
		return err
	}
	slog.Debug("creating event", "event", e)

	row := newEventRow(e)
	row.Version = 1
	if err := runWrite(ctx, s.db, op, e, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().
			Model(&row).
			Returning("id").
			Exec(ctx)
		if err != nil {
			return storage(op, e, err)
		}
		return expectInserted(op, e, res, row.ID)
	}); err != nil {
		return err
	}

	e.ID = row.ID
	e.Version = row.Version
	return nil
}

func (s *EventStore) Update(ctx context.Context, e *Event) error {
	const op = "(*EventStore).Update"
	if e == nil {
		return invalidArg(op, "event is nil")
	}
	if e.ID == 0 {
		return illegalEntity(op, e, "event id is not set")
	}
	e.truncate()
	if err := e.validate(op); err != nil {
		return err
	}
	slog.Debug("updating event", "event", e)

	row := newEventRow(e)
	if err := runWrite(ctx, s.db, op, e, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*eventRow)(nil)).
			Set("name = ?", row.Name).
			Set("start_date = ?", row.StartDate).
			Set("end_date = ?", row.EndDate).
			Set("note = ?", row.Note).
			Set("version = version + 1").
			Where("id = ?", row.ID).
			Where("version = ?", row.Version).
			Exec(ctx)
		if err != nil {
			return storage(op, e, err)
		}
		return expectSingleChange(ctx, tx, op, e, res, (*eventRow)(nil), row.ID)
	}); err != nil {
		return err
	}

	e.Version++
	return nil
}

func (s *EventStore) Delete(ctx context.Context, e *Event) error {
	const op = "(*EventStore).Delete"
	if e == nil {
		return invalidArg(op, "event is nil")
	}
	if e.ID == 0 {
		return illegalEntity(op, e, "event id is not set")
	}
	slog.Debug("deleting event", "event", e)

	return runWrite(ctx, s.db, op, e, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*eventRow)(nil)).
			Where("id = ?", e.ID).
			Where("version = ?", e.Version).
			Exec(ctx)
		if err != nil {
			return storage(op, e, err)
		}
		return expectSingleChange(ctx, tx, op, e, res, (*eventRow)(nil), e.ID)
	})
}

// GetByID returns ErrNotFound when no event has the given id.
func (s *EventStore) GetByID(ctx context.Context, id int64) (*Event, error) {
	const op = "(*EventStore).GetByID"
	if id == 0 {
		return nil, invalidArg(op, "event id is not set")
	}

	rows := make([]eventRow, 0, 1)
	if err := s.db.NewSelect().
		Model(&rows).
		Where("id = ?", id).
		Limit(2).
		Scan(ctx); err != nil {
		return nil, storage(op, nil, err)
	}
	switch len(rows) {
	case 0:
		return nil, notFound(op, "event", id)
	case 1:
		return rows[0].toEvent(), nil
	default:
		return nil, integrity(op, rows[0].toEvent(), "more events with id=%d found", id)
	}
}

func (s *EventStore) FindAll(ctx context.Context) ([]Event, error) {
	const op = "(*EventStore).FindAll"
	rows := make([]eventRow, 0)
	if err := s.db.NewSelect().
		Model(&rows).
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, storage(op, nil, err)
	}
	return toEvents(rows), nil
}

// FindByDateRange returns every event whose [StartDate, EndDate] overlaps
// [start, end]. Both intervals are closed, so touching boundaries overlap.
func (s *EventStore) FindByDateRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	const op = "(*EventStore).FindByDateRange"
	switch {
	case start.IsZero():
		return nil, invalidArg(op, "range start is blank")
	case end.IsZero():
		return nil, invalidArg(op, "range end is blank")
	case start.After(end):
		return nil, invalidArg(op, "range start must not be after range end")
	}
	slog.Debug("finding events by date range", "start", start, "end", end)

	rows := make([]eventRow, 0)
	if err := s.db.NewSelect().
		Model(&rows).
		Where("start_date <= ?", toMillis(end)).
		Where("end_date >= ?", ceilMillis(start)).
		Order("start_date ASC", "id ASC").
		Scan(ctx); err != nil {
		return nil, storage(op, nil, err)
	}
	return toEvents(rows), nil
}

func toEvents(rows []eventRow) []Event {
	events := make([]Event, 0, len(rows))
	for i := range rows {
		events = append(events, *rows[i].toEvent())
	}
	return events
}
