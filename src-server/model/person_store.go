package model

import (
	"context"
	"log/slog"

	"github.com/uptrace/bun"
)

// PersonLookup resolves a person by id. AttendanceStore depends on this
// instead of a concrete PersonStore.
type PersonLookup interface {
	GetByID(ctx context.Context, id int64) (*Person, error)
}

type PersonStore struct {
	db bun.IDB
}

var _ PersonLookup = (*PersonStore)(nil)

func NewPersonStore(db bun.IDB) *PersonStore {
	return &PersonStore{db: db}
}

// Create inserts p and sets its generated id and initial version.
func (s *PersonStore) Create(ctx context.Context, p *Person) error {
	const op = "(*PersonStore).Create"
	if p == nil {
		return invalidArg(op, "person is nil")
	}
	if p.ID != 0 {
		return illegalEntity(op, p, "person id is already set")
	}
	if err := p.validate(op); err != nil {
		return err
	}
	slog.Debug("creating person", "person", p)

	row := *p
	row.Version = 1
	if err := runWrite(ctx, s.db, op, p, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewInsert().
			Model(&row).
			Returning("id").
			Exec(ctx)
		if err != nil {
			return storage(op, p, err)
		}
		return expectInserted(op, p, res, row.ID)
	}); err != nil {
		return err
	}

	p.ID = row.ID
	p.Version = row.Version
	return nil
}

// Update overwrites the stored person with p. It fails when the stored row
// changed since p was read.
func (s *PersonStore) Update(ctx context.Context, p *Person) error {
	const op = "(*PersonStore).Update"
	if p == nil {
		return invalidArg(op, "person is nil")
	}
	if p.ID == 0 {
		return illegalEntity(op, p, "person id is not set")
	}
	if err := p.validate(op); err != nil {
		return err
	}
	slog.Debug("updating person", "person", p)

	if err := runWrite(ctx, s.db, op, p, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*Person)(nil)).
			Set("name = ?", p.Name).
			Set("email = ?", p.Email).
			Set("note = ?", p.Note).
			Set("version = version + 1").
			Where("id = ?", p.ID).
			Where("version = ?", p.Version).
			Exec(ctx)
		if err != nil {
			return storage(op, p, err)
		}
		return expectSingleChange(ctx, tx, op, p, res, (*Person)(nil), p.ID)
	}); err != nil {
		return err
	}

	p.Version++
	return nil
}

// Delete removes the stored person. Attendances referencing it are left
// untouched.
func (s *PersonStore) Delete(ctx context.Context, p *Person) error {
	const op = "(*PersonStore).Delete"
	if p == nil {
		return invalidArg(op, "person is nil")
	}
	if p.ID == 0 {
		return illegalEntity(op, p, "person id is not set")
	}
	slog.Debug("deleting person", "person", p)

	return runWrite(ctx, s.db, op, p, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*Person)(nil)).
			Where("id = ?", p.ID).
			Where("version = ?", p.Version).
			Exec(ctx)
		if err != nil {
			return storage(op, p, err)
		}
		return expectSingleChange(ctx, tx, op, p, res, (*Person)(nil), p.ID)
	})
}

// GetByID returns ErrNotFound when no person has the given id.
func (s *PersonStore) GetByID(ctx context.Context, id int64) (*Person, error) {
	const op = "(*PersonStore).GetByID"
	if id == 0 {
		return nil, invalidArg(op, "person id is not set")
	}

	people := make([]Person, 0, 1)
	if err := s.db.NewSelect().
		Model(&people).
		Where("id = ?", id).
		Limit(2).
		Scan(ctx); err != nil {
		return nil, storage(op, nil, err)
	}
	switch len(people) {
	case 0:
		return nil, notFound(op, "person", id)
	case 1:
		return &people[0], nil
	default:
		return nil, integrity(op, &people[0], "more people with id=%d found", id)
	}
}

func (s *PersonStore) FindAll(ctx context.Context) ([]Person, error) {
	const op = "(*PersonStore).FindAll"
	people := make([]Person, 0)
	if err := s.db.NewSelect().
		Model(&people).
		Order("id ASC").
		Scan(ctx); err != nil {
		return nil, storage(op, nil, err)
	}
	return people, nil
}
