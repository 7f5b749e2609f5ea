package model

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

// CreateSchema creates the person, event and attendance tables when they do
// not exist yet. With foreignKeys the attendance table references the other
// two; enforcement still depends on the connection's foreign_keys pragma.
func CreateSchema(ctx context.Context, db bun.IDB, foreignKeys bool) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*Person)(nil),
			(*eventRow)(nil),
		} {
			if _, err := tx.
				NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
		}

		q := tx.NewCreateTable().
			Model((*attendanceRow)(nil)).
			IfNotExists()
		if foreignKeys {
			q = q.
				ForeignKey(`("event_id") REFERENCES "event" ("id")`).
				ForeignKey(`("person_id") REFERENCES "person" ("id")`)
		}
		if _, err := q.Exec(ctx); err != nil {
			return err
		}

		for _, index := range []struct {
			name   string
			column string
		}{
			{"attendance_event_id_idx", "event_id"},
			{"attendance_person_id_idx", "person_id"},
		} {
			if _, err := tx.NewCreateIndex().
				Model((*attendanceRow)(nil)).
				Index(index.name).
				Column(index.column).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
		}
		if _, err := tx.NewCreateIndex().
			Model((*eventRow)(nil)).
			Index("event_range_idx").
			Column("start_date", "end_date").
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
		return nil
	}); err != nil {
		return fmt.Errorf("CreateSchema: %w", err)
	}

	return nil
}

// DropSchema removes every table created by CreateSchema.
func DropSchema(ctx context.Context, db bun.IDB) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*attendanceRow)(nil),
			(*eventRow)(nil),
			(*Person)(nil),
		} {
			if _, err := tx.
				NewDropTable().
				Model(model).
				IfExists().
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("DropSchema: %w", err)
	}

	return nil
}
