package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/uptrace/bun"
)

// runWrite executes fn as one unit of work. bun rolls the transaction back
// when fn returns an error or panics, so nothing partial is ever committed.
func runWrite(
	ctx context.Context,
	db bun.IDB,
	op string,
	entity fmt.Stringer,
	fn func(ctx context.Context, tx bun.Tx) error,
) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, fn); err != nil {
		err = asStoreError(op, entity, err)
		if errors.Is(err, ErrStorage) || errors.Is(err, ErrIntegrity) {
			slog.Error("write rolled back", "op", op, "entity", describe(entity), "error", err)
		}
		return err
	}
	return nil
}

// expectInserted checks an INSERT ... RETURNING id result.
func expectInserted(op string, entity fmt.Stringer, res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storage(op, entity, err)
	}
	if n != 1 {
		return integrity(op, entity, "%d rows inserted, expected 1", n)
	}
	if id <= 0 {
		return integrity(op, entity, "no generated key returned")
	}
	return nil
}

// expectSingleChange checks an UPDATE/DELETE conditioned on id and version.
// Zero affected rows means the row is gone or changed since the caller read
// it; which one is decided inside the same transaction.
func expectSingleChange(
	ctx context.Context,
	tx bun.Tx,
	op string,
	entity fmt.Stringer,
	res sql.Result,
	table any,
	id int64,
) error {
	n, err := res.RowsAffected()
	if err != nil {
		return storage(op, entity, err)
	}
	switch {
	case n == 1:
		return nil
	case n > 1:
		return integrity(op, entity, "%d rows affected, expected 1", n)
	}

	exists, err := tx.NewSelect().
		Model(table).
		Where("id = ?", id).
		Exists(ctx)
	if err != nil {
		return storage(op, entity, err)
	}
	if exists {
		return illegalEntity(op, entity, "stale entity, re-read it before writing")
	}
	return illegalEntity(op, entity, "entity is not persisted")
}
