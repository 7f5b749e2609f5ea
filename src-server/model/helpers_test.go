package model_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"calendar/src-server/model"
)

// newTestDB opens a private in-memory database with the schema applied.
// One connection only: every connection to :memory: is a separate database.
func newTestDB(t *testing.T, foreignKeys bool) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })

	if foreignKeys {
		_, err := db.ExecContext(context.Background(), "PRAGMA foreign_keys = ON")
		require.NoError(t, err)
	}
	require.NoError(t, model.CreateSchema(context.Background(), db, foreignKeys))
	return db
}

// instant builds a UTC time at millisecond precision, the precision the
// stores keep.
func instant(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func hours(n int64) time.Time {
	return instant(n * int64(time.Hour/time.Millisecond))
}

func newPerson(name string) *model.Person {
	return &model.Person{
		Name:  name,
		Email: name + "@example.com",
		Note:  "note for " + name,
	}
}

func newEvent(name string, start, end time.Time) *model.Event {
	return &model.Event{
		Name:      name,
		StartDate: start,
		EndDate:   end,
	}
}

type stores struct {
	people      *model.PersonStore
	events      *model.EventStore
	attendances *model.AttendanceStore
}

func newStores(db bun.IDB, opts ...model.AttendanceOption) stores {
	people := model.NewPersonStore(db)
	events := model.NewEventStore(db)
	return stores{
		people:      people,
		events:      events,
		attendances: model.NewAttendanceStore(db, events, people, opts...),
	}
}
