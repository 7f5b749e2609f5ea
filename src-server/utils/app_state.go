package utils

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"calendar/src-server/model"
)

type AppState struct {
	Config  *Config
	RawDB   *sql.DB
	BunDB   *bun.DB
	Instant *InstantParser

	People      *model.PersonStore
	Events      *model.EventStore
	Attendances *model.AttendanceStore

	// receives SIGINT/SIGTERM in `serve`
	AppCloseSignalChan chan os.Signal

	shutdownMu    sync.Mutex
	shutdownChans []chan struct{}
	shutdownOnce  sync.Once
}

// NewAppState opens the database named by the config, makes sure the schema
// exists and builds the stores on top of the one connection handle.
func NewAppState(ctx context.Context, cfg *Config) (*AppState, error) {
	as := &AppState{
		Config:             cfg,
		Instant:            NewInstantParser(cfg.GetLocation()),
		AppCloseSignalChan: make(chan os.Signal, 1),
	}

	var err error
	as.RawDB, err = sql.Open(sqliteshim.ShimName, dsn(cfg.GetDBPath()))
	if err != nil {
		return nil, fmt.Errorf("NewAppState: can't open sqlite database: %w", err)
	}
	// sqlite serialises writers; with :memory: every connection is its own database
	as.RawDB.SetMaxOpenConns(1)

	as.BunDB = bun.NewDB(as.RawDB, sqlitedialect.New())
	as.BunDB.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithVerbose(true),
		bundebug.FromEnv("BUNDEBUG"),
	))

	if cfg.GetForeignKeys() {
		if _, err := as.BunDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			as.BunDB.Close()
			return nil, fmt.Errorf("NewAppState: can't enable foreign keys: %w", err)
		}
	}

	if err := model.CreateSchema(ctx, as.BunDB, cfg.GetForeignKeys()); err != nil {
		as.BunDB.Close()
		return nil, fmt.Errorf("NewAppState: %w", err)
	}

	as.People = model.NewPersonStore(as.BunDB)
	as.Events = model.NewEventStore(as.BunDB)
	as.Attendances = model.NewAttendanceStore(as.BunDB, as.Events, as.People,
		model.WithDanglingPolicy(cfg.GetDanglingPolicy()))

	slog.Debug("database ready",
		"path", cfg.GetDBPath(),
		"foreign_keys", cfg.GetForeignKeys(),
		"dangling", cfg.GetDanglingPolicy())
	return as, nil
}

func dsn(path string) string {
	if path == ":memory:" {
		return path
	}
	return "file:" + path + "?mode=rwc"
}

// ResetSchema drops and recreates every relation.
func (as *AppState) ResetSchema(ctx context.Context) error {
	if err := model.DropSchema(ctx, as.BunDB); err != nil {
		return fmt.Errorf("(*AppState).ResetSchema: %w", err)
	}
	if err := model.CreateSchema(ctx, as.BunDB, as.Config.GetForeignKeys()); err != nil {
		return fmt.Errorf("(*AppState).ResetSchema: %w", err)
	}
	return nil
}

// CreateGracefulShutdownChan returns a channel that is closed when
// GracefulShutdown runs.
func (as *AppState) CreateGracefulShutdownChan() <-chan struct{} {
	as.shutdownMu.Lock()
	defer as.shutdownMu.Unlock()
	ch := make(chan struct{})
	as.shutdownChans = append(as.shutdownChans, ch)
	return ch
}

// GracefulShutdown notifies every shutdown channel, then closes the database.
// Safe to call more than once.
func (as *AppState) GracefulShutdown() {
	as.shutdownOnce.Do(func() {
		as.shutdownMu.Lock()
		for _, ch := range as.shutdownChans {
			close(ch)
		}
		as.shutdownChans = nil
		as.shutdownMu.Unlock()

		if err := as.BunDB.Close(); err != nil {
			slog.Warn("can't close database", "error", err)
		}
	})
}
