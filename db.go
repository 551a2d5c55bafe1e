// db.go
//
// Storage selection for the BALDA server.
//   - DB_PATH set: SQLite snapshots + SQLite event log, migrations applied on start.
//   - DB_PATH empty: in-memory snapshots, no event history (live stream only).

package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/balda/internal/events"
	"github.com/robalobadob/balda/internal/httpserver"
	"github.com/robalobadob/balda/internal/store"
)

type storage struct {
	store    store.Store
	events   httpserver.EventSource // nil without a database
	recorder events.Recorder
	db       *sql.DB
}

func (s *storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// openStorage opens the configured backend.
func openStorage(ctx context.Context, dsn string) (*storage, error) {
	if dsn == "" {
		log.Warn().Msg("DB_PATH is empty; games are kept in memory only")
		return &storage{store: store.NewMemoryStore(), recorder: events.Discard}, nil
	}
	db, err := store.OpenDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dsn, err)
	}
	if err := store.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	evlog := store.NewEventLog(db)
	return &storage{store: store.NewSQLiteStore(db), events: evlog, recorder: evlog, db: db}, nil
}
