package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/balda/internal/game"
)

// Fixed width, so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite stores one JSON snapshot per game in the games table.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore expects a migrated database (see Migrate).
func NewSQLiteStore(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

func (s *SQLite) Save(ctx context.Context, st *game.State) error {
	if st == nil || st.ID == "" {
		return ErrNoID
	}
	data, err := st.Marshal()
	if err != nil {
		return fmt.Errorf("encode %s: %w", st.ID, err)
	}
	now := s.now().UTC().Format(timeLayout)
	_, err = s.db.ExecContext(ctx, `
        INSERT INTO games (id, status, end_reason, round, fingerprint, snapshot, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            status=excluded.status,
            end_reason=excluded.end_reason,
            round=excluded.round,
            fingerprint=excluded.fingerprint,
            snapshot=excluded.snapshot,
            updated_at=excluded.updated_at`,
		st.ID, status(st), st.EndReason, st.Round, st.Fingerprint(), string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", st.ID, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*game.State, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM games WHERE id=?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	st, err := game.Unmarshal([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", id, err)
	}
	return st, nil
}

func (s *SQLite) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT snapshot, created_at, updated_at
        FROM games
        ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var data, created, updated string
		if err := rows.Scan(&data, &created, &updated); err != nil {
			return nil, err
		}
		st, err := game.Unmarshal([]byte(data))
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(st, parseTime(created), parseTime(updated)))
	}
	return out, rows.Err()
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}
