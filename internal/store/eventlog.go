package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/robalobadob/balda/internal/events"
)

// EventLog is an events.Recorder appending to the events table.
type EventLog struct {
	db *sql.DB
}

func NewEventLog(db *sql.DB) *EventLog {
	return &EventLog{db: db}
}

func (l *EventLog) Record(ctx context.Context, e events.Event) error {
	scores := ""
	if len(e.Scores) > 0 {
		b, err := json.Marshal(e.Scores)
		if err != nil {
			return err
		}
		scores = string(b)
	}
	_, err := l.db.ExecContext(ctx, `
        INSERT INTO events (game_id, run_id, kind, round, player, attempt, word, length, reason, message, scores, final, at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.GameID, e.RunID, string(e.Kind), e.Round, e.Player, e.Attempt, e.Word, e.Length,
		e.Reason, e.Message, scores, e.Final, e.At.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record %s: %w", e.Kind, err)
	}
	return nil
}

// Events returns the events of gameID in insertion order.
func (l *EventLog) Events(ctx context.Context, gameID string) ([]events.Event, error) {
	rows, err := l.db.QueryContext(ctx, `
        SELECT run_id, kind, round, player, attempt, word, length, reason, message, scores, final, at
        FROM events
        WHERE game_id=?
        ORDER BY id ASC`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []events.Event{}
	for rows.Next() {
		e := events.Event{GameID: gameID}
		var kind, scores, at string
		if err := rows.Scan(&e.RunID, &kind, &e.Round, &e.Player, &e.Attempt, &e.Word, &e.Length,
			&e.Reason, &e.Message, &scores, &e.Final, &at); err != nil {
			return nil, err
		}
		e.Kind = events.Kind(kind)
		e.At = parseTime(at)
		if scores != "" {
			if err := json.Unmarshal([]byte(scores), &e.Scores); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
