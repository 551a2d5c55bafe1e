// Package store persists game snapshots and event logs.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/balda/internal/game"
)

var (
	ErrNotFound = errors.New("store: game not found")
	ErrNoID     = errors.New("store: game has no id")
)

// Store defines the persistence interface for games.
type Store interface {
	// Save persists or replaces the snapshot of st.ID.
	Save(ctx context.Context, st *game.State) error

	// Get retrieves a game by ID; ErrNotFound if missing.
	Get(ctx context.Context, id string) (*game.State, error)

	// List returns one summary per game, most recently updated first.
	List(ctx context.Context) ([]Summary, error)
}

// Game statuses as stored.
const (
	StatusActive = "active"
	StatusOver   = "over"
)

// Summary is the listing view of a stored game.
type Summary struct {
	ID        string         `json:"id"`
	Status    string         `json:"status"`
	EndReason string         `json:"endReason,omitempty"`
	Round     int            `json:"round"`
	Scores    map[string]int `json:"scores"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

func status(st *game.State) string {
	if st.Final {
		return StatusOver
	}
	return StatusActive
}

func summarize(st *game.State, created, updated time.Time) Summary {
	return Summary{
		ID:        st.ID,
		Status:    status(st),
		EndReason: st.EndReason,
		Round:     st.Round,
		Scores:    st.Scores(),
		CreatedAt: created,
		UpdatedAt: updated,
	}
}
