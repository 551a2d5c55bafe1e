// internal/events/events.go
//
// Structured game events and the Recorder interface.
// The scheduler emits one event per turn outcome plus round and game-over
// markers; recorders decide where they go (log, SQLite, live subscribers).
//
// Correlation ids travel in the context (WithRunID / WithGameID) rather than in
// package state, so independent games never share identifiers.

package events

import (
	"context"
	"time"
)

// Kind identifies the event type.
type Kind string

const (
	MoveAccepted    Kind = "MOVE_ACCEPTED"
	MoveRejected    Kind = "MOVE_REJECTED"
	ProposalTimeout Kind = "PROPOSAL_TIMEOUT"
	RoundCompleted  Kind = "ROUND_COMPLETED"
	GameOver        Kind = "GAME_OVER"
)

// Event is one structured record. Fields not relevant to a kind stay empty.
type Event struct {
	Kind    Kind           `json:"kind"`
	RunID   string         `json:"runId,omitempty"`
	GameID  string         `json:"gameId,omitempty"`
	Round   int            `json:"round"`
	Player  string         `json:"player,omitempty"`
	Attempt int            `json:"attempt,omitempty"`
	Word    string         `json:"word,omitempty"`
	Length  int            `json:"length,omitempty"`
	Reason  string         `json:"reason,omitempty"`
	Message string         `json:"message,omitempty"`
	Scores  map[string]int `json:"scores,omitempty"`
	Final   bool           `json:"final,omitempty"` // GameOver only: false when the run stopped but the game can resume
	At      time.Time      `json:"at"`
}

// Log field names for the correlation ids, shared by every logger in the service.
const (
	FieldGameID = "game_id"
	FieldRunID  = "run_id"
)

// Recorder consumes events. Implementations must not retain ctx.
type Recorder interface {
	Record(ctx context.Context, e Event) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, e Event) error

func (f RecorderFunc) Record(ctx context.Context, e Event) error { return f(ctx, e) }

// Discard drops every event.
var Discard Recorder = RecorderFunc(func(context.Context, Event) error { return nil })

type ctxKey int

const (
	runIDKey ctxKey = iota
	gameIDKey
)

// WithRunID returns ctx carrying the run correlation id.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunID returns the run id carried by ctx, or "".
func RunID(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey).(string)
	return id
}

// WithGameID returns ctx carrying the game id.
func WithGameID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, gameIDKey, id)
}

// GameID returns the game id carried by ctx, or "".
func GameID(ctx context.Context) string {
	id, _ := ctx.Value(gameIDKey).(string)
	return id
}

// Stamp fills RunID, GameID and At from ctx and now when they are unset.
func Stamp(ctx context.Context, e Event, now time.Time) Event {
	if e.RunID == "" {
		e.RunID = RunID(ctx)
	}
	if e.GameID == "" {
		e.GameID = GameID(ctx)
	}
	if e.At.IsZero() {
		e.At = now.UTC()
	}
	return e
}
