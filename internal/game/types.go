// internal/game/types.go
//
// Core type definitions for a BALDA game.
// Defines:
//   - Player: roster entry with cumulative score.
//   - HistoryEntry: seed word, accepted words and failed-attempt annotations.
//   - State: board + players + history for one game.

package game

import (
	"errors"
	"strings"
	"time"

	"github.com/robalobadob/balda/internal/board"
)

var (
	ErrNoPlayers       = errors.New("game: at least one player is required")
	ErrEmptyPlayerName = errors.New("game: player name is empty")
	ErrDuplicatePlayer = errors.New("game: duplicate player name")
	ErrUnknownPlayer   = errors.New("game: unknown player")
	ErrGameOver        = errors.New("game: game is over")
	ErrCorruptSnapshot = errors.New("game: snapshot fingerprint mismatch")
)

// EntryKind separates score-relevant words from annotations.
type EntryKind string

const (
	KindSeed   EntryKind = "seed"   // initial word on the board, no author
	KindWord   EntryKind = "word"   // accepted move
	KindFailed EntryKind = "failed" // failed attempt, never counts as used
)

// HistoryEntry is one line of the game history.
type HistoryEntry struct {
	Kind   EntryKind `json:"kind"`
	Word   string    `json:"word"`
	Author string    `json:"author,omitempty"`
	Length int       `json:"length"`
	Gloss  string    `json:"gloss,omitempty"`
	Round  int       `json:"round"`
	Reason string    `json:"reason,omitempty"` // failed attempts only
}

// Player is a roster entry. Proposer is an opaque identity of whatever produces
// this player's moves (a URL, a script name, ...).
type Player struct {
	Name       string        `json:"name"`
	Proposer   string        `json:"proposer,omitempty"`
	TimeBudget time.Duration `json:"timeBudget"`
	Score      int           `json:"score"`
}

// State is the complete persisted state of one game.
//
// Round and Stagnant are the scheduler's cursor: the round to play next and the
// number of consecutive rounds without an accepted move. They are persisted so a
// game can be resumed mid-play.
type State struct {
	ID        string
	Board     *board.Board
	Players   []Player
	History   []HistoryEntry
	Round     int
	Stagnant  int
	Final     bool
	EndReason string
}

// Used reports whether word was already played (seed or accepted), case-insensitively.
func (s *State) Used(word string) bool {
	for _, h := range s.History {
		if h.Kind != KindFailed && strings.EqualFold(h.Word, word) {
			return true
		}
	}
	return false
}

// Words returns the seed and accepted words, in play order.
func (s *State) Words() []HistoryEntry {
	out := make([]HistoryEntry, 0, len(s.History))
	for _, h := range s.History {
		if h.Kind != KindFailed {
			out = append(out, h)
		}
	}
	return out
}

// Failures returns the failed-attempt annotations.
func (s *State) Failures() []HistoryEntry {
	var out []HistoryEntry
	for _, h := range s.History {
		if h.Kind == KindFailed {
			out = append(out, h)
		}
	}
	return out
}

// PlayerIndex returns the roster index for name, or -1.
func (s *State) PlayerIndex(name string) int {
	for i, p := range s.Players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// Scores returns name → score.
func (s *State) Scores() map[string]int {
	out := make(map[string]int, len(s.Players))
	for _, p := range s.Players {
		out[p.Name] = p.Score
	}
	return out
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	c := *s
	c.Board = s.Board.Clone()
	c.Players = append([]Player(nil), s.Players...)
	c.History = append([]HistoryEntry(nil), s.History...)
	return &c
}
