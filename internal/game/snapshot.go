package game

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/robalobadob/balda/internal/board"
)

// snapshot is the external JSON representation of a State.
type snapshot struct {
	ID          string         `json:"id"`
	Board       []string       `json:"board"`
	Players     []Player       `json:"players"`
	History     []HistoryEntry `json:"history"`
	Round       int            `json:"round"`
	Stagnant    int            `json:"stagnant"`
	Final       bool           `json:"final"`
	EndReason   string         `json:"endReason,omitempty"`
	Fingerprint string         `json:"fingerprint,omitempty"`
}

func (s *State) snapshot() snapshot {
	history := s.History
	if history == nil {
		history = []HistoryEntry{}
	}
	return snapshot{
		ID:        s.ID,
		Board:     s.Board.Rows(),
		Players:   s.Players,
		History:   history,
		Round:     s.Round,
		Stagnant:  s.Stagnant,
		Final:     s.Final,
		EndReason: s.EndReason,
	}
}

// canonical is the fingerprint input: the snapshot without its fingerprint.
func (s *State) canonical() []byte {
	b, err := json.Marshal(s.snapshot())
	if err != nil {
		// Only plain strings, ints and bools are encoded.
		panic(fmt.Sprintf("game: encode snapshot: %v", err))
	}
	return b
}

// Fingerprint is the hex BLAKE2b-256 digest of the canonical encoding.
// Two states are equal exactly when their fingerprints are.
func (s *State) Fingerprint() string {
	sum := blake2b.Sum256(s.canonical())
	return hex.EncodeToString(sum[:])
}

// Equal reports whether both states encode identically.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	return bytes.Equal(s.canonical(), o.canonical())
}

// Marshal encodes the state, including its fingerprint.
func (s *State) Marshal() ([]byte, error) {
	snap := s.snapshot()
	snap.Fingerprint = s.Fingerprint()
	return json.Marshal(snap)
}

// Unmarshal decodes a snapshot produced by Marshal. A present fingerprint must
// match the decoded state; hand-written snapshots may omit it.
func Unmarshal(data []byte) (*State, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	b, err := board.FromRows(snap.Board)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot board: %w", err)
	}
	if err := validateRoster(snap.Players); err != nil {
		return nil, err
	}
	s := &State{
		ID:        snap.ID,
		Board:     b,
		Players:   snap.Players,
		History:   snap.History,
		Round:     snap.Round,
		Stagnant:  snap.Stagnant,
		Final:     snap.Final,
		EndReason: snap.EndReason,
	}
	if len(s.History) == 0 {
		s.History = nil
	}
	if s.Round < 1 {
		s.Round = 1
	}
	if snap.Fingerprint != "" && snap.Fingerprint != s.Fingerprint() {
		return nil, ErrCorruptSnapshot
	}
	return s, nil
}
