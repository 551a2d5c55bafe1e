// internal/game/state.go
//
// Game creation and the state mutator.
// Responsibilities:
//   - Create a game from board size, optional seed word and a player roster.
//   - Apply an accepted move: place the letter, append the history entry and
//     credit the author, all on a copy. The receiver is never modified, so a
//     failure part-way leaves the previous state as the observable one.
//   - Record failed attempts as annotations that never touch board or scores.

package game

import (
	"fmt"
	"strings"

	"github.com/robalobadob/balda/internal/board"
	"github.com/robalobadob/balda/internal/rules"
)

// Setup describes a new game.
type Setup struct {
	ID      string
	Rows    int
	Cols    int
	Seed    string // optional initial word, written horizontally
	SeedRow int    // row for the seed word; negative means the middle row
	SeedCol int    // first column of the seed word; negative centres it
	Players []Player
}

// New creates the initial state: empty board plus seed word, zero scores, round 1.
func New(setup Setup) (*State, error) {
	if err := validateRoster(setup.Players); err != nil {
		return nil, err
	}
	b, err := board.New(setup.Rows, setup.Cols)
	if err != nil {
		return nil, err
	}
	s := &State{
		ID:      setup.ID,
		Board:   b,
		Players: make([]Player, len(setup.Players)),
		Round:   1,
	}
	for i, p := range setup.Players {
		p.Score = 0
		s.Players[i] = p
	}
	if seed := strings.ToUpper(strings.TrimSpace(setup.Seed)); seed != "" {
		row, col := setup.SeedRow, setup.SeedCol
		if row < 0 {
			row = setup.Rows / 2
		}
		if col < 0 {
			col = (setup.Cols - len(seed)) / 2
		}
		if err := b.PlaceWord(row, col, seed); err != nil {
			return nil, fmt.Errorf("seed %q: %w", seed, err)
		}
		s.History = append(s.History, HistoryEntry{Kind: KindSeed, Word: seed, Length: len(seed)})
	}
	return s, nil
}

func validateRoster(players []Player) error {
	if len(players) == 0 {
		return ErrNoPlayers
	}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if strings.TrimSpace(p.Name) == "" {
			return ErrEmptyPlayerName
		}
		if _, ok := seen[p.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// Apply returns the state after author's accepted move in round.
func (s *State) Apply(acc rules.Accept, author string, round int) (*State, error) {
	if s.Final {
		return nil, ErrGameOver
	}
	idx := s.PlayerIndex(author)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, author)
	}
	m := acc.Move
	if acc.Score != len(m.Word) {
		return nil, fmt.Errorf("game: score %d does not match word length %d", acc.Score, len(m.Word))
	}

	next := s.Clone()
	if err := next.Board.Place(m.Placement, m.Letter); err != nil {
		return nil, fmt.Errorf("apply %s: %w", m.Word, err)
	}
	next.History = append(next.History, HistoryEntry{
		Kind:   KindWord,
		Word:   strings.ToUpper(m.Word),
		Author: author,
		Length: len(m.Word),
		Gloss:  m.Gloss,
		Round:  round,
	})
	next.Players[idx].Score += acc.Score
	return next, nil
}

// RecordFailure returns the state with a failed-attempt annotation appended.
// word may be empty when the proposal could not be parsed.
func (s *State) RecordFailure(author, word, reason string, round int) (*State, error) {
	if s.Final {
		return nil, ErrGameOver
	}
	if s.PlayerIndex(author) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, author)
	}
	next := s.Clone()
	next.History = append(next.History, HistoryEntry{
		Kind:   KindFailed,
		Word:   strings.ToUpper(word),
		Author: author,
		Length: len(word),
		Round:  round,
		Reason: reason,
	})
	return next, nil
}

// Advance returns the state with the scheduler cursor moved.
func (s *State) Advance(round, stagnant int) *State {
	next := s.Clone()
	next.Round, next.Stagnant = round, stagnant
	return next
}

// Finish returns a final copy of the state. Final states refuse further moves.
func (s *State) Finish(reason string) *State {
	next := s.Clone()
	next.Final, next.EndReason = true, reason
	return next
}
