package game

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robalobadob/balda/internal/board"
	"github.com/robalobadob/balda/internal/move"
	"github.com/robalobadob/balda/internal/rules"
)

func newTeamGame(t *testing.T) *State {
	t.Helper()
	s, err := New(Setup{
		ID:      "g1",
		Rows:    3,
		Cols:    4,
		Seed:    "team",
		SeedRow: 1,
		Players: []Player{
			{Name: "alice", TimeBudget: time.Second, Score: 7},
			{Name: "bob", TimeBudget: time.Second},
		},
	})
	require.NoError(t, err)
	return s
}

func steam() rules.Accept {
	return rules.Accept{
		Move: move.CandidateMove{
			Letter:    'S',
			Placement: board.Position{Row: 0, Col: 0},
			Word:      "STEAM",
			Path:      board.Path{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 1, Col: 1}, {Row: 1, Col: 2}, {Row: 1, Col: 3}},
			Gloss:     "vapour",
		},
		Score: 5,
	}
}

func TestNew(t *testing.T) {
	s := newTeamGame(t)
	require.Equal(t, []string{"....", "TEAM", "...."}, s.Board.Rows())
	require.Equal(t, 1, s.Round)
	require.Equal(t, map[string]int{"alice": 0, "bob": 0}, s.Scores(), "scores start at zero")
	require.True(t, s.Used("Team"), "seed word counts as used")
	require.Equal(t, []HistoryEntry{{Kind: KindSeed, Word: "TEAM", Length: 4}}, s.History)

	t.Run("seed defaults to the middle row", func(t *testing.T) {
		s, err := New(Setup{Rows: 5, Cols: 5, Seed: "AGENT", SeedRow: -1, SeedCol: -1, Players: []Player{{Name: "a"}}})
		require.NoError(t, err)
		require.Equal(t, "AGENT", s.Board.Rows()[2])
	})

	t.Run("roster validation", func(t *testing.T) {
		_, err := New(Setup{Rows: 3, Cols: 3})
		require.ErrorIs(t, err, ErrNoPlayers)
		_, err = New(Setup{Rows: 3, Cols: 3, Players: []Player{{Name: "a"}, {Name: "a"}}})
		require.ErrorIs(t, err, ErrDuplicatePlayer)
		_, err = New(Setup{Rows: 3, Cols: 3, Players: []Player{{Name: " "}}})
		require.ErrorIs(t, err, ErrEmptyPlayerName)
	})

	t.Run("seed longer than the board", func(t *testing.T) {
		_, err := New(Setup{Rows: 3, Cols: 3, Seed: "TEAM", Players: []Player{{Name: "a"}}})
		require.ErrorIs(t, err, board.ErrSeedDoesNotFit)
	})
}

func TestApply(t *testing.T) {
	s := newTeamGame(t)
	before := s.Clone()

	next, err := s.Apply(steam(), "alice", 1)
	require.NoError(t, err)

	require.True(t, before.Equal(s), "receiver is never mutated")
	require.Equal(t, 5, next.Scores()["alice"]-s.Scores()["alice"])
	require.Equal(t, s.Board.EmptyCellCount()-1, next.Board.EmptyCellCount())
	require.True(t, next.Used("steam"))
	last := next.History[len(next.History)-1]
	require.Equal(t, HistoryEntry{Kind: KindWord, Word: "STEAM", Author: "alice", Length: 5, Gloss: "vapour", Round: 1}, last)

	t.Run("unknown author leaves state untouched", func(t *testing.T) {
		_, err := s.Apply(steam(), "carol", 1)
		require.ErrorIs(t, err, ErrUnknownPlayer)
		require.True(t, before.Equal(s))
	})

	t.Run("placement failure is all-or-nothing", func(t *testing.T) {
		_, err := next.Apply(steam(), "bob", 2)
		require.ErrorIs(t, err, board.ErrCellOccupied)
		require.Equal(t, 0, next.Scores()["bob"])
	})

	t.Run("score must equal word length", func(t *testing.T) {
		acc := steam()
		acc.Score = 9
		_, err := s.Apply(acc, "alice", 1)
		require.Error(t, err)
	})

	t.Run("final states refuse moves", func(t *testing.T) {
		_, err := s.Finish("BOARD_FULL").Apply(steam(), "alice", 1)
		require.ErrorIs(t, err, ErrGameOver)
	})
}

func TestRecordFailure(t *testing.T) {
	s := newTeamGame(t)
	next, err := s.RecordFailure("bob", "ts", "NOT_A_WORD", 1)
	require.NoError(t, err)

	require.True(t, s.Board.Equal(next.Board))
	require.Equal(t, s.Scores(), next.Scores())
	require.False(t, next.Used("TS"), "failed attempts never count as used")
	require.Equal(t, []HistoryEntry{{Kind: KindFailed, Word: "TS", Author: "bob", Length: 2, Round: 1, Reason: "NOT_A_WORD"}}, next.Failures())
	require.Len(t, next.Words(), 1)
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTeamGame(t)
	s, err := s.Apply(steam(), "alice", 1)
	require.NoError(t, err)
	s, err = s.RecordFailure("bob", "", "MALFORMED_DESCRIPTOR", 1)
	require.NoError(t, err)
	s = s.Advance(2, 0)

	data, err := s.Marshal()
	require.NoError(t, err)
	got, err := Unmarshal(data)
	require.NoError(t, err)
	require.True(t, s.Equal(got))
	require.Equal(t, s.Fingerprint(), got.Fingerprint())
	require.Equal(t, s.History, got.History)
	require.Equal(t, 2, got.Round)

	t.Run("fresh game", func(t *testing.T) {
		fresh, err := New(Setup{Rows: 2, Cols: 2, Players: []Player{{Name: "a"}}})
		require.NoError(t, err)
		data, err := fresh.Marshal()
		require.NoError(t, err)
		got, err := Unmarshal(data)
		require.NoError(t, err)
		require.True(t, fresh.Equal(got))
	})

	t.Run("tampered snapshot", func(t *testing.T) {
		bad := strings.Replace(string(data), `"score":5`, `"score":50`, 1)
		_, err := Unmarshal([]byte(bad))
		require.ErrorIs(t, err, ErrCorruptSnapshot)
	})

	t.Run("hand-written snapshot without fingerprint", func(t *testing.T) {
		got, err := Unmarshal([]byte(`{"id":"x","board":["..","AB"],"players":[{"name":"a","score":2}],"history":[{"kind":"seed","word":"AB","length":2}]}`))
		require.NoError(t, err)
		require.Equal(t, 1, got.Round)
		require.Equal(t, 2, got.Scores()["a"])
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Unmarshal([]byte(`{"board":`))
		require.Error(t, err)
	})
}

func TestWriteSummary(t *testing.T) {
	s := newTeamGame(t)
	s, _ = s.Apply(steam(), "alice", 1)
	s, _ = s.RecordFailure("bob", "TS", "NOT_A_WORD", 1)
	s = s.Finish("STAGNATION")

	var sb strings.Builder
	require.NoError(t, s.WriteSummary(&sb))
	out := sb.String()
	require.Contains(t, out, "---WORDS---\nTEAM (seed) 4\nSTEAM (alice) 5 (vapour)\n")
	require.Contains(t, out, "---FAILED---\nbob: TS NOT_A_WORD (round 1)\n")
	require.Contains(t, out, "---SCORES---\nalice: 5\nbob: 0\n")
	require.Contains(t, out, "---GAME OVER: STAGNATION---")
}
