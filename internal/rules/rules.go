// internal/rules/rules.go
//
// Move validation for BALDA.
// A candidate move runs through a fixed, ordered list of pure checks; the first
// failing check decides the rejection reason. The order is part of the contract:
// proposers see the same reason for the same illegal move on every run.
//
// Order:
//   1. OUT_OF_BOUNDS         placement inside the grid
//   2. CELL_OCCUPIED         placement cell empty
//   3. PATH_LENGTH_MISMATCH  len(path) == len(word)
//   4. REPEATED_CELL         no position twice in the path
//   5. NON_ADJACENT_STEP     consecutive steps at Manhattan distance 1
//   6. PATH_USES_EMPTY_CELL  only the placement may be empty on the path
//   7. PLACEMENT_NOT_IN_PATH the new letter is part of the word
//   8. WORD_PATH_MISMATCH    path letters spell the word
//   9. DUPLICATE_WORD        word not used before in this game
//  10. NOT_A_WORD            lexicon accepts the word

package rules

import (
	"errors"
	"fmt"

	"github.com/robalobadob/balda/internal/board"
	"github.com/robalobadob/balda/internal/move"
)

// Reason is a stable machine-readable rejection code.
type Reason string

const (
	OutOfBounds        Reason = "OUT_OF_BOUNDS"
	CellOccupied       Reason = "CELL_OCCUPIED"
	PathLengthMismatch Reason = "PATH_LENGTH_MISMATCH"
	RepeatedCell       Reason = "REPEATED_CELL"
	NonAdjacentStep    Reason = "NON_ADJACENT_STEP"
	PathUsesEmptyCell  Reason = "PATH_USES_EMPTY_CELL"
	PlacementNotInPath Reason = "PLACEMENT_NOT_IN_PATH"
	WordPathMismatch   Reason = "WORD_PATH_MISMATCH"
	DuplicateWord      Reason = "DUPLICATE_WORD"
	NotAWord           Reason = "NOT_A_WORD"
)

var (
	// ErrRejected is matched by every *Rejection.
	ErrRejected  = errors.New("move rejected")
	ErrNoLexicon = errors.New("rules: lexicon is required")
)

// Rejection is a typed validation failure with a human-readable explanation.
type Rejection struct {
	Reason  Reason `json:"reason"`
	Message string `json:"message"`
}

func (r *Rejection) Error() string { return string(r.Reason) + ": " + r.Message }

// Is lets errors.Is(err, ErrRejected) match.
func (r *Rejection) Is(target error) bool { return target == ErrRejected }

func reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// Lexicon is the external word-acceptability oracle.
type Lexicon interface {
	IsAcceptableWord(word string) bool
}

// History answers whether a word was already played successfully.
type History interface {
	Used(word string) bool
}

// Input is everything a check may look at. Checks never mutate it.
type Input struct {
	Move    move.CandidateMove
	Board   *board.Board
	History History
	Lexicon Lexicon
}

// Accept is a validated move together with the score it earns.
type Accept struct {
	Move  move.CandidateMove `json:"move"`
	Score int                `json:"score"`
}

// Validator runs the ordered checks against a lexicon.
type Validator struct {
	lexicon Lexicon
	checks  []Check
}

// New returns a Validator backed by lex.
func New(lex Lexicon) (*Validator, error) {
	if lex == nil {
		return nil, ErrNoLexicon
	}
	return &Validator{lexicon: lex, checks: Checks()}, nil
}

// Validate returns Accept, or a *Rejection from the first failing check.
func (v *Validator) Validate(m move.CandidateMove, b *board.Board, h History) (Accept, error) {
	in := Input{Move: m, Board: b, History: h, Lexicon: v.lexicon}
	for _, check := range v.checks {
		if rej := check(in); rej != nil {
			return Accept{}, rej
		}
	}
	return Accept{Move: m, Score: len(m.Word)}, nil
}
