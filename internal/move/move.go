// internal/move/move.go
//
// Candidate move model and descriptor parser.
// A proposer answers each turn with one text line:
//
//	LETTER: S | POS: 0;0 | WORD: ST | PATH: (0;0)->(1;0) | DEF: street
//
// Parse turns that line into a CandidateMove or a *ParseError naming the field
// that broke the grammar. No semantic checks happen here: bounds, adjacency and
// path length are the rules package's job.

package move

import (
	"errors"
	"fmt"

	"github.com/robalobadob/balda/internal/board"
)

// ErrMalformedDescriptor is matched by every *ParseError.
var ErrMalformedDescriptor = errors.New("malformed descriptor")

// Field names reported by ParseError.
const (
	FieldDescriptor = "descriptor"
	FieldLetter     = "letter"
	FieldPosition   = "position"
	FieldWord       = "word"
	FieldPath       = "path"
	FieldDefinition = "definition"
)

// CandidateMove is a fully structured, not yet validated move.
type CandidateMove struct {
	Letter    rune           `json:"letter"`
	Placement board.Position `json:"placement"`
	Word      string         `json:"word"`
	Path      board.Path     `json:"path"`
	Gloss     string         `json:"gloss"`
}

// String renders the move back into canonical descriptor form.
func (m CandidateMove) String() string {
	return fmt.Sprintf("LETTER: %c | POS: %s | WORD: %s | PATH: %s | DEF: %s",
		m.Letter, m.Placement, m.Word, m.Path, m.Gloss)
}

// ParseError reports which descriptor field is absent or out of grammar.
type ParseError struct {
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrMalformedDescriptor, e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrMalformedDescriptor) match.
func (e *ParseError) Is(target error) bool { return target == ErrMalformedDescriptor }

func malformed(field, format string, args ...any) *ParseError {
	return &ParseError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
