// internal/board/board.go
//
// Fixed-size letter grid for a BALDA game.
// Responsibilities:
//   - Hold rows×cols cells, each empty or one uppercase letter A–Z.
//   - Answer geometric queries (bounds, emptiness, adjacency).
//   - Single-cell placement; a filled cell is never cleared or overwritten.
//
// Notes:
//   - Dimensions are fixed at construction.
//   - The board is owned by game.State; only the state mutator calls Place.

package board

import (
	"errors"
	"fmt"
	"strings"
)

// Empty is the rune used for an empty cell in the text form of a board.
const Empty = '.'

var (
	ErrOutOfBounds    = errors.New("position out of bounds")
	ErrCellOccupied   = errors.New("cell already occupied")
	ErrInvalidLetter  = errors.New("letter must be a single A-Z character")
	ErrInvalidSize    = errors.New("board dimensions must be positive")
	ErrRaggedRows     = errors.New("board rows must all have the same length")
	ErrSeedDoesNotFit = errors.New("seed word does not fit on the board")
)

// Position is a 0-indexed (row, col) pair.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String renders the position in descriptor form: "row;col".
func (p Position) String() string { return fmt.Sprintf("%d;%d", p.Row, p.Col) }

// Adjacent reports whether a and b are grid neighbours (Manhattan distance exactly 1).
func Adjacent(a, b Position) bool {
	dr, dc := a.Row-b.Row, a.Col-b.Col
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	return dr+dc == 1
}

// Board is a rows×cols grid. The zero value is not usable; call New.
type Board struct {
	rows  int
	cols  int
	cells []byte // row-major, 0 = empty
}

// New returns an empty board.
func New(rows, cols int) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidSize
	}
	return &Board{rows: rows, cols: cols, cells: make([]byte, rows*cols)}, nil
}

// FromRows builds a board from its text form: one string per row, '.' for empty.
// Lowercase letters are accepted and stored upper-cased.
func FromRows(rows []string) (*Board, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrInvalidSize
	}
	b, err := New(len(rows), len(rows[0]))
	if err != nil {
		return nil, err
	}
	for r, line := range rows {
		if len(line) != b.cols {
			return nil, ErrRaggedRows
		}
		for c := 0; c < len(line); c++ {
			ch := line[c]
			if ch == Empty {
				continue
			}
			l, ok := normalizeLetter(rune(ch))
			if !ok {
				return nil, fmt.Errorf("row %d col %d: %w", r, c, ErrInvalidLetter)
			}
			b.cells[r*b.cols+c] = l
		}
	}
	return b, nil
}

// Size returns the board dimensions.
func (b *Board) Size() (rows, cols int) { return b.rows, b.cols }

// InBounds reports whether p lies in [0,rows)×[0,cols).
func (b *Board) InBounds(p Position) bool {
	return p.Row >= 0 && p.Row < b.rows && p.Col >= 0 && p.Col < b.cols
}

// CellAt returns the letter at p, or 0 when the cell is empty.
func (b *Board) CellAt(p Position) (rune, error) {
	if !b.InBounds(p) {
		return 0, fmt.Errorf("%s: %w", p, ErrOutOfBounds)
	}
	return rune(b.cells[b.index(p)]), nil
}

// IsEmpty reports whether p is inside the grid and holds no letter.
func (b *Board) IsEmpty(p Position) bool {
	return b.InBounds(p) && b.cells[b.index(p)] == 0
}

// Place writes letter into the empty cell at p. The write is irreversible.
func (b *Board) Place(p Position, letter rune) error {
	if !b.InBounds(p) {
		return fmt.Errorf("%s: %w", p, ErrOutOfBounds)
	}
	l, ok := normalizeLetter(letter)
	if !ok {
		return ErrInvalidLetter
	}
	i := b.index(p)
	if b.cells[i] != 0 {
		return fmt.Errorf("%s: %w", p, ErrCellOccupied)
	}
	b.cells[i] = l
	return nil
}

// PlaceWord writes a seed word left to right on row, starting at col.
// Every target cell must be empty; nothing is written on failure.
func (b *Board) PlaceWord(row, col int, word string) error {
	if row < 0 || row >= b.rows || col < 0 || col+len(word) > b.cols {
		return ErrSeedDoesNotFit
	}
	letters := make([]byte, len(word))
	for i, r := range word {
		l, ok := normalizeLetter(r)
		if !ok {
			return ErrInvalidLetter
		}
		if !b.IsEmpty(Position{Row: row, Col: col + i}) {
			return fmt.Errorf("%s: %w", Position{Row: row, Col: col + i}, ErrCellOccupied)
		}
		letters[i] = l
	}
	copy(b.cells[row*b.cols+col:], letters)
	return nil
}

// EmptyCellCount returns how many cells hold no letter.
func (b *Board) EmptyCellCount() int {
	n := 0
	for _, c := range b.cells {
		if c == 0 {
			n++
		}
	}
	return n
}

// EmptyCells lists empty positions in row-major order.
func (b *Board) EmptyCells() []Position {
	out := make([]Position, 0, b.EmptyCellCount())
	for i, c := range b.cells {
		if c == 0 {
			out = append(out, Position{Row: i / b.cols, Col: i % b.cols})
		}
	}
	return out
}

// Clone returns an independent copy.
func (b *Board) Clone() *Board {
	cells := make([]byte, len(b.cells))
	copy(cells, b.cells)
	return &Board{rows: b.rows, cols: b.cols, cells: cells}
}

// Equal reports whether both boards have the same size and contents.
func (b *Board) Equal(o *Board) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.rows == o.rows && b.cols == o.cols && string(b.cells) == string(o.cells)
}

// Rows returns the text form of the board: one string per row, '.' for empty.
func (b *Board) Rows() []string {
	out := make([]string, b.rows)
	line := make([]byte, b.cols)
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			ch := b.cells[r*b.cols+c]
			if ch == 0 {
				ch = Empty
			}
			line[c] = ch
		}
		out[r] = string(line)
	}
	return out
}

// String renders the grid with row and column indices.
//
//	    0 1 2 3
//	0 | . . . . |
//	1 | T E A M |
func (b *Board) String() string {
	var sb strings.Builder
	sb.WriteString("   ")
	for c := 0; c < b.cols; c++ {
		fmt.Fprintf(&sb, " %d", c)
	}
	sb.WriteByte('\n')
	for r, row := range b.Rows() {
		fmt.Fprintf(&sb, "%2d |", r)
		for i := 0; i < len(row); i++ {
			sb.WriteByte(' ')
			sb.WriteByte(row[i])
		}
		sb.WriteString(" |\n")
	}
	return sb.String()
}

func (b *Board) index(p Position) int { return p.Row*b.cols + p.Col }

// normalizeLetter upper-cases an ASCII letter and rejects anything else.
func normalizeLetter(r rune) (byte, bool) {
	if r >= 'a' && r <= 'z' {
		r -= 'a' - 'A'
	}
	if r < 'A' || r > 'Z' {
		return 0, false
	}
	return byte(r), true
}
