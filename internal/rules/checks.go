package rules

import (
	"strings"

	"github.com/robalobadob/balda/internal/board"
)

// Check is one legality predicate: nil means pass.
type Check func(in Input) *Rejection

// Checks returns the validation checks in contract order.
func Checks() []Check {
	return []Check{
		CheckBounds,
		CheckOccupancy,
		CheckPathLength,
		CheckRepeatedCell,
		CheckAdjacency,
		CheckEmptyCellUsage,
		CheckPlacementInPath,
		CheckWordPath,
		CheckNovelty,
		CheckLexicon,
	}
}

func CheckBounds(in Input) *Rejection {
	p := in.Move.Placement
	if !in.Board.InBounds(p) {
		rows, cols := in.Board.Size()
		return reject(OutOfBounds, "placement (%s) is outside the %dx%d board", p, rows, cols)
	}
	return nil
}

func CheckOccupancy(in Input) *Rejection {
	p := in.Move.Placement
	if !in.Board.IsEmpty(p) {
		l, _ := in.Board.CellAt(p)
		return reject(CellOccupied, "cell (%s) already holds %c", p, l)
	}
	return nil
}

func CheckPathLength(in Input) *Rejection {
	if n, w := len(in.Move.Path), len(in.Move.Word); n != w {
		return reject(PathLengthMismatch, "path has %d cells but %s has %d letters", n, in.Move.Word, w)
	}
	return nil
}

func CheckRepeatedCell(in Input) *Rejection {
	if p, ok := in.Move.Path.FirstRepeat(); ok {
		return reject(RepeatedCell, "path visits (%s) more than once", p)
	}
	return nil
}

// CheckAdjacency rejects diagonal and long steps.
func CheckAdjacency(in Input) *Rejection {
	path := in.Move.Path
	for i := 1; i < len(path); i++ {
		if !board.Adjacent(path[i-1], path[i]) {
			return reject(NonAdjacentStep, "step %d from (%s) to (%s) is not to a horizontal or vertical neighbour",
				i, path[i-1], path[i])
		}
	}
	return nil
}

// CheckEmptyCellUsage requires every path cell except the placement to hold a letter.
func CheckEmptyCellUsage(in Input) *Rejection {
	for _, p := range in.Move.Path {
		if p == in.Move.Placement {
			continue
		}
		if !in.Board.InBounds(p) {
			return reject(PathUsesEmptyCell, "path cell (%s) is outside the board", p)
		}
		if in.Board.IsEmpty(p) {
			return reject(PathUsesEmptyCell, "path cell (%s) is empty; only the new letter's cell may be", p)
		}
	}
	return nil
}

func CheckPlacementInPath(in Input) *Rejection {
	if !in.Move.Path.Contains(in.Move.Placement) {
		return reject(PlacementNotInPath, "new letter at (%s) must be part of the word path %s",
			in.Move.Placement, in.Move.Path)
	}
	return nil
}

// CheckWordPath reads the path, treating the placement as holding the new letter.
func CheckWordPath(in Input) *Rejection {
	var sb strings.Builder
	for _, p := range in.Move.Path {
		if p == in.Move.Placement {
			sb.WriteRune(in.Move.Letter)
			continue
		}
		l, err := in.Board.CellAt(p)
		if err != nil || l == 0 {
			sb.WriteByte(board.Empty)
			continue
		}
		sb.WriteRune(l)
	}
	if spelled := sb.String(); !strings.EqualFold(spelled, in.Move.Word) {
		return reject(WordPathMismatch, "path %s spells %s, not %s", in.Move.Path, spelled, in.Move.Word)
	}
	return nil
}

func CheckNovelty(in Input) *Rejection {
	if in.History != nil && in.History.Used(in.Move.Word) {
		return reject(DuplicateWord, "%s was already played in this game", strings.ToUpper(in.Move.Word))
	}
	return nil
}

func CheckLexicon(in Input) *Rejection {
	if in.Lexicon == nil || !in.Lexicon.IsAcceptableWord(in.Move.Word) {
		return reject(NotAWord, "%s is not an accepted noun", strings.ToUpper(in.Move.Word))
	}
	return nil
}
