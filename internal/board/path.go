package board

import "strings"

// Path is an ordered sequence of positions declared to spell a word.
// A legal path is non-empty, never repeats a position and only steps between
// adjacent cells; the rules package enforces that, Path itself does not.
type Path []Position

// Contains reports whether p appears anywhere in the path.
func (p Path) Contains(pos Position) bool {
	return p.Index(pos) >= 0
}

// Index returns the first index of pos in the path, or -1.
func (p Path) Index(pos Position) int {
	for i, q := range p {
		if q == pos {
			return i
		}
	}
	return -1
}

// FirstRepeat returns the first position that occurs twice, if any.
func (p Path) FirstRepeat() (Position, bool) {
	seen := make(map[Position]struct{}, len(p))
	for _, q := range p {
		if _, ok := seen[q]; ok {
			return q, true
		}
		seen[q] = struct{}{}
	}
	return Position{}, false
}

// String renders the path in descriptor form: "(r;c)->(r;c)".
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, q := range p {
		parts[i] = "(" + q.String() + ")"
	}
	return strings.Join(parts, "->")
}
