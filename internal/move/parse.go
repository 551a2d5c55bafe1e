package move

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/robalobadob/balda/internal/board"
)

// field keys in the order the grammar requires them.
var keys = []struct{ key, field string }{
	{"LETTER", FieldLetter},
	{"POS", FieldPosition},
	{"WORD", FieldWord},
	{"PATH", FieldPath},
	{"DEF", FieldDefinition},
}

// Parse converts proposer output into a CandidateMove.
//
// Proposers often wrap the descriptor in prose or Markdown, so the last line
// containing a LETTER field is taken as the descriptor; backticks around it are
// dropped. The gloss keeps its text verbatim apart from trimming and may
// contain '|'.
func Parse(text string) (CandidateMove, error) {
	line, ok := descriptorLine(text)
	if !ok {
		return CandidateMove{}, malformed(FieldDescriptor, "no LETTER field found")
	}

	parts := strings.SplitN(line, "|", len(keys))
	if len(parts) < len(keys) {
		missing := keys[len(parts)]
		return CandidateMove{}, malformed(missing.field, "%s field missing", missing.key)
	}

	values := make([]string, len(keys))
	for i, k := range keys {
		v, ok := cutKey(parts[i], k.key)
		if !ok {
			return CandidateMove{}, malformed(k.field, "expected %q", k.key+":")
		}
		values[i] = v
	}

	var (
		m   CandidateMove
		err error
	)
	if m.Letter, err = parseLetter(values[0]); err != nil {
		return CandidateMove{}, err
	}
	if m.Placement, err = parsePosition(values[1], FieldPosition); err != nil {
		return CandidateMove{}, err
	}
	if m.Word, err = parseWord(values[2]); err != nil {
		return CandidateMove{}, err
	}
	if m.Path, err = parsePath(values[3]); err != nil {
		return CandidateMove{}, err
	}
	m.Gloss = values[4]
	return m, nil
}

// descriptorLine finds the last line carrying a LETTER key.
func descriptorLine(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		l := strings.Trim(strings.TrimSpace(lines[i]), "`")
		// Drop anything before the key, e.g. "Move: LETTER: ...".
		if idx := indexFold(l, "LETTER:"); idx >= 0 {
			return strings.TrimSpace(l[idx:]), true
		}
	}
	return "", false
}

// indexFold returns the byte offset of the ASCII key in s ignoring case, or
// -1. Offsets refer to s itself, whatever its other runes.
func indexFold(s, key string) int {
	for i := 0; i+len(key) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(key)], key) {
			return i
		}
	}
	return -1
}

// cutKey strips "KEY:" from a field, case-insensitively, and trims the value.
func cutKey(part, key string) (string, bool) {
	part = strings.TrimSpace(part)
	k, v, ok := strings.Cut(part, ":")
	if !ok || !strings.EqualFold(strings.TrimSpace(k), key) {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func upper(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Letters are checked before upper-casing: Unicode case mapping turns some
// non-ASCII runes into A-Z ("ß" -> "SS", "ı" -> "I").
func parseLetter(v string) (rune, error) {
	if len(v) != 1 || !isLetters(v) {
		return 0, malformed(FieldLetter, "want exactly one A-Z character, got %q", v)
	}
	return rune(upper(v)[0]), nil
}

func parseWord(v string) (string, error) {
	if v == "" || !isLetters(v) {
		return "", malformed(FieldWord, "want one or more A-Z characters, got %q", v)
	}
	return upper(v), nil
}

// parsePosition reads "row;col" with non-negative integers.
func parsePosition(v, field string) (board.Position, error) {
	rs, cs, ok := strings.Cut(v, ";")
	if !ok {
		return board.Position{}, malformed(field, "want row;col, got %q", v)
	}
	r, err := parseIndex(rs)
	if err != nil {
		return board.Position{}, malformed(field, "bad row %q", strings.TrimSpace(rs))
	}
	c, err := parseIndex(cs)
	if err != nil {
		return board.Position{}, malformed(field, "bad column %q", strings.TrimSpace(cs))
	}
	return board.Position{Row: r, Col: c}, nil
}

func parseIndex(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "+-") {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(s)
}

var arrows = strings.NewReplacer("→", "->", "=>", "->")

// parsePath reads "(r;c)->(r;c)->..." into an ordered position list.
func parsePath(v string) (board.Path, error) {
	if v == "" {
		return nil, malformed(FieldPath, "empty path")
	}
	tokens := strings.Split(arrows.Replace(v), "->")
	path := make(board.Path, 0, len(tokens))
	for i, tok := range tokens {
		tok = strings.TrimSpace(tok)
		if len(tok) < 2 || tok[0] != '(' || tok[len(tok)-1] != ')' {
			return nil, malformed(FieldPath, "step %d: want (row;col), got %q", i+1, tok)
		}
		p, err := parsePosition(tok[1:len(tok)-1], FieldPath)
		if err != nil {
			return nil, malformed(FieldPath, "step %d: want (row;col), got %q", i+1, tok)
		}
		path = append(path, p)
	}
	return path, nil
}

// isLetters reports whether s holds only ASCII letters of either case.
func isLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}
