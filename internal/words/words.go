// internal/words/words.go
//
// Lexicon oracle for the rules engine.
//
// Responsibilities:
//   - Load the accepted noun list from a file or fall back to the embedded default.
//   - Answer IsAcceptableWord for the validator (case-insensitive, minimum length).
//   - Pick reproducible random seed words of a given length.
//
// Word lists:
//   - One word per line; blank lines and '#' comments are skipped.
//   - Entries that are not purely alphabetic are dropped.
//   - Everything is normalised to upper case.
//
// Environment (see internal/config):
//   WORDS_FILE=/path/to/nouns.txt
//   WORDS_MIN_LENGTH=3

package words

import (
	"bufio"
	"errors"
	"os"
	"sort"
	"strings"
	"sync"

	"golang.org/x/exp/rand"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/robalobadob/balda/assets"
)

// DefaultMinLength matches the reference operating policy: two-letter words are never accepted.
const DefaultMinLength = 3

var ErrEmptyList = errors.New("words: list is empty")

// Dictionary is an immutable set of accepted words. Safe for concurrent use.
type Dictionary struct {
	set       map[string]struct{}
	byLen     map[int][]string // sorted, for seed selection
	minLength int
}

// New builds a Dictionary from list. Non-alphabetic entries are dropped.
func New(list []string, minLength int) (*Dictionary, error) {
	if minLength < 1 {
		minLength = 1
	}
	d := &Dictionary{
		set:       make(map[string]struct{}, len(list)),
		byLen:     make(map[int][]string),
		minLength: minLength,
	}
	for _, w := range list {
		w = normalize(w)
		if w == "" || !isAlpha(w) {
			continue
		}
		if _, dup := d.set[w]; dup {
			continue
		}
		d.set[w] = struct{}{}
		d.byLen[len(w)] = append(d.byLen[len(w)], w)
	}
	if len(d.set) == 0 {
		return nil, ErrEmptyList
	}
	for _, ws := range d.byLen {
		sort.Strings(ws)
	}
	return d, nil
}

var (
	embeddedOnce sync.Once
	embedded     []string
	embeddedErr  error
)

// Open loads the word list at path, or the embedded noun list when path is empty.
func Open(path string, minLength int) (*Dictionary, error) {
	if path == "" {
		embeddedOnce.Do(func() {
			embedded, embeddedErr = assets.Nouns()
		})
		if embeddedErr != nil {
			return nil, embeddedErr
		}
		return New(embedded, minLength)
	}
	list, err := readWordFile(path)
	if err != nil {
		return nil, err
	}
	return New(list, minLength)
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(sc.Text())
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		out = append(out, w)
	}
	return out, sc.Err()
}

// IsAcceptableWord reports whether w is in the list and long enough.
func (d *Dictionary) IsAcceptableWord(w string) bool {
	w = normalize(w)
	if len(w) < d.minLength {
		return false
	}
	_, ok := d.set[w]
	return ok
}

// WordsOfLength returns the sorted words with exactly n letters.
func (d *Dictionary) WordsOfLength(n int) []string {
	return append([]string(nil), d.byLen[n]...)
}

// RandomWord picks a word of exactly length letters. The choice depends only on
// the rng state, so a fixed seed reproduces the same seed word.
func (d *Dictionary) RandomWord(rng *rand.Rand, length int) (string, bool) {
	ws := d.byLen[length]
	if len(ws) == 0 || length < d.minLength {
		return "", false
	}
	return ws[rng.Intn(len(ws))], true
}

// Len returns the number of distinct words loaded.
func (d *Dictionary) Len() int { return len(d.set) }

// MinLength returns the shortest accepted word length.
func (d *Dictionary) MinLength() int { return d.minLength }

func normalize(w string) string {
	return cases.Upper(language.Und).String(strings.TrimSpace(w))
}

// isAlpha reports whether s is all uppercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
