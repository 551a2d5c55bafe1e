// assets/embed.go
//
// Embedded data shipped with the binary: the default noun lexicon.

package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed nouns.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToUpper(s))
	}
	return out, sc.Err()
}

// Nouns returns the built-in lexicon, upper-cased.
func Nouns() ([]string, error) {
	return readLines("nouns.txt")
}
