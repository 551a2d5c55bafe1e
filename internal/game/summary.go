package game

import (
	"bufio"
	"fmt"
	"io"
)

// WriteSummary writes the human-readable board report:
//
//	<grid>
//	---WORDS---
//	TEAM (seed) 4
//	STEAM (alice) 5 (vapour)
//	---FAILED---
//	bob: TS NOT_A_WORD (round 1)
//	---SCORES---
//	alice: 5
func (s *State) WriteSummary(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(s.Board.String())
	bw.WriteString("---WORDS---\n")
	for _, h := range s.Words() {
		author := h.Author
		if h.Kind == KindSeed {
			author = "seed"
		}
		fmt.Fprintf(bw, "%s (%s) %d", h.Word, author, h.Length)
		if h.Gloss != "" {
			fmt.Fprintf(bw, " (%s)", h.Gloss)
		}
		bw.WriteByte('\n')
	}
	if failed := s.Failures(); len(failed) > 0 {
		bw.WriteString("---FAILED---\n")
		for _, h := range failed {
			word := h.Word
			if word == "" {
				word = "-"
			}
			fmt.Fprintf(bw, "%s: %s %s (round %d)\n", h.Author, word, h.Reason, h.Round)
		}
	}
	bw.WriteString("---SCORES---\n")
	for _, p := range s.Players {
		fmt.Fprintf(bw, "%s: %d\n", p.Name, p.Score)
	}
	if s.Final {
		fmt.Fprintf(bw, "---GAME OVER: %s---\n", s.EndReason)
	}
	return bw.Flush()
}
