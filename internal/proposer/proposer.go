// internal/proposer/proposer.go
//
// Proposer adapters for the turn scheduler.
//   - Func: wraps a plain function.
//   - Script: replays a fixed list of descriptor lines (replays, demos, tests).
//   - Remote: asks an HTTP agent at <base>/propose.

package proposer

import (
	"context"
	"errors"
	"sync"

	"github.com/robalobadob/balda/internal/turn"
)

var ErrScriptExhausted = errors.New("proposer: script exhausted")

// Func adapts a function to turn.Proposer.
func Func(fn func(ctx context.Context, req turn.Request) (string, error)) turn.Proposer {
	return turn.ProposerFunc(fn)
}

// Script returns its lines in order and fails once they run out.
type Script struct {
	mu    sync.Mutex
	lines []string
	next  int
}

func NewScript(lines ...string) *Script {
	return &Script{lines: append([]string(nil), lines...)}
}

func (s *Script) Propose(ctx context.Context, _ turn.Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.next >= len(s.lines) {
		return "", ErrScriptExhausted
	}
	line := s.lines[s.next]
	s.next++
	return line, nil
}

// Remaining reports how many lines are left.
func (s *Script) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines) - s.next
}
