package turn

import (
	"context"
	"time"

	"github.com/robalobadob/balda/internal/events"
	"github.com/robalobadob/balda/internal/game"
)

const (
	DefaultMaxAttempts     = 1
	DefaultStagnationLimit = 5
	DefaultMoveTimeout     = 180 * time.Second
)

// Option configures a Scheduler.
type Option func(s *Scheduler)

// WithMaxRounds caps the number of rounds; 0 means unlimited.
func WithMaxRounds(n int) Option {
	return func(s *Scheduler) {
		if n >= 0 {
			s.maxRounds = n
		}
	}
}

// WithMaxAttempts sets how many proposals a player may make per turn.
func WithMaxAttempts(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithStagnationLimit sets how many consecutive rounds without an accepted move end the game.
func WithStagnationLimit(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.stagnationLimit = n
		}
	}
}

// WithDefaultTimeout is the proposal budget for players without their own.
func WithDefaultTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.defaultTimeout = d
		}
	}
}

// WithRecorder sets the event sink.
func WithRecorder(r events.Recorder) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithCommit installs a hook called with every new state before it becomes
// current. A hook error is an internal fault and aborts the game.
func WithCommit(fn func(ctx context.Context, st *game.State) error) Option {
	return func(s *Scheduler) {
		s.commit = fn
	}
}

// WithRecordFailures controls whether failed attempts are annotated in the
// history. Annotations are written with the end-of-round commit.
func WithRecordFailures(on bool) Option {
	return func(s *Scheduler) {
		s.recordFailures = on
	}
}

// WithClock overrides the event timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}
