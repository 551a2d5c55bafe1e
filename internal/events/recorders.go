package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log writes events to a zerolog logger, the global one when Logger is nil.
// Each event goes through a sub-logger carrying the game and run ids.
// Rejections and timeouts are logged at warn level so they stand out from
// accepted moves.
type Log struct {
	Logger *zerolog.Logger
}

func (l Log) Record(ctx context.Context, e Event) error {
	base := log.Logger
	if l.Logger != nil {
		base = *l.Logger
	}
	logger := base.With().Str(FieldGameID, e.GameID).Str(FieldRunID, e.RunID).Logger()

	var ev *zerolog.Event
	switch e.Kind {
	case MoveRejected, ProposalTimeout:
		ev = logger.Warn()
	case RoundCompleted:
		ev = logger.Debug()
	default:
		ev = logger.Info()
	}
	ev = ev.Str("kind", string(e.Kind)).Int("round", e.Round)
	if e.Player != "" {
		ev = ev.Str("player", e.Player).Int("attempt", e.Attempt)
	}
	if e.Word != "" {
		ev = ev.Str("word", e.Word).Int("length", e.Length)
	}
	if e.Reason != "" {
		ev = ev.Str("reason", e.Reason)
	}
	if e.Kind == GameOver {
		ev = ev.Bool("final", e.Final)
	}
	if e.Scores != nil {
		ev = ev.Interface("scores", e.Scores)
	}
	ev.Msg(e.Message)
	return nil
}

// Memory keeps events in order. Safe for concurrent use.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) Record(_ context.Context, e Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

// Events returns a copy of everything recorded so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Kinds returns the recorded kinds in order.
func (m *Memory) Kinds() []Kind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Kind, len(m.events))
	for i, e := range m.events {
		out[i] = e.Kind
	}
	return out
}

// Multi fans an event out to every recorder. All recorders are called; the
// first error is returned.
func Multi(recorders ...Recorder) Recorder {
	return RecorderFunc(func(ctx context.Context, e Event) error {
		var first error
		for _, r := range recorders {
			if r == nil {
				continue
			}
			if err := r.Record(ctx, e); err != nil && first == nil {
				first = err
			}
		}
		return first
	})
}
